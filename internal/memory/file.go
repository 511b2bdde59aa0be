package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const (
	fileExt       = ".kv"
	lockFileName  = ".helpengine.lock"
	lockRetryWait = 50 * time.Millisecond
)

// FileStore implements domain.KVStore with one file per key in a directory.
// A flock on a shared lock file serializes writers across processes and mu
// serializes callers within one; writes go through a temp file and rename.
type FileStore struct {
	dir    string
	mu     sync.Mutex
	lock   *flock.Flock
	logger *slog.Logger
}

func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create store directory %s: %w", dir, err)
	}
	return &FileStore{
		dir:    dir,
		lock:   flock.New(filepath.Join(dir, lockFileName)),
		logger: logger,
	}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+fileExt)
}

// Load returns the value under key; ok is false when the key is absent.
func (s *FileStore) Load(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryRLockContext(ctx, lockRetryWait)
	if err != nil {
		return "", false, fmt.Errorf("lock %s: %w", s.dir, err)
	}
	if !locked {
		return "", false, fmt.Errorf("lock %s: not acquired", s.dir)
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load %s: %w", key, err)
	}
	return string(data), true, nil
}

// Save atomically replaces the file holding key.
func (s *FileStore) Save(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryLockContext(ctx, lockRetryWait)
	if err != nil {
		return fmt.Errorf("lock %s: %w", s.dir, err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", s.dir)
	}
	defer func() { _ = s.lock.Unlock() }()

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	s.logger.Debug("file store saved", "key", key, "bytes", len(value))
	return nil
}

// Delete removes key. Removing an absent key is not an error.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryLockContext(ctx, lockRetryWait)
	if err != nil {
		return fmt.Errorf("lock %s: %w", s.dir, err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", s.dir)
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys returns the stored keys with prefix in ascending order.
func (s *FileStore) Keys(prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
		if err != nil || !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, key)
	}
	sort.Strings(out)
	return out, nil
}
