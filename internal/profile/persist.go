package profile

import (
	"context"
	"errors"
	"fmt"

	"helpengine/internal/domain"
)

// Storage key suffixes appended to the configured prefix.
const (
	KeyProfile  = "profile"
	KeyProgress = "progress"
	KeyHistory  = "history"
)

// Save writes the snapshot under prefix+KeyProfile/KeyProgress/KeyHistory.
func (snap Snapshot) Save(ctx context.Context, kv domain.KVStore, prefix string) error {
	var errs []error
	for _, p := range []struct{ key, value string }{
		{prefix + KeyProfile, snap.Profile},
		{prefix + KeyProgress, snap.Progress},
		{prefix + KeyHistory, snap.History},
	} {
		if err := kv.Save(ctx, p.key, p.value); err != nil {
			errs = append(errs, fmt.Errorf("save %s: %w", p.key, err))
		}
	}
	return errors.Join(errs...)
}

// Save snapshots the store and writes it to kv.
func (s *Store) Save(ctx context.Context, kv domain.KVStore, prefix string) error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	return snap.Save(ctx, kv, prefix)
}

// LoadResult tells which parts were restored from storage. A part that was
// missing or corrupt holds its default instead.
type LoadResult struct {
	Profile  bool
	Progress bool
	History  bool
}

// Load restores state from kv. Missing keys leave the default in place and
// corrupt data falls back to the default with a warning. Only storage I/O
// failures are returned, after the fallback has been applied.
func (s *Store) Load(ctx context.Context, kv domain.KVStore, prefix string) (LoadResult, error) {
	var (
		res  LoadResult
		errs []error
	)
	prof := domain.DefaultProfile(s.clock.Now())
	progress := domain.NewProgressData()
	var records []domain.InteractionRecord

	if raw, ok, err := s.fetch(ctx, kv, prefix+KeyProfile, &errs); ok {
		if p, derr := DecodeProfile(raw); derr != nil {
			s.logger.Warn("stored profile unreadable, using default", "key", prefix+KeyProfile, "error", derr)
		} else {
			prof, res.Profile = p, true
		}
	} else if err == nil {
		s.logger.Debug("no stored profile", "key", prefix+KeyProfile)
	}

	if raw, ok, _ := s.fetch(ctx, kv, prefix+KeyProgress, &errs); ok {
		if p, derr := DecodeProgress(raw); derr != nil {
			s.logger.Warn("stored progress unreadable, using default", "key", prefix+KeyProgress, "error", derr)
		} else {
			progress, res.Progress = p, true
		}
	}

	if raw, ok, _ := s.fetch(ctx, kv, prefix+KeyHistory, &errs); ok {
		if r, derr := DecodeHistory(raw); derr != nil {
			s.logger.Warn("stored history unreadable, using empty history", "key", prefix+KeyHistory, "error", derr)
		} else {
			records, res.History = r, true
		}
	}

	s.Restore(prof, progress, records)
	s.logger.Info("profile loaded",
		"profile", res.Profile, "progress", res.Progress, "history", res.History,
		"level", s.profile.SkillLevel)
	return res, errors.Join(errs...)
}

func (s *Store) fetch(ctx context.Context, kv domain.KVStore, key string, errs *[]error) (string, bool, error) {
	raw, ok, err := kv.Load(ctx, key)
	if err != nil {
		s.logger.Warn("loading from store failed, using default", "key", key, "error", err)
		*errs = append(*errs, fmt.Errorf("load %s: %w", key, err))
		return "", false, err
	}
	return raw, ok, nil
}
