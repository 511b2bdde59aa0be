package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"helpengine/internal/domain"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk shape of one catalog YAML file. A file holds
// either a list under "entries" or a single entry at the top level.
type catalogFile struct {
	Entries []domain.HelpEntry `yaml:"entries"`
}

// LoadFile parses one YAML file into entries. Missing difficulty defaults to
// beginner and missing priority to medium.
func LoadFile(path string) ([]domain.HelpEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return parse(data, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

func parse(data []byte, fallbackKey string) ([]domain.HelpEntry, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	if len(cf.Entries) == 0 {
		var single domain.HelpEntry
		if err := yaml.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("parse catalog yaml: %w", err)
		}
		if single.Key == "" {
			single.Key = fallbackKey
		}
		if single.Title == "" && single.Description == "" {
			return nil, nil
		}
		cf.Entries = []domain.HelpEntry{single}
	}
	for i := range cf.Entries {
		applyEntryDefaults(&cf.Entries[i])
	}
	return cf.Entries, nil
}

func applyEntryDefaults(e *domain.HelpEntry) {
	if e.Difficulty == "" {
		e.Difficulty = domain.DifficultyBeginner
	}
	if e.Priority == "" {
		e.Priority = domain.PriorityMedium
	}
}

// LoadFromDirectory loads every .yaml/.yml file in dir, in file-name order,
// into a catalog. Unreadable files and invalid entries are logged and skipped.
func LoadFromDirectory(dir string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := New()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logger.Debug("catalog directory does not exist, starting empty", "dir", dir)
		return c, nil
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := f.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		path := filepath.Join(dir, name)
		entries, err := LoadFile(path)
		if err != nil {
			logger.Warn("cannot load catalog file", "path", path, "err", err)
			continue
		}
		for _, e := range entries {
			if err := Validate(e); err != nil {
				logger.Warn("skipping help entry", "path", path, "err", err)
				continue
			}
			if !c.Add(e.Key, e) {
				logger.Warn("duplicate help entry key", "key", e.Key, "path", path)
			}
		}
		logger.Debug("loaded catalog file", "path", path, "entries", len(entries))
	}

	logger.Info("catalog loaded", "dir", dir, "entries", c.Len())
	return c, nil
}

// WriteFile stores entries as one catalog YAML file, creating parent
// directories as needed.
func WriteFile(path string, entries []domain.HelpEntry) error {
	data, err := yaml.Marshal(catalogFile{Entries: entries})
	if err != nil {
		return fmt.Errorf("marshal catalog yaml: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
