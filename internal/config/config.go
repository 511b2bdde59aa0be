package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config is the root configuration for the help engine host.
type Config struct {
	General     GeneralConfig     `json:"general"`
	Catalog     CatalogConfig     `json:"catalog"`
	Search      SearchConfig      `json:"search"`
	Index       IndexConfig       `json:"index"`
	Cache       CacheConfig       `json:"cache"`
	Profile     ProfileConfig     `json:"profile"`
	Recommend   RecommendConfig   `json:"recommend"`
	Persistence PersistenceConfig `json:"persistence"`
	Metrics     MetricsConfig     `json:"metrics"`
}

type GeneralConfig struct {
	LogLevel string `json:"logLevel"` // "debug" | "info" | "warn" | "error"
	DataDir  string `json:"dataDir"`
}

// Level maps LogLevel onto slog, defaulting to info.
func (g GeneralConfig) Level() slog.Level {
	switch strings.ToLower(g.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type CatalogConfig struct {
	Dir string `json:"dir"` // directory of YAML help entries
}

type SearchConfig struct {
	MaxResults            int     `json:"maxResults"`
	TitleBoost            float64 `json:"titleBoost"`
	ExactBonus            float64 `json:"exactBonus"`
	MaxQueryLength        int     `json:"maxQueryLength"`
	MinTokenLength        int     `json:"minTokenLength"`
	MaxTokenLength        int     `json:"maxTokenLength"`
	PartialMatchMinLength int     `json:"partialMatchMinLength"` // 0 disables partial matching
}

type IndexConfig struct {
	StaleAfterHours  int `json:"staleAfterHours"`
	RebuildThreshold int `json:"rebuildThreshold"`
}

type CacheConfig struct {
	Capacity int `json:"capacity"`
}

// ThresholdConfig is the requirement to enter one skill level.
type ThresholdConfig struct {
	SuccessRate float64 `json:"successRate"`
	Mastered    int     `json:"mastered"`
}

type ProfileConfig struct {
	HistoryCapacity  int                        `json:"historyCapacity"`
	HistoryCompactTo int                        `json:"historyCompactTo"`
	PatternWindow    int                        `json:"patternWindow"`
	StyleWindow      int                        `json:"styleWindow"`
	ReadingSeconds   int                        `json:"readingSeconds"`
	Thresholds       map[string]ThresholdConfig `json:"thresholds"` // keyed by target level
}

type RecommendConfig struct {
	MaxRecommendations int `json:"maxRecommendations"`
	ErrorWindowHours   int `json:"errorWindowHours"`
}

type PersistenceConfig struct {
	Driver    string `json:"driver"` // "sqlite" | "file" | "memory"
	DBPath    string `json:"dbPath"`
	Dir       string `json:"dir"`
	KeyPrefix string `json:"keyPrefix"`
	AutoSave  bool   `json:"autoSave"`
}

// MetricsConfig configures the Prometheus text exposition.
type MetricsConfig struct {
	Enabled bool `json:"enabled"`
}

// DefaultConfigDir returns the default config directory (~/.helpengine).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".helpengine"
	}
	return filepath.Join(home, ".helpengine")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.General.DataDir = ExpandPath(cfg.General.DataDir)
	cfg.Catalog.Dir = ExpandPath(cfg.Catalog.Dir)
	cfg.Persistence.DBPath = ExpandPath(cfg.Persistence.DBPath)
	cfg.Persistence.Dir = ExpandPath(cfg.Persistence.Dir)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

var skillLevelNames = []string{"intermediate", "advanced", "expert"}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	switch strings.ToLower(cfg.General.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	if cfg.Search.MaxResults < 1 || cfg.Search.MaxResults > 100 {
		errs = append(errs, "search.maxResults must be between 1 and 100")
	}
	if cfg.Search.TitleBoost < 1 {
		errs = append(errs, "search.titleBoost must be >= 1")
	}
	if cfg.Search.ExactBonus < 1 {
		errs = append(errs, "search.exactBonus must be >= 1")
	}
	if cfg.Search.MaxQueryLength < 1 {
		errs = append(errs, "search.maxQueryLength must be >= 1")
	}
	if cfg.Search.MinTokenLength < 1 {
		errs = append(errs, "search.minTokenLength must be >= 1")
	}
	if cfg.Search.MaxTokenLength < cfg.Search.MinTokenLength {
		errs = append(errs, "search.maxTokenLength must be >= search.minTokenLength")
	}
	if cfg.Search.PartialMatchMinLength < 0 {
		errs = append(errs, "search.partialMatchMinLength must be >= 0")
	}

	if cfg.Index.StaleAfterHours < 1 {
		errs = append(errs, "index.staleAfterHours must be >= 1")
	}
	if cfg.Cache.Capacity < 1 {
		errs = append(errs, "cache.capacity must be >= 1")
	}

	if cfg.Profile.HistoryCapacity < 2 {
		errs = append(errs, "profile.historyCapacity must be >= 2")
	}
	if cfg.Profile.HistoryCompactTo < 1 || cfg.Profile.HistoryCompactTo >= cfg.Profile.HistoryCapacity {
		errs = append(errs, "profile.historyCompactTo must be between 1 and historyCapacity-1")
	}
	if cfg.Profile.PatternWindow < 1 || cfg.Profile.StyleWindow < 1 {
		errs = append(errs, "profile.patternWindow and profile.styleWindow must be >= 1")
	}
	if cfg.Profile.ReadingSeconds < 1 {
		errs = append(errs, "profile.readingSeconds must be >= 1")
	}
	for name, th := range cfg.Profile.Thresholds {
		if !contains(skillLevelNames, name) {
			errs = append(errs, fmt.Sprintf("profile.thresholds: unknown level %q", name))
			continue
		}
		if th.SuccessRate < 0 || th.SuccessRate > 1 {
			errs = append(errs, fmt.Sprintf("profile.thresholds.%s.successRate must be between 0 and 1", name))
		}
		if th.Mastered < 0 {
			errs = append(errs, fmt.Sprintf("profile.thresholds.%s.mastered must be >= 0", name))
		}
	}

	if cfg.Recommend.MaxRecommendations < 1 || cfg.Recommend.MaxRecommendations > 5 {
		errs = append(errs, "recommend.maxRecommendations must be between 1 and 5")
	}
	if cfg.Recommend.ErrorWindowHours < 1 {
		errs = append(errs, "recommend.errorWindowHours must be >= 1")
	}

	switch cfg.Persistence.Driver {
	case "sqlite":
		if cfg.Persistence.DBPath == "" {
			errs = append(errs, "persistence.dbPath is required for the sqlite driver")
		}
	case "file":
		if cfg.Persistence.Dir == "" {
			errs = append(errs, "persistence.dir is required for the file driver")
		}
	case "memory":
	default:
		errs = append(errs, "persistence.driver must be one of: sqlite, file, memory")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
