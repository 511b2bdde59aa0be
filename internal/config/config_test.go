package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// --- Validate ---

func TestValidate_ValidConfig(t *testing.T) {
	cfg := Defaults()
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config, got: %v", err)
	}
}

func TestValidate_MaxResults_Bounds(t *testing.T) {
	cfg := Defaults()
	cfg.Search.MaxResults = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for maxResults=0")
	}

	cfg.Search.MaxResults = 101
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for maxResults=101")
	}

	cfg.Search.MaxResults = 1
	if err := Validate(cfg); err != nil {
		t.Fatalf("maxResults=1 should be valid: %v", err)
	}
}

func TestValidate_MaxRecommendations_Bounds(t *testing.T) {
	cases := []struct {
		n     int
		valid bool
	}{
		{0, false},
		{1, true},
		{5, true},
		{6, false},
		{12, false},
	}
	for _, c := range cases {
		cfg := Defaults()
		cfg.Recommend.MaxRecommendations = c.n
		err := Validate(cfg)
		if c.valid && err != nil {
			t.Errorf("maxRecommendations=%d should be valid: %v", c.n, err)
		}
		if !c.valid && err == nil {
			t.Errorf("expected error for maxRecommendations=%d", c.n)
		}
	}
}

func TestValidate_TokenLengths(t *testing.T) {
	cfg := Defaults()
	cfg.Search.MinTokenLength = 5
	cfg.Search.MaxTokenLength = 4
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for maxTokenLength < minTokenLength")
	}
}

func TestValidate_HistoryCompaction(t *testing.T) {
	cfg := Defaults()
	cfg.Profile.HistoryCompactTo = cfg.Profile.HistoryCapacity
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for compactTo == capacity")
	}
}

func TestValidate_Thresholds(t *testing.T) {
	cfg := Defaults()
	cfg.Profile.Thresholds["master"] = ThresholdConfig{SuccessRate: 0.5}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unknown level")
	}

	cfg = Defaults()
	cfg.Profile.Thresholds["advanced"] = ThresholdConfig{SuccessRate: 1.5, Mastered: 10}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for success rate > 1")
	}
}

func TestValidate_PersistenceDriver(t *testing.T) {
	for _, driver := range []string{"sqlite", "file", "memory"} {
		cfg := Defaults()
		cfg.Persistence.Driver = driver
		if err := Validate(cfg); err != nil {
			t.Errorf("driver %q should be valid: %v", driver, err)
		}
	}

	cfg := Defaults()
	cfg.Persistence.Driver = "redis"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}

	cfg = Defaults()
	cfg.Persistence.DBPath = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for sqlite without dbPath")
	}
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Search.MaxResults = 0
	cfg.Cache.Capacity = 0
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "search.maxResults") || !strings.Contains(err.Error(), "cache.capacity") {
		t.Fatalf("expected both problems reported, got: %v", err)
	}
}

func TestGeneralConfig_Level(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		if got := (GeneralConfig{LogLevel: in}).Level(); got != want {
			t.Errorf("Level(%q) = %v, want %v", in, got, want)
		}
	}
}

// --- Load / Save ---

func TestLoadSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	original := Defaults()
	original.Search.MaxResults = 25
	original.Persistence.DBPath = filepath.Join(dir, "profile.db")

	if err := Save(path, original); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Search.MaxResults != 25 {
		t.Fatalf("expected 25, got %d", loaded.Search.MaxResults)
	}
	if loaded.Profile.Thresholds["expert"].Mastered != 20 {
		t.Fatalf("expected thresholds to survive, got %+v", loaded.Profile.Thresholds)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"search": {"maxResults": 3}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Search.MaxResults != 3 {
		t.Fatalf("expected 3, got %d", cfg.Search.MaxResults)
	}
	if cfg.Search.TitleBoost != 2.0 || cfg.Cache.Capacity != 50 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.json")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	os.WriteFile(path, []byte("{not json}"), 0o644)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLoad_ValidatesConfig(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.json")
	content := `{
		"recommend": {
			"maxRecommendations": 0
		}
	}`
	if err := os.WriteFile(cfgFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(cfgFile)
	if err == nil {
		t.Fatal("expected validation error for maxRecommendations=0")
	}
}

func TestLoad_WithEnvVarSubstitution(t *testing.T) {
	t.Setenv("TEST_HELPENGINE_CATALOG", "/tmp/test-catalog")

	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.json")
	content := `{
		"catalog": {
			"dir": "${TEST_HELPENGINE_CATALOG}"
		},
		"persistence": {
			"driver": "${TEST_HELPENGINE_DRIVER:-memory}"
		}
	}`
	if err := os.WriteFile(cfgFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Catalog.Dir != "/tmp/test-catalog" {
		t.Fatalf("expected catalog dir '/tmp/test-catalog', got %q", cfg.Catalog.Dir)
	}
	if cfg.Persistence.Driver != "memory" {
		t.Fatalf("expected driver 'memory', got %q", cfg.Persistence.Driver)
	}
}

// --- Accessor ---

func TestGetByPath_ValidPaths(t *testing.T) {
	cfg := Defaults()

	val, err := GetByPath(cfg, "persistence.driver")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if val != "sqlite" {
		t.Fatalf("expected 'sqlite', got %v", val)
	}

	val, err = GetByPath(cfg, "profile.thresholds.advanced.mastered")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if val != float64(10) {
		t.Fatalf("expected 10, got %v", val)
	}
}

func TestGetByPath_InvalidPath(t *testing.T) {
	cfg := Defaults()
	_, err := GetByPath(cfg, "nonexistent.path")
	if err == nil {
		t.Fatal("expected error for nonexistent path")
	}
}

func TestSetByPath_ValidPath(t *testing.T) {
	cfg := Defaults()
	if err := SetByPath(cfg, "persistence.driver", "file"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if cfg.Persistence.Driver != "file" {
		t.Fatalf("expected 'file', got %q", cfg.Persistence.Driver)
	}
}

func TestSetByPath_BoolConversion(t *testing.T) {
	cfg := Defaults()
	if err := SetByPath(cfg, "persistence.autoSave", "false"); err != nil {
		t.Fatalf("set bool: %v", err)
	}
	if cfg.Persistence.AutoSave {
		t.Fatal("expected persistence.autoSave=false")
	}
}

func TestSetByPath_NumberConversion(t *testing.T) {
	cfg := Defaults()
	if err := SetByPath(cfg, "search.maxResults", "50"); err != nil {
		t.Fatalf("set int: %v", err)
	}
	if cfg.Search.MaxResults != 50 {
		t.Fatalf("expected 50, got %d", cfg.Search.MaxResults)
	}
	if err := SetByPath(cfg, "search.titleBoost", "2.5"); err != nil {
		t.Fatalf("set float: %v", err)
	}
	if cfg.Search.TitleBoost != 2.5 {
		t.Fatalf("expected 2.5, got %v", cfg.Search.TitleBoost)
	}
}

func TestSetByPath_TypeMismatch(t *testing.T) {
	cfg := Defaults()
	if err := SetByPath(cfg, "search.maxResults", "lots"); err == nil {
		t.Fatal("expected error assigning a string to an int field")
	}
}

func TestSetByPath_UnknownPathFails(t *testing.T) {
	cases := []struct {
		name string
		path string
	}{
		{"typo in leaf", "search.maxResult"},
		{"unknown section", "searching.maxResults"},
		{"unknown threshold level", "profile.thresholds.novice.successRate"},
		{"path below a leaf", "search.maxResults.value"},
		{"whole section", "search"},
		{"empty", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Defaults()
			if err := SetByPath(cfg, c.path, "50"); err == nil {
				t.Fatalf("expected error for %q", c.path)
			}
			if cfg.Search.MaxResults != 10 {
				t.Fatalf("config changed: maxResults=%d", cfg.Search.MaxResults)
			}
		})
	}
}

func TestSetByPath_CoercesToLeafType(t *testing.T) {
	cfg := Defaults()
	if err := SetByPath(cfg, "general.logLevel", "123"); err != nil {
		t.Fatalf("set string: %v", err)
	}
	if cfg.General.LogLevel != "123" {
		t.Fatalf("expected string leaf to keep %q, got %q", "123", cfg.General.LogLevel)
	}
	if err := SetByPath(cfg, "persistence.autoSave", "yes"); err == nil {
		t.Fatal("expected error for non-boolean value")
	}
	if err := SetByPath(cfg, "profile.thresholds.expert.mastered", "25"); err != nil {
		t.Fatalf("set nested threshold: %v", err)
	}
	if got := cfg.Profile.Thresholds["expert"].Mastered; got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
}

// --- ListPaths ---

func TestListPaths_ReturnsAllLeaves(t *testing.T) {
	cfg := Defaults()
	paths := ListPaths(cfg)
	if len(paths) == 0 {
		t.Fatal("expected non-empty paths")
	}

	for _, expected := range []string{
		"general.logLevel",
		"search.maxResults",
		"profile.thresholds.expert.successRate",
		"persistence.driver",
	} {
		if _, ok := paths[expected]; !ok {
			t.Errorf("missing expected path: %s", expected)
		}
	}
}

// --- ExpandEnvVars ---

func TestExpandEnvVars_SimpleSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PATH", "/var/lib/help.db")
	result := ExpandEnvVars(`{"dbPath": "${TEST_DB_PATH}"}`)
	expected := `{"dbPath": "/var/lib/help.db"}`
	if result != expected {
		t.Fatalf("expected %q, got %q", expected, result)
	}
}

func TestExpandEnvVars_DefaultValue(t *testing.T) {
	os.Unsetenv("NONEXISTENT_VAR_12345")
	result := ExpandEnvVars(`{"capacity": "${NONEXISTENT_VAR_12345:-50}"}`)
	expected := `{"capacity": "50"}`
	if result != expected {
		t.Fatalf("expected %q, got %q", expected, result)
	}
}

func TestExpandEnvVars_SetVarOverridesDefault(t *testing.T) {
	t.Setenv("MY_LEVEL", "debug")
	result := ExpandEnvVars(`{"logLevel": "${MY_LEVEL:-info}"}`)
	expected := `{"logLevel": "debug"}`
	if result != expected {
		t.Fatalf("expected %q, got %q", expected, result)
	}
}

func TestExpandEnvVars_UnsetVarNoDefault_KeepsOriginal(t *testing.T) {
	os.Unsetenv("TOTALLY_UNSET_VAR_XYZ")
	result := ExpandEnvVars(`"${TOTALLY_UNSET_VAR_XYZ}"`)
	expected := `"${TOTALLY_UNSET_VAR_XYZ}"`
	if result != expected {
		t.Fatalf("expected %q, got %q", expected, result)
	}
}

func TestExpandEnvVars_EmptyVarUsesDefault(t *testing.T) {
	t.Setenv("EMPTY_VAR", "")
	result := ExpandEnvVars(`"${EMPTY_VAR:-fallback}"`)
	expected := `"fallback"`
	if result != expected {
		t.Fatalf("expected %q, got %q", expected, result)
	}
}

func TestExpandEnvVars_DollarSignWithoutBraces(t *testing.T) {
	input := `"$HOME is not substituted"`
	result := ExpandEnvVars(input)
	if result != input {
		t.Fatalf("expected no change for bare $VAR, got %q", result)
	}
}

// --- Defaults ---

func TestDefaults_ReturnsValidConfig(t *testing.T) {
	cfg := Defaults()
	if cfg == nil {
		t.Fatal("defaults returned nil")
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
	if cfg.Search.MaxResults != 10 || cfg.Recommend.MaxRecommendations != 5 {
		t.Fatalf("unexpected limits: %+v %+v", cfg.Search, cfg.Recommend)
	}
	if len(cfg.Profile.Thresholds) != 3 {
		t.Fatalf("expected 3 thresholds, got %d", len(cfg.Profile.Thresholds))
	}
}
