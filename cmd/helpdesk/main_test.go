package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"helpengine/internal/catalog"
	"helpengine/internal/config"
)

func TestStarterEntries_AreValid(t *testing.T) {
	cat := catalog.New()
	for _, e := range starterEntries() {
		if err := catalog.Validate(e); err != nil {
			t.Errorf("%s: %v", e.Key, err)
		}
		if !cat.Add(e.Key, e) {
			t.Errorf("duplicate key %s", e.Key)
		}
	}
}

func TestRestoreTargets(t *testing.T) {
	cfg := config.Defaults()
	cfg.Catalog.Dir = "/data/catalog"
	cfg.Persistence.DBPath = "/data/profile.db"
	cfg.Persistence.Dir = "/data/store"
	target := restoreTargets("/etc/helpdesk/config.json", cfg)

	cases := []struct {
		name string
		want string
	}{
		{"config.json", "/etc/helpdesk/config.json"},
		{"catalog/00-basics.yaml", filepath.Join("/data/catalog", "00-basics.yaml")},
		{"db/old.db", "/data/profile.db"},
		{"db/old.db-wal", "/data/profile.db-wal"},
		{"store/helpengine%3Aprofile.kv", filepath.Join("/data/store", "helpengine%3Aprofile.kv")},
		{"../../etc/passwd", ""},
		{"catalog/../../x.yaml", ""},
	}
	for _, tc := range cases {
		if got := target(tc.name); got != tc.want {
			t.Errorf("target(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestBackupRestore_RoundTrip(t *testing.T) {
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	src := t.TempDir()
	cfg := config.Defaults()
	cfg.Catalog.Dir = filepath.Join(src, "catalog")
	cfg.Persistence.Driver = "file"
	cfg.Persistence.Dir = filepath.Join(src, "store")
	cfgPath := filepath.Join(src, "config.json")
	if err := config.Save(cfgPath, cfg); err != nil {
		t.Fatal(err)
	}
	if err := catalog.WriteFile(filepath.Join(cfg.Catalog.Dir, "00-starter.yaml"), starterEntries()); err != nil {
		t.Fatal(err)
	}

	files := collectBackupFiles(cfgPath, cfg)
	if len(files) != 2 {
		t.Fatalf("expected config and one catalog file, got %+v", files)
	}
	archive := filepath.Join(t.TempDir(), "b.tar.gz")
	if err := createTarGz(archive, files); err != nil {
		t.Fatalf("createTarGz: %v", err)
	}

	dst := t.TempDir()
	restoreCfg := config.Defaults()
	restoreCfg.Catalog.Dir = filepath.Join(dst, "catalog")
	restored, err := extractTarGz(archive, restoreTargets(filepath.Join(dst, "config.json"), restoreCfg))
	if err != nil {
		t.Fatalf("extractTarGz: %v", err)
	}
	if len(restored) != 2 {
		t.Fatalf("expected 2 restored files, got %v", restored)
	}
	cat, err := catalog.LoadFromDirectory(restoreCfg.Catalog.Dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cat.Len() != len(starterEntries()) {
		t.Fatalf("expected %d entries, got %d", len(starterEntries()), cat.Len())
	}
}

func TestRunWizard_WritesConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	input := strings.Join([]string{
		filepath.Join(dir, "data"),
		filepath.Join(dir, "catalog"),
		"2",
		"n",
	}, "\n") + "\n"

	if err := runWizard(strings.NewReader(input), io.Discard, cfgPath); err != nil {
		t.Fatalf("runWizard: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Persistence.Driver != "file" {
		t.Fatalf("expected file driver, got %q", cfg.Persistence.Driver)
	}
	if cfg.Persistence.Dir != filepath.Join(dir, "data", "store") {
		t.Fatalf("unexpected store dir %q", cfg.Persistence.Dir)
	}
	if cfg.Persistence.AutoSave {
		t.Fatal("expected autoSave off")
	}
	if cfg.Catalog.Dir != filepath.Join(dir, "catalog") {
		t.Fatalf("unexpected catalog dir %q", cfg.Catalog.Dir)
	}
}

func TestRunWizard_AcceptsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	input := filepath.Join(dir, "data") + "\n" + filepath.Join(dir, "catalog") + "\n\n\n"

	if err := runWizard(strings.NewReader(input), io.Discard, cfgPath); err != nil {
		t.Fatalf("runWizard: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Persistence.Driver != "sqlite" || !cfg.Persistence.AutoSave {
		t.Fatalf("expected defaults, got %+v", cfg.Persistence)
	}
}

func TestLoadConfigFrom_MissingFileUsesDefaults(t *testing.T) {
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg, err := loadConfigFrom(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("missing config should fall back to defaults: %v", err)
	}
	if cfg.Persistence.Driver != "sqlite" {
		t.Fatalf("expected default driver, got %q", cfg.Persistence.Driver)
	}
}

func TestLoadConfigFrom_InvalidFileFails(t *testing.T) {
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()
	cases := map[string]string{
		"invalid.json": `{"search": {"maxResults": 0}}`,
		"broken.json":  `{not json}`,
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := loadConfigFrom(path); err == nil {
			t.Errorf("%s: expected an error instead of silent defaults", name)
		}
	}
}
