package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"helpengine/internal/catalog"
	"helpengine/internal/config"
	"helpengine/internal/domain"
	"helpengine/internal/engine"
	"helpengine/internal/memory"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
	userName   string // namespaces persisted profile keys
	jsonOutput bool
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "helpdesk",
		Short: "helpdesk: searchable in-game help with personalized recommendations",
		Long:  "helpdesk hosts the help engine: it searches a YAML help catalog and tracks one player's progress to recommend topics.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.helpengine/config.json)")
	root.PersistentFlags().StringVarP(&userName, "user", "u", "", "profile namespace inside the store")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(initCmd())
	root.AddCommand(wizardCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(suggestCmd())
	root.AddCommand(showCmd())
	root.AddCommand(browseCmd())
	root.AddCommand(recordCmd())
	root.AddCommand(recommendCmd())
	root.AddCommand(skillCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(prefsCmd())
	root.AddCommand(resetCmd())
	root.AddCommand(metricsCmd())
	root.AddCommand(configCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(backupCmd())
	root.AddCommand(restoreCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func initCmd() *cobra.Command {
	var withStarter bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize config, data directory and catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
				return err
			}
			cfg := config.Defaults()
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}
			for _, dir := range []string{cfg.General.DataDir, cfg.Catalog.Dir} {
				if err := os.MkdirAll(config.ExpandPath(dir), 0o755); err != nil {
					return err
				}
			}
			if withStarter {
				path := filepath.Join(config.ExpandPath(cfg.Catalog.Dir), "00-starter.yaml")
				if err := catalog.WriteFile(path, starterEntries()); err != nil {
					return fmt.Errorf("write starter catalog: %w", err)
				}
				logger.Info("starter catalog written", "path", path, "entries", len(starterEntries()))
			}
			logger.Info("initialized", "config", cfgPath, "catalog", cfg.Catalog.Dir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&withStarter, "starter", true, "write a starter help catalog")
	return cmd
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

// loadConfig reads the config file and rebuilds the logger at the
// configured level.
func loadConfig() (*config.Config, error) {
	cfg, err := loadConfigFrom(resolveConfigPath())
	if err != nil {
		return nil, err
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.General.Level()}))
	return cfg, nil
}

// loadConfigFrom falls back to defaults only when the file does not exist.
// A file that fails to parse or validate is an error.
func loadConfigFrom(cfgPath string) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config %s: %w (fix it with 'helpdesk config set' or 'helpdesk wizard')", cfgPath, err)
	}
	logger.Warn("config not found, using defaults", "path", cfgPath)
	cfg = config.Defaults()
	cfg.General.DataDir = config.ExpandPath(cfg.General.DataDir)
	cfg.Catalog.Dir = config.ExpandPath(cfg.Catalog.Dir)
	cfg.Persistence.DBPath = config.ExpandPath(cfg.Persistence.DBPath)
	cfg.Persistence.Dir = config.ExpandPath(cfg.Persistence.Dir)
	return cfg, nil
}

// openStore returns the configured KVStore and a function releasing it.
func openStore(cfg *config.Config) (domain.KVStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Persistence.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Persistence.DBPath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		s, err := memory.NewSQLiteStore(cfg.Persistence.DBPath, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "file":
		s, err := memory.NewFileStore(cfg.Persistence.Dir, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	default:
		return memory.NewMapStore(), noop, nil
	}
}

// session is one engine bound to its store for the life of a command.
type session struct {
	cfg     *config.Config
	engine  *engine.Engine
	release func() error
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	cat, err := catalog.LoadFromDirectory(cfg.Catalog.Dir, logger)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	store, release, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	settings := engine.SettingsFromConfig(cfg)
	if userName != "" {
		settings = settings.WithPersistence(settings.KeyPrefix+userName+":", settings.AutoSave)
	}
	eng := engine.New(engine.Config{
		Catalog:  cat,
		Store:    store,
		Logger:   logger,
		Settings: settings,
	})
	if _, err := eng.Load(ctx); err != nil {
		logger.Warn("profile load incomplete, continuing with defaults", "err", err)
	}
	return &session{cfg: cfg, engine: eng, release: release}, nil
}

// Close persists state and releases the store.
func (s *session) Close(ctx context.Context) error {
	err := s.engine.Close(ctx)
	if rerr := s.release(); rerr != nil && err == nil {
		err = rerr
	}
	return err
}

// withSession runs fn with an open session and always closes it.
func withSession(fn func(ctx context.Context, s *session) error) error {
	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	runErr := fn(ctx, s)
	if cerr := s.Close(ctx); cerr != nil {
		logger.Warn("closing session", "err", cerr)
	}
	return runErr
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
