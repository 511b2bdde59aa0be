package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"helpengine/internal/config"

	"github.com/spf13/cobra"
)

var knownDrivers = []struct {
	ID   string
	Desc string
}{
	{"sqlite", "SQLite database file (recommended)"},
	{"file", "one file per key, lock-guarded"},
	{"memory", "nothing persisted, for trying things out"},
}

func wizardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wizard",
		Short: "Interactive setup: data dir → catalog → persistence → save config",
		Long:  "Guides you through the data directory, the help catalog location and the profile store. Writes config to the path used by --config or default.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWizard(os.Stdin, os.Stdout, resolveConfigPath())
		},
	}
}

func runWizard(in io.Reader, out io.Writer, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		cfg = config.Defaults()
	}

	reader := bufio.NewReader(in)
	prompt := func(def string) (string, error) {
		if def != "" {
			fmt.Fprintf(out, " [%s]: ", def)
		} else {
			fmt.Fprint(out, ": ")
		}
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		s := strings.TrimSpace(line)
		if s == "" {
			return def, nil
		}
		return s, nil
	}

	fmt.Fprintln(out, "\n--- Step 1: Data directory ---")
	fmt.Fprint(out, "Directory for profile data and backups")
	dataDir, err := prompt(cfg.General.DataDir)
	if err != nil {
		return err
	}
	cfg.General.DataDir = config.ExpandPath(dataDir)
	if err := os.MkdirAll(cfg.General.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	fmt.Fprintln(out, "\n--- Step 2: Help catalog ---")
	fmt.Fprint(out, "Directory of YAML help entries")
	catDir, err := prompt(cfg.Catalog.Dir)
	if err != nil {
		return err
	}
	cfg.Catalog.Dir = config.ExpandPath(catDir)

	fmt.Fprintln(out, "\n--- Step 3: Profile store ---")
	defNum := "1"
	for i, d := range knownDrivers {
		fmt.Fprintf(out, "  %d) %-7s %s\n", i+1, d.ID, d.Desc)
		if d.ID == cfg.Persistence.Driver {
			defNum = fmt.Sprint(i + 1)
		}
	}
	fmt.Fprintf(out, "Choose store (1-%d)", len(knownDrivers))
	choice, err := prompt(defNum)
	if err != nil {
		return err
	}
	var idx int
	if n, _ := fmt.Sscanf(choice, "%d", &idx); n != 1 || idx < 1 || idx > len(knownDrivers) {
		idx = 1
	}
	cfg.Persistence.Driver = knownDrivers[idx-1].ID
	switch cfg.Persistence.Driver {
	case "sqlite":
		cfg.Persistence.DBPath = filepath.Join(cfg.General.DataDir, "profile.db")
	case "file":
		cfg.Persistence.Dir = filepath.Join(cfg.General.DataDir, "store")
	}

	fmt.Fprint(out, "Save after every recorded interaction? (y/n)")
	def := "y"
	if !cfg.Persistence.AutoSave {
		def = "n"
	}
	yn, err := prompt(def)
	if err != nil {
		return err
	}
	cfg.Persistence.AutoSave = strings.HasPrefix(strings.ToLower(yn), "y")

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(out, "\nConfig saved to %s\n", cfgPath)
	return nil
}
