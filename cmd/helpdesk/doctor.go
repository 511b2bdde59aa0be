package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"helpengine/internal/catalog"
	"helpengine/internal/config"
	"helpengine/internal/domain"
	"helpengine/internal/memory"

	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on the helpdesk installation",
		Long: `Verifies that the configuration, help catalog and profile store are
correctly set up. Reports pass/fail for each check.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			fmt.Printf("helpdesk doctor v%s\n", version)
			fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

			passed := 0
			failed := 0
			warned := 0

			if _, err := os.Stat(cfgPath); err != nil {
				printFail("Config file", fmt.Sprintf("not found at %s", cfgPath))
				fmt.Printf("\nRun 'helpdesk init' to create a default configuration.\n")
				return nil
			}
			printPass("Config file", cfgPath)
			passed++

			cfg, err := config.Load(cfgPath)
			if err != nil {
				printFail("Config validation", err.Error())
				failed++
				fmt.Printf("\n%d passed, %d failed\n", passed, failed)
				return fmt.Errorf("%d check(s) failed", failed)
			}
			printPass("Config validation", "valid")
			passed++

			cat, err := catalog.LoadFromDirectory(cfg.Catalog.Dir, logger)
			switch {
			case err != nil:
				printFail("Catalog", err.Error())
				failed++
			case cat.Len() == 0:
				printWarn("Catalog", fmt.Sprintf("no entries in %s", cfg.Catalog.Dir))
				warned++
			default:
				printPass("Catalog", fmt.Sprintf("%d entries in %s", cat.Len(), cfg.Catalog.Dir))
				passed++
				if dangling := danglingReferences(cat); len(dangling) > 0 {
					printWarn("Related topics", fmt.Sprintf("%d dangling reference(s), e.g. %s", len(dangling), dangling[0]))
					warned++
				} else {
					printPass("Related topics", "all references resolve")
					passed++
				}
			}

			switch cfg.Persistence.Driver {
			case "sqlite":
				if v, err := checkDatabase(cfg.Persistence.DBPath); err != nil {
					printFail("Database", err.Error())
					failed++
				} else {
					printPass("Database", fmt.Sprintf("%s (schema v%d)", cfg.Persistence.DBPath, v))
					passed++
				}
			case "file":
				if err := checkFileStore(cfg.Persistence.Dir); err != nil {
					printFail("File store", err.Error())
					failed++
				} else {
					printPass("File store", cfg.Persistence.Dir)
					passed++
				}
			default:
				printWarn("Persistence", "memory driver: the profile is lost on exit")
				warned++
			}

			fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
			fmt.Printf("Results: %d passed, %d warnings, %d failed\n", passed, warned, failed)
			if failed > 0 {
				fmt.Printf("\nPlease fix the failed checks before using helpdesk.\n")
				return fmt.Errorf("%d check(s) failed", failed)
			}
			if warned > 0 {
				fmt.Printf("\nhelpdesk should work but consider fixing the warnings.\n")
			} else {
				fmt.Printf("\nAll checks passed!\n")
			}
			return nil
		},
	}
}

// danglingReferences lists "entry -> missing" pairs for related topics that
// do not resolve.
func danglingReferences(cat *catalog.Catalog) []string {
	var out []string
	cat.Each(func(_ int, e domain.HelpEntry) {
		for _, rel := range e.RelatedTopics {
			if !cat.Has(rel) {
				out = append(out, e.Key+" -> "+rel)
			}
		}
	})
	return out
}

// checkDatabase opens the store, which runs migrations, and reports the
// schema version.
func checkDatabase(dbPath string) (int, error) {
	store, err := memory.NewSQLiteStore(dbPath, logger)
	if err != nil {
		return 0, fmt.Errorf("cannot open: %w", err)
	}
	defer store.Close()
	return store.SchemaVersion()
}

func checkFileStore(dir string) error {
	store, err := memory.NewFileStore(dir, logger)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const checkKey = "_doctor"
	if err := store.Save(ctx, checkKey, "ok"); err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	return store.Delete(ctx, checkKey)
}

func printPass(check, detail string) {
	fmt.Printf("  [PASS] %-20s %s\n", check, detail)
}

func printFail(check, detail string) {
	fmt.Printf("  [FAIL] %-20s %s\n", check, detail)
}

func printWarn(check, detail string) {
	fmt.Printf("  [WARN] %-20s %s\n", check, detail)
}
