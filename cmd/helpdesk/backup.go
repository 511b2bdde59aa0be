package main

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"helpengine/internal/config"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// Archive layout: config.json at the root, catalog files under catalog/,
// the SQLite database and its WAL files under db/, file-store keys under store/.
const (
	archiveCatalog = "catalog/"
	archiveDB      = "db/"
	archiveStore   = "store/"
)

type archiveFile struct {
	path string // on disk
	name string // inside the archive
}

func backupCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the config, help catalog and stored profile",
		Long: `Creates a compressed .tar.gz archive containing the configuration file,
the YAML help catalog and the persisted profile (SQLite database or file
store, depending on persistence.driver). The backup is timestamped by default.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if outputPath == "" {
				backupDir := filepath.Join(config.ExpandPath(cfg.General.DataDir), "backups")
				if err := os.MkdirAll(backupDir, 0o755); err != nil {
					return fmt.Errorf("cannot create backup directory: %w", err)
				}
				ts := time.Now().Format("20060102-150405")
				outputPath = filepath.Join(backupDir, fmt.Sprintf("helpdesk-backup-%s.tar.gz", ts))
			}

			files := collectBackupFiles(cfgPath, cfg)
			if len(files) == 0 {
				return fmt.Errorf("nothing to back up (config: %s)", cfgPath)
			}

			if err := createTarGz(outputPath, files); err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}

			fmt.Printf("Backup created: %s\n", outputPath)
			fmt.Printf("Files included: %d\n", len(files))
			for _, f := range files {
				size := uint64(0)
				if info, err := os.Stat(f.path); err == nil {
					size = uint64(info.Size())
				}
				fmt.Printf("  - %s (%s)\n", f.name, humanize.Bytes(size))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (default: <dataDir>/backups/helpdesk-backup-<timestamp>.tar.gz)")
	return cmd
}

func collectBackupFiles(cfgPath string, cfg *config.Config) []archiveFile {
	var files []archiveFile
	exists := func(p string) bool {
		info, err := os.Stat(p)
		return err == nil && !info.IsDir()
	}

	if exists(cfgPath) {
		files = append(files, archiveFile{path: cfgPath, name: "config.json"})
	}
	files = append(files, dirFiles(cfg.Catalog.Dir, archiveCatalog, ".yaml", ".yml")...)

	switch cfg.Persistence.Driver {
	case "sqlite":
		for _, suffix := range []string{"", "-wal", "-shm"} {
			p := cfg.Persistence.DBPath + suffix
			if exists(p) {
				files = append(files, archiveFile{path: p, name: archiveDB + filepath.Base(p)})
			}
		}
	case "file":
		files = append(files, dirFiles(cfg.Persistence.Dir, archiveStore, ".kv")...)
	}
	return files
}

func dirFiles(dir, prefix string, exts ...string) []archiveFile {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []archiveFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		for _, ext := range exts {
			if strings.HasSuffix(e.Name(), ext) {
				out = append(out, archiveFile{path: filepath.Join(dir, e.Name()), name: prefix + e.Name()})
				break
			}
		}
	}
	return out
}

func restoreCmd() *cobra.Command {
	var inputPath string
	var force bool

	cmd := &cobra.Command{
		Use:   "restore [file.tar.gz]",
		Short: "Restore config, catalog and profile from a backup archive",
		Long: `Restores the files of a .tar.gz archive created by 'helpdesk backup'
to the locations named by the current configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" && len(args) > 0 {
				inputPath = args[0]
			}
			if inputPath == "" {
				return fmt.Errorf("specify a backup file: helpdesk restore <file.tar.gz>")
			}

			cfgPath := resolveConfigPath()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if !force {
				if _, err := os.Stat(cfgPath); err == nil {
					fmt.Printf("WARNING: This will overwrite existing data.\n")
					fmt.Printf("  Config:  %s\n", cfgPath)
					fmt.Printf("  Catalog: %s\n", cfg.Catalog.Dir)
					fmt.Printf("Use --force to skip this warning.\n")
					return fmt.Errorf("restore aborted (use --force to proceed)")
				}
			}

			restored, err := extractTarGz(inputPath, restoreTargets(cfgPath, cfg))
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}

			fmt.Printf("Restore completed from: %s\n", inputPath)
			fmt.Printf("Files restored: %d\n", len(restored))
			for _, f := range restored {
				fmt.Printf("  - %s\n", f)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "backup file to restore from")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing data without warning")
	return cmd
}

// restoreTargets maps an archive name to its destination, or "" to skip it.
func restoreTargets(cfgPath string, cfg *config.Config) func(name string) string {
	return func(name string) string {
		name = path.Clean(name)
		base := path.Base(name)
		if base == "." || base == ".." || base == "/" {
			return ""
		}
		switch {
		case name == "config.json":
			return cfgPath
		case strings.HasPrefix(name, archiveCatalog):
			return filepath.Join(cfg.Catalog.Dir, base)
		case strings.HasPrefix(name, archiveDB):
			return cfg.Persistence.DBPath + suffixOf(base)
		case strings.HasPrefix(name, archiveStore):
			return filepath.Join(cfg.Persistence.Dir, base)
		default:
			return ""
		}
	}
}

// suffixOf returns the SQLite side-file suffix of name ("-wal", "-shm" or "").
func suffixOf(name string) string {
	for _, s := range []string{"-wal", "-shm"} {
		if strings.HasSuffix(name, s) {
			return s
		}
	}
	return ""
}

// createTarGz creates a .tar.gz archive from the given files.
func createTarGz(outputPath string, files []archiveFile) error {
	outFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer outFile.Close()

	gzWriter := gzip.NewWriter(outFile)
	defer gzWriter.Close()

	tarWriter := tar.NewWriter(gzWriter)
	defer tarWriter.Close()

	for _, f := range files {
		if err := addFileToTar(tarWriter, f); err != nil {
			return fmt.Errorf("add %s: %w", f.path, err)
		}
	}

	return nil
}

func addFileToTar(tw *tar.Writer, f archiveFile) error {
	file, err := os.Open(f.path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = f.name

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tw, file)
	return err
}

// extractTarGz writes every archive member that target maps to a path.
func extractTarGz(archivePath string, target func(name string) string) ([]string, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("not a valid gzip file: %w", err)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	var restored []string

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		targetPath := target(header.Name)
		if targetPath == "" {
			logger.Warn("skipping unknown archive member", "name", header.Name)
			continue
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return nil, err
		}

		outFile, err := os.Create(targetPath)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", targetPath, err)
		}

		if _, err := io.Copy(outFile, tarReader); err != nil {
			outFile.Close()
			return nil, fmt.Errorf("extract %s: %w", targetPath, err)
		}
		outFile.Close()

		restored = append(restored, targetPath)
	}

	return restored, nil
}
