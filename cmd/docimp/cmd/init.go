package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/docimp/docimp/internal/config"
	"github.com/docimp/docimp/internal/fsutil"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter .docimp/config.yaml",
	Long: `Write a starter configuration with the built-in defaults and a freshly
minted project ID. Refuses to overwrite an existing config unless --force
is given.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false,
		"overwrite an existing config file")
}

func runInit(_ *cobra.Command, _ []string) error {
	path := filepath.Join(projectRoot, ".docimp", "config.yaml")

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.Default()
	cfg.ProjectID = uuid.NewString()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating .docimp directory: %w", err)
	}
	if err := fsutil.AtomicWriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if !quiet {
		fmt.Printf("Initialized %s (project %s)\n", path, cfg.ProjectID)
	}
	return nil
}
