package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/latticedb/pathdict/internal/paths"
)

// defaultConfigYAML is written to config.yaml on first run. It declares
// one example map so a fresh checkout has something to lookup/set/iterate
// against; real deployments overwrite this with their own maps.
const defaultConfigYAML = `# pathdict configuration
backend: sqlite

# data_dir: .pathdict-db

maps:
  - pattern: "shared/quota/$/limit"
    table: quota
    pattern_fields:
      - {column: user, type: string}
    value_field: limit_value
    value_types: [int64]
    expire_field: ""
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration directory and a default config.yaml",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir, err := resolveConfigDir()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("config.yaml already exists at %s\n", configPath)
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config.yaml: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("write config.yaml: %w", err)
	}

	dataDir, err := paths.ResolveDataDir(flagDataDir, "")
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}

	fmt.Printf("initialized pathdict configuration at %s (data dir: %s)\n", configPath, dataDir)
	return nil
}
