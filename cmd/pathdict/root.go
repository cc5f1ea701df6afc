package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/latticedb/pathdict/internal/mapconfig"
	"github.com/latticedb/pathdict/internal/paths"
	"github.com/latticedb/pathdict/internal/sqlengine"
	"github.com/latticedb/pathdict/internal/sqlengine/sqlitedriver"
	"github.com/latticedb/pathdict/pkg/pdtypes"
)

// Exit codes follow the conventional success/user-error/system-error split.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
	flagUsername  string
)

// dict is the attached pdtypes.Dict handle, initialized by
// PersistentPreRunE and released by PersistentPostRunE. connString records
// the connect string acquired from sqlitedriver's cache so
// PersistentPostRunE can release exactly what PreRunE acquired.
var (
	dict       pdtypes.Dict
	connString string
)

var rootCmd = &cobra.Command{
	Use:   "pathdict",
	Short: "pathdict is a hierarchical key-value dictionary over SQL",
	Long: `pathdict addresses relational rows as filesystem-like paths.
It matches each path against a set of configured patterns that bind path
segments to typed SQL columns, and exposes lookup, iteration, transactional
set/unset/atomic-increment, and TTL expiry over the result.`,
	Version:           versionString,
	PersistentPreRunE: attachDict,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return detachDict()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $PATHDICT_CONFIG_DIR, else the platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.pathdict-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagUsername, "username", "", "username bound into priv/ scoped operations")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(unsetCmd)
	rootCmd.AddCommand(incCmd)
	rootCmd.AddCommand(iterateCmd)
	rootCmd.AddCommand(expireScanCmd)
}

// attachDict loads the map configuration and opens the SQLite-backed
// dict handle. It is skipped for commands that do not need storage.
func attachDict(cmd *cobra.Command, args []string) error {
	switch cmd.Name() {
	case "version", "init":
		return nil
	}

	configDir, err := resolveConfigDir()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}

	cfg, err := mapconfig.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dataDir, err := paths.ResolveDataDir(flagDataDir, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	connString = filepath.Join(dataDir, "pathdict.db")

	driver, err := sqlitedriver.Acquire("sqlite", connString, func() (*sqlitedriver.Driver, error) {
		return sqlitedriver.Open(connString)
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", connString, err)
	}
	if err := sqlitedriver.EnsureTables(driver, cfg.Maps); err != nil {
		return fmt.Errorf("ensure tables: %w", err)
	}

	dict = sqlengine.NewBackend(driver, cfg.Maps)
	return nil
}

// detachDict releases the dict handle and its cached connection.
func detachDict() error {
	if dict == nil {
		return nil
	}
	err := dict.Close()
	dict = nil
	if relErr := sqlitedriver.Release("sqlite", connString); relErr != nil && err == nil {
		err = relErr
	}
	return err
}

// resolveConfigDir returns the configuration directory following the
// precedence chain: --config-dir flag > PATHDICT_CONFIG_DIR env > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// opSettingsFromFlags builds the OpSettings shared by all data commands
// from the persistent --username flag.
func opSettingsFromFlags() pdtypes.OpSettings {
	return pdtypes.OpSettings{Username: flagUsername}
}
