package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var flagExpireSecs int64

var setCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set a single path to value",
	Long: `Set opens a one-statement transaction, schedules a single Set,
and commits it.

Example:
  pathdict set shared/quota/alice/limit 5
  pathdict set --expire-secs 60 priv/session/alice/token abc123`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func init() {
	setCmd.Flags().Int64Var(&flagExpireSecs, "expire-secs", 0, "TTL in seconds; 0 means no expiry")
}

func runSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	op := opSettingsFromFlags()
	op.ExpireSecs = flagExpireSecs

	ctx := context.Background()
	tx, err := dict.NewTransaction(ctx, op)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := tx.Set(key, value); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("set %q: %w", key, err)
	}

	result, err := tx.Commit(ctx)
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	if flagJSON {
		fmt.Printf(`{"result": %q}`+"\n", result.String())
		return nil
	}
	fmt.Println(result.String())
	return nil
}
