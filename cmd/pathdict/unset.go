package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var unsetCmd = &cobra.Command{
	Use:   "unset <path>",
	Short: "Delete a single path",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnset,
}

func runUnset(cmd *cobra.Command, args []string) error {
	key := args[0]
	op := opSettingsFromFlags()

	ctx := context.Background()
	tx, err := dict.NewTransaction(ctx, op)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := tx.Unset(key); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("unset %q: %w", key, err)
	}

	result, err := tx.Commit(ctx)
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	fmt.Println(result.String())
	return nil
}
