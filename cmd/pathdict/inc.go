package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var incCmd = &cobra.Command{
	Use:   "inc <path> <delta>",
	Short: "Atomically increment a path's primary value column",
	Long: `Inc schedules col = col + delta against path's primary value
column. If the row does not exist the commit result is "not_found", not
an error.

Example:
  pathdict inc shared/quota/alice/limit 3`,
	Args: cobra.ExactArgs(2),
	RunE: runInc,
}

func runInc(cmd *cobra.Command, args []string) error {
	key := args[0]
	delta, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("parse delta %q: %w", args[1], err)
	}

	op := opSettingsFromFlags()
	ctx := context.Background()
	tx, err := dict.NewTransaction(ctx, op)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := tx.AtomicInc(key, delta); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("inc %q: %w", key, err)
	}

	result, err := tx.Commit(ctx)
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	fmt.Println(result.String())
	return nil
}
