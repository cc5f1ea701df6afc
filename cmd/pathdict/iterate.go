package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/latticedb/pathdict/pkg/pdtypes"
)

var (
	flagRecurse   bool
	flagSortByKey bool
	flagSortByVal bool
	flagNoValue   bool
	flagMaxRows   int
	flagExactKey  bool
)

var iterateCmd = &cobra.Command{
	Use:   "iterate <path>",
	Short: "Stream (key, values) pairs under path",
	Long: `Iterate enumerates every row matching path, one level deep by
default or the full subtree with --recurse.

Example:
  pathdict iterate --recurse shared/quota`,
	Args: cobra.ExactArgs(1),
	RunE: runIterate,
}

func init() {
	iterateCmd.Flags().BoolVar(&flagRecurse, "recurse", false, "enumerate the full subtree instead of one level")
	iterateCmd.Flags().BoolVar(&flagSortByKey, "sort-by-key", false, "order results by pattern fields")
	iterateCmd.Flags().BoolVar(&flagSortByVal, "sort-by-value", false, "order results by the primary value column")
	iterateCmd.Flags().BoolVar(&flagNoValue, "no-value", false, "omit value columns from the result")
	iterateCmd.Flags().BoolVar(&flagExactKey, "exact-key", false, "treat path as a full key; yield at most one row")
	iterateCmd.Flags().IntVar(&flagMaxRows, "max-rows", 0, "cap the number of rows returned; 0 means unlimited")
}

func runIterate(cmd *cobra.Command, args []string) error {
	path := args[0]

	var flags pdtypes.IterateFlags
	if flagRecurse {
		flags |= pdtypes.IterFlagRecurse
	}
	if flagExactKey {
		flags |= pdtypes.IterFlagExactKey
	}
	if flagNoValue {
		flags |= pdtypes.IterFlagNoValue
	}
	if flagSortByKey {
		flags |= pdtypes.IterFlagSortByKey
	}
	if flagSortByVal {
		flags |= pdtypes.IterFlagSortByValue
	}

	op := opSettingsFromFlags()
	op.MaxRows = flagMaxRows

	ctx := context.Background()
	it, err := dict.IterateInit(ctx, op, path, flags)
	if err != nil {
		return fmt.Errorf("iterate init %q: %w", path, err)
	}
	defer it.Close()

	for it.Next(ctx) {
		if flagJSON {
			out, err := json.Marshal(map[string]any{"key": it.Key(), "values": it.Values()})
			if err != nil {
				return fmt.Errorf("marshal row: %w", err)
			}
			fmt.Println(string(out))
			continue
		}
		if len(it.Values()) == 0 {
			fmt.Println(it.Key())
		} else {
			fmt.Printf("%s\t%s\n", it.Key(), strings.Join(it.Values(), "\t"))
		}
	}

	if err := it.Err(); err != nil {
		return fmt.Errorf("iterate %q: %w", path, err)
	}
	return it.Close()
}
