package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/latticedb/pathdict/pkg/pdtypes"
)

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Look up a single path",
	Long: `Get performs a synchronous point lookup of path, returning its
decoded value columns.

Example:
  pathdict get shared/quota/alice/limit`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	result := dict.Lookup(context.Background(), opSettingsFromFlags(), key)
	switch result.Outcome {
	case pdtypes.LookupError:
		return fmt.Errorf("lookup %q: %w", key, result.Err)
	case pdtypes.LookupNotFound:
		if flagJSON {
			fmt.Println(`{"found": false}`)
			return nil
		}
		fmt.Printf("%s: not found\n", key)
		return nil
	}

	if flagJSON {
		out, err := json.Marshal(map[string]any{"found": true, "values": result.Values})
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(strings.Join(result.Values, "\t"))
	return nil
}
