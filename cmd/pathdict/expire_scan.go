package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var expireScanCmd = &cobra.Command{
	Use:   "expire-scan",
	Short: "Delete every row past its expire column",
	RunE:  runExpireScan,
}

func runExpireScan(cmd *cobra.Command, args []string) error {
	hadExpireMap, err := dict.ExpireScan(context.Background())
	if err != nil {
		return fmt.Errorf("expire scan: %w", err)
	}
	if hadExpireMap {
		fmt.Println("scanned")
	} else {
		fmt.Println("no maps declare an expire column")
	}
	return nil
}
