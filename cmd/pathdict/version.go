package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionString is the CLI's reported version.
const versionString = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pathdict v%s\n", versionString)
	},
}
