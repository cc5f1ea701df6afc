// Command pathdict is a CLI front end over the hierarchical key-value
// dictionary implemented by internal/sqlengine.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}
