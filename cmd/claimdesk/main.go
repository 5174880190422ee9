// cmd/claimdesk/main.go
//
// Entry point for the claimdesk binary. All commands live in internal/cli.

package main

import (
	"fmt"
	"os"

	"github.com/kingrea/claimdesk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
