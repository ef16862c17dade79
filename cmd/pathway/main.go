// cmd/pathway/main.go
//
// This is the entry point for the pathway CLI.
// Sub-commands live in internal/cmd; see `pathway --help`.

package main

import (
	"fmt"
	"os"

	"github.com/kingrea/pathway/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
