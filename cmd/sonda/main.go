// Package main is the entry point for the sonda CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Set version info for CLI
	SetVersion(version, commit, date)

	if err := Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			// Interrupted by the user; conventional code for SIGINT.
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
