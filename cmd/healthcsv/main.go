// Package main provides the healthcsv CLI.
package main

import (
	"os"

	"github.com/trailpack-labs/healthcsv/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
