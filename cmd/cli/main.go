// Package main is the entry point for the supply-chain CLI.
package main

import (
	"os"

	"github.com/0ji3/a2a-supply-chain-project/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
