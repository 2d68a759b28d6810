package main

import (
	"os"

	"github.com/razor389/sec-queries/cmd/edgar/commands"
)

// main is the entry point for the edgar CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
