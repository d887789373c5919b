// Package main is the entry point for the psle CLI.
package main

import (
	"os"

	"github.com/jmylchreest/psle/cmd/psle/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
