// Package main is the entry point for eventctl.
package main

import (
	"os"

	"github.com/pugetsound/eventscope/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		os.Exit(1)
	}
}
