// Package main is the entry point for the bz2p CLI.
//
// Usage:
//
//	bz2p [flags] <command> [subcommand] [args]
//
// Commands:
//
//	compress    - Compress files into the configured store
//	decompress  - Restore archives from the store
//	filter      - Test names against a filter expression
//	manifest    - List, inspect and delete archive records
//	config      - Show the effective configuration
//	version     - Show version information
package main

import (
	"os"

	"github.com/jzebedee/bz2portable/cmd/bz2p/commands"
	"github.com/jzebedee/bz2portable/pkg/cli"
)

func main() {
	if err := commands.Execute(); err != nil {
		cli.PrintError(os.Stderr, "%v", err)
		os.Exit(1)
	}
}
