// Package main is the entry point for the AgriLink marketplace backend.
// It wires together all modules behind a small CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "agrilink",
		Short:         "AgriLink marketplace backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("AGRILINK_CONFIG"), "path to a YAML config file")

	root.AddCommand(
		newServeCommand(&configPath),
		newQuoteCommand(&configPath),
		newVersionCommand(),
	)
	return root
}
