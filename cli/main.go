package main

import (
	"fmt"
	"os"

	"github.com/nest-oracle/nest-cli/internal/cli"
	"github.com/nest-oracle/nest-cli/internal/cli/render"
	"github.com/nest-oracle/nest-cli/internal/config"
)

// Set by the linker
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	config.SetBuildFlags(version, commit, date)

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, render.FormatError(err))
		os.Exit(1)
	}
}
