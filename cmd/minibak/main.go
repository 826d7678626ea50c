package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
})

var rootCmd = &cobra.Command{
	Use:           "minibak",
	Short:         "Pack a directory tree into a single container file and restore it",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}
