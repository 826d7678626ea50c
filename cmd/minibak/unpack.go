package main

import (
	"time"

	"github.com/minibak/minibak"
	"github.com/spf13/cobra"
)

var (
	unpackPassword string

	unpackCmd = &cobra.Command{
		Use:   "unpack <container> <target>",
		Short: "Restore a directory tree from a container file",
		Args:  cobra.ExactArgs(2),
		RunE:  runUnpack,
	}
)

func init() {
	unpackCmd.Flags().StringVarP(&unpackPassword, "password", "p", "", "password of an encrypted container")
	rootCmd.AddCommand(unpackCmd)
}

func runUnpack(_ *cobra.Command, args []string) error {
	logger.Info("restoring container", "container", args[0], "target", args[1])
	start := time.Now()
	report, err := minibak.UnpackFile(args[0], args[1], minibak.WithPassword([]byte(unpackPassword)))
	if err != nil {
		return err
	}
	for _, skip := range report.Skips {
		logger.Warn("entry degraded", "path", skip.Path, "err", skip.Err)
	}
	logger.Info("container restored", "entries", report.Entries,
		"degraded", len(report.Skips), "took", time.Since(start).Round(time.Millisecond))
	return nil
}
