package main

import (
	"fmt"
	"os"

	"github.com/minibak/minibak"
	"github.com/spf13/cobra"
)

var (
	inspectPassword string

	listCmd = &cobra.Command{
		Use:   "list <container>",
		Short: "List the entries of a container without extracting them",
		Args:  cobra.ExactArgs(1),
		RunE:  runList,
	}

	verifyCmd = &cobra.Command{
		Use:   "verify <container>",
		Short: "Check every record of a container against its checksum",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerify,
	}
)

func init() {
	listCmd.Flags().StringVarP(&inspectPassword, "password", "p", "", "password of an encrypted container")
	verifyCmd.Flags().StringVarP(&inspectPassword, "password", "p", "", "password of an encrypted container")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(verifyCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	entries, err := minibak.List(f, minibak.WithPassword([]byte(inspectPassword)))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, e := range entries {
		line := fmt.Sprintf("%-7s %10d %s %s", e.Kind, e.Size, e.ModTime.Format("2006-01-02 15:04:05"), e.Path)
		if e.Kind == minibak.KindSymlink && e.LinkTarget != "" {
			line += " -> " + e.LinkTarget
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func runVerify(_ *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	report, err := minibak.Verify(f, minibak.WithPassword([]byte(inspectPassword)))
	if err != nil {
		return err
	}
	for _, skip := range report.Skips {
		logger.Error("record corrupted", "path", skip.Path, "err", skip.Err)
	}
	if !report.Clean() {
		return fmt.Errorf("%d of %d records corrupted", len(report.Skips), report.Entries+len(report.Skips))
	}
	logger.Info("container verified", "entries", report.Entries)
	return nil
}
