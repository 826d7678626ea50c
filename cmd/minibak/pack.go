package main

import (
	"errors"
	"time"

	"github.com/minibak/minibak"
	"github.com/spf13/cobra"
)

var (
	packPassword     string
	packEncryption   string
	packCompression  string
	packNameContains string
	packPathContains string
	packType         string
	packMinSize      int64
	packMaxSize      int64
	packSince        time.Duration
	packOwner        int64

	packCmd = &cobra.Command{
		Use:   "pack <source> <container>",
		Short: "Archive a directory tree into a container file",
		Args:  cobra.ExactArgs(2),
		RunE:  runPack,
	}
)

func init() {
	f := packCmd.Flags()
	f.StringVarP(&packPassword, "password", "p", "", "encrypt the container with this password")
	f.StringVar(&packEncryption, "encryption", "none", "encryption mode (none, xor or rc4)")
	f.StringVar(&packCompression, "compression", "none", "compression mode (none or rle)")
	f.StringVar(&packNameContains, "name", "", "only record entries whose name contains this substring")
	f.StringVar(&packPathContains, "path", "", "only record entries whose relative path contains this substring")
	f.StringVar(&packType, "type", "any", "only record entries of this type (file, dir or symlink)")
	f.Int64Var(&packMinSize, "min-size", 0, "only record files of at least this many bytes")
	f.Int64Var(&packMaxSize, "max-size", 0, "only record files of at most this many bytes")
	f.DurationVar(&packSince, "since", 0, "only record entries modified within this duration")
	f.Int64Var(&packOwner, "owner", -1, "only record entries owned by this uid")
	rootCmd.AddCommand(packCmd)
}

func buildFilter() (*minibak.Filter, error) {
	kind, err := parseKind(packType)
	if err != nil {
		return nil, err
	}
	filter := &minibak.Filter{
		NameContains: packNameContains,
		PathContains: packPathContains,
		Kind:         kind,
		MinSize:      packMinSize,
		MaxSize:      packMaxSize,
	}
	if packSince > 0 {
		filter.ModifiedAfter = time.Now().Add(-packSince)
	}
	if packOwner >= 0 {
		uid := uint32(packOwner)
		filter.OwnerID = &uid
	}
	return filter, nil
}

func runPack(_ *cobra.Command, args []string) error {
	encMode, err := parseEncMode(packEncryption)
	if err != nil {
		return err
	}
	if packPassword != "" && encMode == minibak.EncNone {
		return errors.New("a password was given but --encryption is none; use --encryption xor or rc4")
	}
	compMode, err := parseCompMode(packCompression)
	if err != nil {
		return err
	}
	filter, err := buildFilter()
	if err != nil {
		return err
	}
	logger.Info("creating container", "source", args[0], "container", args[1],
		"encryption", encMode, "compression", compMode)
	start := time.Now()
	report, err := minibak.Pack(args[0], args[1],
		minibak.WithEncryption(encMode),
		minibak.WithCompression(compMode),
		minibak.WithPassword([]byte(packPassword)),
		minibak.WithFilter(filter),
	)
	if err != nil {
		return err
	}
	for _, skip := range report.Skips {
		logger.Warn("entry skipped", "path", skip.Path, "err", skip.Err)
	}
	logger.Info("container created", "entries", report.Entries,
		"skipped", len(report.Skips), "took", time.Since(start).Round(time.Millisecond))
	return nil
}
