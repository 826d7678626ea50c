package main

import (
	"fmt"
	"strings"

	"github.com/minibak/minibak"
)

func parseEncMode(s string) (minibak.EncMode, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return minibak.EncNone, nil
	case "xor":
		return minibak.EncXOR, nil
	case "rc4":
		return minibak.EncRC4, nil
	default:
		return minibak.EncNone, fmt.Errorf("unknown encryption mode '%s'", s)
	}
}

func parseCompMode(s string) (minibak.CompMode, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return minibak.CompNone, nil
	case "rle":
		return minibak.CompRLE, nil
	default:
		return minibak.CompNone, fmt.Errorf("unknown compression mode '%s'", s)
	}
}

func parseKind(s string) (minibak.Kind, error) {
	switch strings.ToLower(s) {
	case "", "any":
		return minibak.KindAny, nil
	case "file":
		return minibak.KindRegular, nil
	case "dir":
		return minibak.KindDirectory, nil
	case "symlink":
		return minibak.KindSymlink, nil
	default:
		return minibak.KindAny, fmt.Errorf("unknown entry type '%s'", s)
	}
}
