package minibak

import (
	"strings"

	"github.com/pkg/errors"
)

func validateRelPath(path string) error {
	if len(path) == 0 {
		return errors.New("empty path")
	}
	if path[0] == '/' || strings.Contains(path, "/../") || path == ".." ||
		strings.HasPrefix(path, "../") || strings.HasSuffix(path, "/..") {
		return errors.New("forbidden path")
	}
	if strings.ContainsAny(path, "\\\x00") {
		return errors.New("invalid character")
	}
	return nil
}
