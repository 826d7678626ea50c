package minibak

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// statEntry lstats a path and returns an Entry describing it.
// The Path field is left for the caller to fill in.
func statEntry(path string) (*Entry, error) {
	var stat unix.Stat_t
	if err := unix.Lstat(path, &stat); err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	e := entryFromStat(&stat)
	if e.Kind == KindSymlink {
		// Read the raw target if it's a symlink. It is never resolved.
		target, err := readlink(path)
		if err != nil {
			return nil, fmt.Errorf("failed to readlink %s: %w", path, err)
		}
		e.LinkTarget = target
	}
	return e, nil
}

// statEntryAt stats a file in an opened directory and returns an Entry.
func statEntryAt(dirFd int, name string) (*Entry, error) {
	var stat unix.Stat_t
	if err := unix.Fstatat(dirFd, name, &stat, unix.AT_SYMLINK_NOFOLLOW); err != nil {
		return nil, fmt.Errorf("failed to stat %s at dir fd %d: %w", name, dirFd, err)
	}
	e := entryFromStat(&stat)
	if e.Kind == KindSymlink {
		// Use readlinkat with the already opened parent directory to save time.
		target, err := readlinkAt(dirFd, name)
		if err != nil {
			return nil, fmt.Errorf("failed to readlink %s at dir fd %d: %w", name, dirFd, err)
		}
		e.LinkTarget = target
	}
	return e, nil
}

// entryFromStat converts a raw stat into an Entry. Kinds other than regular
// files, directories and symlinks (sockets, devices, pipes) come back as
// KindAny and are skipped by the walker.
func entryFromStat(t *unix.Stat_t) *Entry {
	e := &Entry{
		Perm:    uint32(t.Mode & 0o777),
		UID:     t.Uid,
		GID:     t.Gid,
		ModTime: statTime(t),
	}
	switch t.Mode & unix.S_IFMT {
	case unix.S_IFREG:
		e.Kind = KindRegular
		e.Size = t.Size
	case unix.S_IFDIR:
		e.Kind = KindDirectory
	case unix.S_IFLNK:
		e.Kind = KindSymlink
	}
	return e
}

// readlink wraps unix.Readlink and deals with some subtle situations.
func readlink(path string) (string, error) {
	for length := 256; ; length *= 2 {
		buf := make([]byte, length)
		var (
			n   int
			err error
		)
		for {
			n, err = unix.Readlink(path, buf)
			if err != syscall.EINTR {
				break
			}
		}
		if n <= 0 {
			n = 0
		}
		if err != nil {
			return "", err
		}
		if n < length {
			return string(buf[:n]), nil
		}
	}
}

// readlinkAt wraps unix.Readlinkat and deals with some subtle situations.
func readlinkAt(dirFd int, name string) (string, error) {
	for length := 256; ; length *= 2 {
		buf := make([]byte, length)
		var (
			n   int
			err error
		)
		for {
			n, err = unix.Readlinkat(dirFd, name, buf)
			if err != syscall.EINTR {
				break
			}
		}
		if n <= 0 {
			n = 0
		}
		if err != nil {
			return "", err
		}
		if n < length {
			return string(buf[:n]), nil
		}
	}
}
