package minibak

import "time"

type private interface{}

type Option func(i private) error

type dirent struct {
	ino  uint64
	name string
}

// Entry represents one filesystem object inside a container or discovered
// during a walk. Paths are slash-separated and relative to the pack root.
type Entry struct {
	Path       string
	Kind       Kind
	Size       int64 // original content length, 0 for directories and symlinks
	StoredSize int64 // post-transform length inside the container
	Perm       uint32
	UID        uint32
	GID        uint32
	ModTime    time.Time
	LinkTarget string // raw symlink target, only set for KindSymlink
}

// Skip is one soft failure: an entry that could not be read during a pack or
// fully restored during an unpack.
type Skip struct {
	Path string
	Err  error
}

// Report is the per-call outcome of a pack, unpack or verify. An operation
// may succeed overall while individual entries were skipped.
type Report struct {
	Entries int
	Skips   []Skip
}

// Clean reports whether every entry was processed without a skip.
func (r *Report) Clean() bool {
	return len(r.Skips) == 0
}

func (r *Report) skip(path string, err error) {
	r.Skips = append(r.Skips, Skip{Path: path, Err: err})
}
