package minibak

import (
	"path"
	"strings"
	"time"
)

// Filter selects which entries are recorded during a pack. The zero value
// matches everything; each set field adds one constraint and all constraints
// must hold. The filter never stops the walker from descending into a
// directory, it only decides whether the directory itself is recorded,
// otherwise a filtered directory would hide matching descendants.
type Filter struct {
	// NameContains matches a case-sensitive substring of the final path
	// segment. Empty means unconstrained.
	NameContains string
	// PathContains matches a case-sensitive substring of the full relative
	// path. Empty means unconstrained.
	PathContains string
	// Kind restricts the entry type. KindAny means unconstrained.
	Kind Kind
	// MinSize and MaxSize are inclusive bounds on regular file sizes.
	// Values <= 0 mean unconstrained. Directories and symlinks are never
	// excluded by size.
	MinSize int64
	MaxSize int64
	// ModifiedAfter is a floor on the modification time. The zero time
	// means unconstrained.
	ModifiedAfter time.Time
	// OwnerID restricts entries to one owning uid. Nil means unconstrained.
	OwnerID *uint32
}

// Matches reports whether the entry passes the filter. A nil filter matches
// every entry.
func (f *Filter) Matches(e *Entry) bool {
	if f == nil {
		return true
	}
	if f.NameContains != "" && !strings.Contains(path.Base(e.Path), f.NameContains) {
		return false
	}
	if f.PathContains != "" && !strings.Contains(e.Path, f.PathContains) {
		return false
	}
	if f.Kind != KindAny && e.Kind != f.Kind {
		return false
	}
	if f.OwnerID != nil && e.UID != *f.OwnerID {
		return false
	}
	// Size and time bounds never exclude directories, or the tree structure
	// above matching files would be lost.
	if e.Kind == KindDirectory {
		return true
	}
	if e.Kind == KindRegular {
		if f.MinSize > 0 && e.Size < f.MinSize {
			return false
		}
		if f.MaxSize > 0 && e.Size > f.MaxSize {
			return false
		}
	}
	if !f.ModifiedAfter.IsZero() && e.ModTime.Before(f.ModifiedAfter) {
		return false
	}
	return true
}
