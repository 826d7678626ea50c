package minibak

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestFilterMatches(t *testing.T) {
	now := time.Now()
	file := &Entry{Path: "docs/readme.txt", Kind: KindRegular, Size: 1024, UID: 1000, ModTime: now}
	dir := &Entry{Path: "docs", Kind: KindDirectory, UID: 1000, ModTime: now}
	link := &Entry{Path: "docs/latest", Kind: KindSymlink, LinkTarget: "readme.txt", UID: 1000, ModTime: now}

	var nilFilter *Filter
	assert.Assert(t, nilFilter.Matches(file))
	assert.Assert(t, (&Filter{}).Matches(file))

	assert.Assert(t, (&Filter{NameContains: ".txt"}).Matches(file))
	assert.Assert(t, !(&Filter{NameContains: ".jpg"}).Matches(file))
	// The name constraint applies to the final segment only.
	assert.Assert(t, !(&Filter{NameContains: "docs"}).Matches(file))
	assert.Assert(t, (&Filter{PathContains: "docs/"}).Matches(file))
	assert.Assert(t, !(&Filter{PathContains: "images/"}).Matches(file))

	assert.Assert(t, (&Filter{Kind: KindRegular}).Matches(file))
	assert.Assert(t, !(&Filter{Kind: KindSymlink}).Matches(file))
	assert.Assert(t, (&Filter{Kind: KindSymlink}).Matches(link))

	assert.Assert(t, (&Filter{MinSize: 1024, MaxSize: 1024}).Matches(file))
	assert.Assert(t, !(&Filter{MinSize: 2048}).Matches(file))
	assert.Assert(t, !(&Filter{MaxSize: 512}).Matches(file))
	// Size bounds never exclude directories.
	assert.Assert(t, (&Filter{MinSize: 1}).Matches(dir))
	// Symlinks carry no content so size bounds don't apply either.
	assert.Assert(t, (&Filter{MinSize: 1}).Matches(link))

	assert.Assert(t, (&Filter{ModifiedAfter: now.Add(-time.Hour)}).Matches(file))
	assert.Assert(t, !(&Filter{ModifiedAfter: now.Add(time.Hour)}).Matches(file))
	assert.Assert(t, (&Filter{ModifiedAfter: now.Add(time.Hour)}).Matches(dir))

	uid := uint32(1000)
	other := uint32(0)
	assert.Assert(t, (&Filter{OwnerID: &uid}).Matches(file))
	assert.Assert(t, !(&Filter{OwnerID: &other}).Matches(file))

	// All constrained fields must hold together.
	assert.Assert(t, !(&Filter{NameContains: ".txt", MinSize: 2048}).Matches(file))
}
