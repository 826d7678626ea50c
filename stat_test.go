package minibak

import (
	"os"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"
)

func TestStatEntry(t *testing.T) {
	ts1 := time.Now()
	tmpDir := fs.NewDir(
		t, "stat",
		fs.WithFile("file1", "7 bytes"),
		fs.WithFile("file2", "233", fs.WithMode(0o640)),
	)
	assert.NilError(t, os.Symlink("file1", tmpDir.Join("link1")))
	ts2 := time.Now()

	e, err := statEntry(tmpDir.Join("file1"))
	assert.NilError(t, err)
	assert.Equal(t, e.Kind, KindRegular)
	assert.Assert(t, e.Size == 7)
	assert.Equal(t, int(e.UID), os.Getuid())
	assert.Equal(t, int(e.GID), os.Getgid())
	assertTimeBetween(t, e.ModTime, ts1, ts2)

	e, err = statEntry(tmpDir.Join("file2"))
	assert.NilError(t, err)
	assert.Equal(t, e.Perm, uint32(0o640))
	assert.Assert(t, e.Size == 3)

	e, err = statEntry(tmpDir.Path())
	assert.NilError(t, err)
	assert.Equal(t, e.Kind, KindDirectory)
	assert.Assert(t, e.Size == 0)

	e, err = statEntry(tmpDir.Join("link1"))
	assert.NilError(t, err)
	assert.Equal(t, e.Kind, KindSymlink)
	assert.Equal(t, e.LinkTarget, "file1")
	assert.Assert(t, e.Size == 0)

	_, err = statEntry(tmpDir.Join("missing"))
	assert.ErrorContains(t, err, "failed to stat")
}

func TestStatEntryAt(t *testing.T) {
	tmpDir := fs.NewDir(t, "stat", fs.WithFile("file1", "7 bytes"))
	assert.NilError(t, os.Symlink("file1", tmpDir.Join("link1")))
	dir, err := os.Open(tmpDir.Path())
	assert.NilError(t, err)
	defer func() { _ = dir.Close() }()
	dirFd := int(dir.Fd())

	e, err := statEntryAt(dirFd, "file1")
	assert.NilError(t, err)
	assert.Equal(t, e.Kind, KindRegular)
	assert.Assert(t, e.Size == 7)

	e, err = statEntryAt(dirFd, "link1")
	assert.NilError(t, err)
	assert.Equal(t, e.Kind, KindSymlink)
	assert.Equal(t, e.LinkTarget, "file1")

	_, err = statEntryAt(dirFd, "missing")
	assert.ErrorContains(t, err, "failed to stat")
}

func assertTimeBetween(t *testing.T, ts, lo, hi time.Time) {
	t.Helper()
	ts = ts.Round(time.Second)
	assert.Assert(t, !lo.Round(time.Second).After(ts) && !hi.Round(time.Second).Before(ts))
}
