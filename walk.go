package minibak

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	dentBufSize = 8 << 20   // 8 MiB
	adviceSize  = 256 << 10 // 256 KiB
)

// walkFunc is called by walkTree for each entry. relPath is the
// slash-separated path relative to the walk root; entry.Path carries the
// same value. The reader is non-nil for regular files and must be closed by
// the callee.
type walkFunc func(relPath string, entry *Entry, r io.ReadCloser) error

// walkTree walks root depth-first, visiting parents before their children,
// so the emitted order is a valid topological order of path containment.
// Symlinks are recorded with their raw target and never descended into, even
// when they point at a directory. An entry that cannot be statted or opened
// is recorded as a skip on the report and walking continues with its
// siblings; only an unusable root is a hard failure.
func walkTree(root string, report *Report, fn walkFunc) error {
	// Memory allocations are expensive. Use a pool to reuse buffers.
	dentBufPool := &sync.Pool{
		New: func() interface{} {
			return make([]byte, dentBufSize)
		},
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return errors.WithMessage(err, "failed to calculate the absolute path")
	}
	// As we only need the file descriptors afterwards, we directly use the
	// syscall. We should avoid os.OpenFile, because an os.File is closed by
	// Go runtime on GC.
	dirFd, err := unix.Open(root, os.O_RDONLY|unix.O_DIRECTORY, 0)
	if err != nil {
		return errors.WithMessagef(err, "failed to open the walk root %s", root)
	}
	return walk("", dirFd, dentBufPool, report, fn)
}

// walk does the real walking stuff. It receives an opened directory and
// iterates the items in it. relDir is the slash path of the directory
// relative to the walk root, empty for the root itself.
func walk(relDir string, dirFd int, dentBufPool *sync.Pool, report *Report, fn walkFunc) error {
	buf := dentBufPool.Get().([]byte)
	defer func() {
		// The directory is closed when this function ends, and the dent
		// buffer is returned to the pool.
		_ = unix.Close(dirFd)
		dentBufPool.Put(buf)
	}()
	for {
		// Use a large buffer to get directory entries.
		// The buffer size in os.ReadDir is 8 KiB and is too small, causing
		// many unnecessary syscall operations.
		n, err := unix.ReadDirent(dirFd, buf)
		if err != nil {
			// The directory became unreadable mid-walk. Its remaining
			// entries are lost but the rest of the tree is still packed.
			report.skip(relDir, errors.WithMessage(err, "failed to call getdents64"))
			return nil
		}
		if n == 0 {
			return nil
		}
		for _, dent := range parseDirentBuf(buf[:n]) {
			relPath := path.Join(relDir, dent.name)
			// Use fstatat with the fd of the already opened parent directory
			// to save time. If we use the full path directly, the kernel has
			// to walk through the full path and do heavy checks like the
			// permission.
			entry, err := statEntryAt(dirFd, dent.name)
			if err != nil {
				report.skip(relPath, err)
				continue
			}
			if entry.Kind == KindAny {
				// Sockets, devices and pipes are not archived.
				continue
			}
			entry.Path = relPath
			var reader io.ReadCloser
			if entry.Kind == KindRegular {
				// A regular file should be opened for reading. Also, use
				// openat with the already opened parent directory to save time.
				fd, err := unix.Openat(dirFd, dent.name, os.O_RDONLY, 0)
				if err != nil {
					report.skip(relPath, err)
					continue
				}
				reader = os.NewFile(uintptr(fd), dent.name)
				// Issue a read ahead instruction to the kernel to prefetch
				// the file content.
				_ = readAhead(fd, adviceSize)
			}
			if err := fn(relPath, entry, reader); err != nil {
				return err
			}
			if entry.Kind == KindDirectory {
				// Walk the sub-directories recursively.
				nextDirFd, err := unix.Openat(dirFd, dent.name, unix.O_RDONLY|unix.O_DIRECTORY, 0)
				if err != nil {
					report.skip(relPath, err)
					continue
				}
				if err := walk(relPath, nextDirFd, dentBufPool, report, fn); err != nil {
					return err
				}
			}
		}
	}
}

// parseDirentBuf parses the dir entries returned by the syscall.
func parseDirentBuf(buf []byte) []*dirent {
	dirents := make([]*dirent, 0, len(buf)>>5) // Divided by 32, a reasonable guess to avoid capacity growth.
	for len(buf) > 0 {
		unixDirent := (*unix.Dirent)(unsafe.Pointer(&buf[0]))
		buf = buf[unixDirent.Reclen:]
		name := getDirentName(unixDirent)
		if name == "." || name == ".." {
			// Ignore the useless parent entries.
			continue
		}
		dent := &dirent{
			ino:  unixDirent.Ino,
			name: name,
		}
		dirents = append(dirents, dent)
	}
	// Reading files in ascending inode order significantly improves read
	// performance when page cache is absent. It applies to EXT4 and XFS at
	// least. When the length is less than 3, we skip sort.Slice to avoid
	// reflection overheads.
	switch len(dirents) {
	case 0, 1:
	case 2:
		if dirents[0].ino > dirents[1].ino {
			dirents[0], dirents[1] = dirents[1], dirents[0]
		}
	default:
		sort.Slice(dirents, func(i, j int) bool {
			return dirents[i].ino < dirents[j].ino
		})
	}
	return dirents
}

// getDirentName returns the name field of a unix.Dirent.
func getDirentName(dirent *unix.Dirent) string {
	name := make([]byte, len(dirent.Name))
	var i int
	for ; i < len(dirent.Name); i++ {
		if dirent.Name[i] == 0 {
			break
		}
		name[i] = byte(dirent.Name[i])
	}
	return string(name[:i])
}
