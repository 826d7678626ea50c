package minibak

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// readAhead tells the kernel about reading a file in the near future, by issuing a fadvise64 syscall.
func readAhead(fd, size int) error {
	return unix.Fadvise(fd, 0, int64(size), unix.FADV_SEQUENTIAL)
}

// chmodSymlink does nothing, as Linux doesn't support file modes of symlinks.
func chmodSymlink(_ string, _ os.FileMode) error {
	return nil
}

// statTime returns the modification time of a raw stat.
func statTime(t *unix.Stat_t) time.Time {
	return time.Unix(t.Mtim.Sec, t.Mtim.Nsec)
}
