package minibak

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const unpackerDefaultBufSize = 1 << 20 // 1 MiB

// unpacker is the context used when a container is being read.
// It shouldn't be used directly. Use Unpack, List or Verify instead.
type unpacker struct {
	r        *bufio.Reader
	password []byte
	// Detected from the container head.
	encMode  EncMode
	compMode CompMode
	stream   keystream
}

// record is one parsed record header plus its stored, already deciphered
// payload. The payload is not yet checked or decompressed; see open.
type record struct {
	entry    *Entry
	origSize int64
	sum      uint32
	stored   []byte
}

func newUnpacker(r io.Reader, options ...Option) (*unpacker, error) {
	u := &unpacker{r: bufio.NewReaderSize(r, unpackerDefaultBufSize)}
	for _, option := range options {
		if err := option(u); err != nil {
			return nil, err
		}
	}
	var magic [magicLen]byte
	if _, err := io.ReadFull(u.r, magic[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.WithMessage(ErrTruncated, "missing magic tag")
		}
		return nil, errors.WithMessage(err, "failed to read magic tag")
	}
	encMode, err := encModeForMagic(string(magic[:]))
	if err != nil {
		return nil, err
	}
	u.encMode = encMode
	stream, err := newKeystream(encMode, u.password)
	if err != nil {
		return nil, err
	}
	u.stream = stream
	// The compression flag sits before the cipher stream starts.
	flag, err := u.r.ReadByte()
	if err != nil {
		return nil, errors.WithMessage(ErrTruncated, "missing compression flag")
	}
	switch CompMode(flag) {
	case CompNone, CompRLE:
		u.compMode = CompMode(flag)
	default:
		return nil, errors.WithMessagef(ErrUnsupportedCompression, "flag %d", flag)
	}
	return u, nil
}

// next reads one record and deciphers it. io.EOF marks the clean end of the
// container; anything short of a whole record is corruption. The sanity
// checks on the kind code and path double as the early wrong-password
// signal: a bad key turns the header into noise that fails them.
func (u *unpacker) next() (*record, error) {
	prefix := make([]byte, recordPrefixLen)
	if _, err := io.ReadFull(u.r, prefix); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, errors.WithMessage(ErrTruncated, "short record header")
		}
		return nil, errors.WithMessage(err, "failed to read record header")
	}
	u.stream.apply(prefix)
	kind := Kind(prefix[0])
	if kind != KindRegular && kind != KindDirectory && kind != KindSymlink {
		return nil, errors.WithMessagef(ErrCorrupted, "bad entry kind %d", prefix[0])
	}
	pathLen := int64(binary.LittleEndian.Uint64(prefix[1:]))
	if pathLen <= 0 || pathLen > maxPathLen {
		return nil, errors.WithMessagef(ErrCorrupted, "unreasonable path length %d", pathLen)
	}
	pathBuf := make([]byte, pathLen)
	if _, err := io.ReadFull(u.r, pathBuf); err != nil {
		return nil, errors.WithMessage(ErrTruncated, "short record path")
	}
	u.stream.apply(pathBuf)
	if err := validateRelPath(string(pathBuf)); err != nil {
		return nil, errors.WithMessagef(ErrCorrupted, "record path %q: %v", pathBuf, err)
	}
	tail := make([]byte, recordTailLen)
	if _, err := io.ReadFull(u.r, tail); err != nil {
		return nil, errors.WithMessage(ErrTruncated, "short record metadata")
	}
	u.stream.apply(tail)
	entry := &Entry{Path: string(pathBuf), Kind: kind}
	origSize, storedSize, sum := decodeRecordTail(entry, tail)
	if origSize < 0 || storedSize < 0 {
		return nil, errors.WithMessage(ErrCorrupted, "negative record size")
	}
	if kind == KindRegular {
		entry.Size = origSize
	}
	entry.StoredSize = storedSize
	// The declared length is untrusted. Copy through a growing buffer so a
	// crafted record can't make the allocation outrun the actual bytes.
	var payload bytes.Buffer
	if _, err := io.CopyN(&payload, u.r, storedSize); err != nil {
		return nil, errors.WithMessagef(ErrTruncated, "short record payload for %s", entry.Path)
	}
	stored := payload.Bytes()
	u.stream.apply(stored)
	return &record{entry: entry, origSize: origSize, sum: sum, stored: stored}, nil
}

// open verifies a record payload against its checksum and declared sizes,
// and undoes the compression. A checksum mismatch is the deterministic
// wrong-password signal for records whose header happened to decode.
func (u *unpacker) open(rec *record) ([]byte, error) {
	if crc32.ChecksumIEEE(rec.stored) != rec.sum {
		return nil, errors.WithMessagef(ErrChecksum, "record %s", rec.entry.Path)
	}
	if u.compMode == CompRLE {
		data, err := rleDecompress(rec.stored, rec.origSize)
		if err != nil {
			return nil, errors.WithMessagef(err, "record %s", rec.entry.Path)
		}
		return data, nil
	}
	if int64(len(rec.stored)) != rec.origSize {
		return nil, errors.WithMessagef(ErrCorrupted, "record %s declares %d bytes, carries %d",
			rec.entry.Path, rec.origSize, len(rec.stored))
	}
	return rec.stored, nil
}

// Unpack reads a container from r and restores the tree under targetPath.
// Directories come before their contents by construction, content is written
// before timestamps are applied, and a failed symlink degrades to a plain
// file noted on the report instead of aborting the whole unpack.
func Unpack(r io.Reader, targetPath string, options ...Option) (*Report, error) {
	u, err := newUnpacker(r, options...)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(targetPath, 0o777); err != nil {
		return nil, errors.WithMessagef(err, "failed to create target %s", targetPath)
	}
	report := &Report{}
	for {
		rec, err := u.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		data, err := u.open(rec)
		if err != nil {
			return nil, err
		}
		degraded := len(report.Skips)
		if err := restoreEntry(targetPath, rec.entry, data, report); err != nil {
			return nil, err
		}
		// A degraded entry counts as a skip, not as restored.
		if len(report.Skips) == degraded {
			report.Entries++
		}
	}
	return report, nil
}

// UnpackFile is Unpack reading the container from a file.
func UnpackFile(srcPath, targetPath string, options ...Option) (*Report, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to open container %s", srcPath)
	}
	defer func() { _ = f.Close() }()
	return Unpack(f, targetPath, options...)
}

// restoreEntry materializes one entry under root.
func restoreEntry(root string, e *Entry, data []byte, report *Report) error {
	target := filepath.Join(root, filepath.FromSlash(e.Path))
	switch e.Kind {
	case KindDirectory:
		// Directories are created with the default permission determined by
		// umask, then chmod brings them to the recorded mode. Creation is
		// idempotent, the directory may already exist as an ancestor.
		if err := os.MkdirAll(target, 0o777); err != nil {
			return errors.WithMessagef(err, "failed to create directory %s", e.Path)
		}
		_ = os.Chmod(target, os.FileMode(e.Perm))
	case KindRegular:
		if err := os.MkdirAll(filepath.Dir(target), 0o777); err != nil {
			return errors.WithMessagef(err, "failed to create parents of %s", e.Path)
		}
		file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(e.Perm))
		if err != nil {
			return errors.WithMessagef(err, "failed to create file %s", e.Path)
		}
		if _, err := file.Write(data); err != nil {
			_ = file.Close()
			return errors.WithMessagef(err, "failed to write file %s", e.Path)
		}
		_ = file.Chmod(os.FileMode(e.Perm))
		_ = file.Close()
	case KindSymlink:
		if err := os.MkdirAll(filepath.Dir(target), 0o777); err != nil {
			return errors.WithMessagef(err, "failed to create parents of %s", e.Path)
		}
		linkTarget := string(data)
		err := os.Symlink(linkTarget, target)
		if err != nil && os.IsExist(err) {
			_ = os.Remove(target)
			err = os.Symlink(linkTarget, target)
		}
		if err != nil {
			// The environment may forbid symlink creation. Fall back to a
			// plain file holding the target text and keep going.
			report.skip(e.Path, err)
			_ = os.WriteFile(target, data, os.FileMode(e.Perm))
			return nil
		}
		_ = chmodSymlink(target, os.FileMode(e.Perm))
	}
	// Ownership is restored on a best-effort basis; unprivileged callers
	// can't chown.
	_ = os.Lchown(target, int(e.UID), int(e.GID))
	if e.Kind != KindSymlink {
		// Timestamps go last. Writing the content first would bump them
		// again. All errors from chtimes are ignored as some filesystems
		// don't support this.
		_ = os.Chtimes(target, e.ModTime, e.ModTime)
	}
	return nil
}

// List returns the entries of a container without touching the filesystem.
// Payloads are still read to keep the cipher stream aligned; readable
// symlink targets are surfaced on the entries.
func List(r io.Reader, options ...Option) ([]*Entry, error) {
	u, err := newUnpacker(r, options...)
	if err != nil {
		return nil, err
	}
	var entries []*Entry
	for {
		rec, err := u.next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		if rec.entry.Kind == KindSymlink {
			if data, err := u.open(rec); err == nil {
				rec.entry.LinkTarget = string(data)
			}
		}
		entries = append(entries, rec.entry)
	}
}

// Verify checks every record of a container against its checksum and
// declared sizes. Per-record integrity failures land on the report as skips;
// structural damage to the container itself is fatal.
func Verify(r io.Reader, options ...Option) (*Report, error) {
	u, err := newUnpacker(r, options...)
	if err != nil {
		return nil, err
	}
	report := &Report{}
	for {
		rec, err := u.next()
		if err == io.EOF {
			return report, nil
		}
		if err != nil {
			return nil, err
		}
		if _, err := u.open(rec); err != nil {
			report.skip(rec.entry.Path, err)
			continue
		}
		report.Entries++
	}
}
