package minibak

import (
	"bufio"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const packerDefaultBufSize = 1 << 20 // 1 MiB

// Packer is a container creation context.
type Packer struct {
	w *bufio.Writer
	// Transform fields.
	encMode  EncMode
	compMode CompMode
	password []byte
	filter   *Filter
	// Runtime fields.
	stream keystream
	report Report
}

// NewPacker creates a Packer with options, writing the container to w.
// The magic tag and the compression flag are written immediately.
func NewPacker(w io.Writer, options ...Option) (*Packer, error) {
	p := &Packer{w: bufio.NewWriterSize(w, packerDefaultBufSize)}
	// Apply options.
	for _, option := range options {
		if err := option(p); err != nil {
			return nil, err
		}
	}
	stream, err := newKeystream(p.encMode, p.password)
	if err != nil {
		return nil, err
	}
	p.stream = stream
	if _, err := p.w.WriteString(p.encMode.magic()); err != nil {
		return nil, errors.WithMessage(err, "failed to write magic tag")
	}
	if err := p.w.WriteByte(byte(p.compMode)); err != nil {
		return nil, errors.WithMessage(err, "failed to write compression flag")
	}
	return p, nil
}

// Add records path into the container. A directory is walked recursively and
// its entries are stored relative to it; a regular file is stored under its
// base name. The root itself is not recorded. Entries rejected by the filter
// are silently omitted; entries that cannot be read are skipped and noted on
// the report.
func (p *Packer) Add(root string) error {
	entry, err := statEntry(root)
	if err != nil {
		return errors.WithMessagef(err, "failed to stat the pack root %s", root)
	}
	switch entry.Kind {
	case KindRegular:
		// If the path is a file, just add it and return.
		entry.Path = filepath.Base(root)
		if !p.filter.Matches(entry) {
			return nil
		}
		data, err := os.ReadFile(root)
		if err != nil {
			return errors.WithMessagef(err, "failed to read %s", root)
		}
		return p.writeEntry(entry, data)
	case KindDirectory:
		return walkTree(root, &p.report, func(relPath string, entry *Entry, r io.ReadCloser) error {
			if !p.filter.Matches(entry) {
				if r != nil {
					_ = r.Close()
				}
				return nil
			}
			var data []byte
			if r != nil {
				var err error
				data, err = io.ReadAll(r)
				_ = r.Close()
				if err != nil {
					// The file vanished or turned unreadable mid-read.
					// Skip it and keep walking.
					p.report.skip(relPath, err)
					return nil
				}
			}
			return p.writeEntry(entry, data)
		})
	default:
		return errors.Errorf("pack root %s is neither a directory nor a regular file", root)
	}
}

// writeEntry runs one entry through the compress-checksum-encrypt pipeline
// and appends its record. Write failures are fatal: a partial container must
// not pass for a complete one.
func (p *Packer) writeEntry(entry *Entry, data []byte) error {
	if entry.Kind == KindSymlink {
		data = []byte(entry.LinkTarget)
	}
	origSize := int64(len(data))
	if p.compMode == CompRLE {
		data = rleCompress(data)
	}
	sum := crc32.ChecksumIEEE(data)
	header := encodeRecordHeader(entry, origSize, int64(len(data)), sum)
	p.stream.apply(header)
	if _, err := p.w.Write(header); err != nil {
		return errors.WithMessagef(err, "failed to write record header for %s", entry.Path)
	}
	p.stream.apply(data)
	if _, err := p.w.Write(data); err != nil {
		return errors.WithMessagef(err, "failed to write record payload for %s", entry.Path)
	}
	p.report.Entries++
	return nil
}

// Report returns the running outcome of this pack.
func (p *Packer) Report() *Report {
	return &p.report
}

// Close completes the container. It must be called to flush the buffered bytes.
func (p *Packer) Close() error {
	if err := p.w.Flush(); err != nil {
		return errors.WithMessage(err, "failed to flush container")
	}
	return nil
}

// Pack archives srcPath into a new container file at destPath. On a fatal
// error the partial output is removed, so a half-written container never
// passes for a valid one.
func Pack(srcPath, destPath string, options ...Option) (*Report, error) {
	f, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create container %s", destPath)
	}
	report, err := func() (*Report, error) {
		p, err := NewPacker(f, options...)
		if err != nil {
			return nil, err
		}
		if err := p.Add(srcPath); err != nil {
			return nil, err
		}
		if err := p.Close(); err != nil {
			return nil, err
		}
		return p.Report(), nil
	}()
	if cerr := f.Close(); cerr != nil && err == nil {
		err = errors.WithMessage(cerr, "failed to close container")
	}
	if err != nil {
		_ = os.Remove(destPath)
		return nil, err
	}
	return report, nil
}
