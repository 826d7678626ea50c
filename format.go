package minibak

import (
	"encoding/binary"
	"time"
)

// A container is the 8-byte magic tag, one compression flag byte, then a
// sequence of records in traversal order. Each record is self-describing:
//
//	kind       u8
//	path len   u64
//	path       UTF-8 bytes
//	orig size  u64   content length before compression
//	stored len u64   payload length inside the container
//	crc32      u32   IEEE, over the stored (compressed, pre-cipher) payload
//	mode       u32
//	uid        u32
//	gid        u32
//	mtime      i64   seconds since epoch
//	payload    stored len bytes
//
// Integers are little-endian. The magic and the flag are written in the
// clear; everything after them goes through the container's cipher stream.
const (
	recordPrefixLen = 1 + 8
	recordTailLen   = 8 + 8 + 4 + 4 + 4 + 4 + 8
)

func encodeRecordHeader(e *Entry, origSize, storedSize int64, sum uint32) []byte {
	path := []byte(e.Path)
	buf := make([]byte, 0, recordPrefixLen+len(path)+recordTailLen)
	buf = append(buf, byte(e.Kind))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(path)))
	buf = append(buf, path...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(origSize))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(storedSize))
	buf = binary.LittleEndian.AppendUint32(buf, sum)
	buf = binary.LittleEndian.AppendUint32(buf, e.Perm)
	buf = binary.LittleEndian.AppendUint32(buf, e.UID)
	buf = binary.LittleEndian.AppendUint32(buf, e.GID)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(e.ModTime.Unix()))
	return buf
}

// decodeRecordTail parses the fixed fields following the path and fills the
// entry in place, returning the declared sizes and checksum.
func decodeRecordTail(e *Entry, tail []byte) (origSize, storedSize int64, sum uint32) {
	origSize = int64(binary.LittleEndian.Uint64(tail[0:]))
	storedSize = int64(binary.LittleEndian.Uint64(tail[8:]))
	sum = binary.LittleEndian.Uint32(tail[16:])
	e.Perm = binary.LittleEndian.Uint32(tail[20:])
	e.UID = binary.LittleEndian.Uint32(tail[24:])
	e.GID = binary.LittleEndian.Uint32(tail[28:])
	e.ModTime = time.Unix(int64(binary.LittleEndian.Uint64(tail[32:])), 0)
	return origSize, storedSize, sum
}
