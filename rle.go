package minibak

import "github.com/pkg/errors"

// rleCompress encodes src as (count, value) pairs, one pair per maximal run
// of identical bytes. Runs longer than 255 are split. High-entropy input may
// grow up to twice its size; callers accept that.
func rleCompress(src []byte) []byte {
	if len(src) == 0 {
		return nil
	}
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); {
		j := i + 1
		for j < len(src) && src[j] == src[i] && j-i < 255 {
			j++
		}
		out = append(out, byte(j-i), src[i])
		i = j
	}
	return out
}

// rleDecompress reverses rleCompress. The expected original size is known
// from the record header, so the output is preallocated and any disagreement
// with the declared size is reported as corruption.
func rleDecompress(src []byte, size int64) ([]byte, error) {
	if len(src)%2 != 0 {
		return nil, errors.WithMessage(ErrCorrupted, "odd rle payload length")
	}
	// Each (count, value) pair expands to at most 255 bytes, which bounds
	// every honest declared size and keeps a crafted one from driving the
	// allocation.
	if size < 0 || size > int64(len(src)/2)*255 {
		return nil, errors.WithMessagef(ErrCorrupted, "rle declared size %d impossible for %d payload bytes", size, len(src))
	}
	out := make([]byte, 0, size)
	for i := 0; i < len(src); i += 2 {
		count, value := int(src[i]), src[i+1]
		for k := 0; k < count; k++ {
			out = append(out, value)
		}
	}
	if int64(len(out)) != size {
		return nil, errors.WithMessagef(ErrCorrupted, "rle expanded to %d bytes, record declares %d", len(out), size)
	}
	return out, nil
}
