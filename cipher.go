package minibak

import (
	"crypto/rc4"

	"github.com/pkg/errors"
)

// keystream is a symmetric byte-stream transform. Applying the same stream
// twice over the same bytes restores them, so one implementation serves both
// packing and unpacking. State runs continuously across all records of a
// container, which keeps the reader free to consume the stream in whatever
// chunk sizes it likes.
type keystream interface {
	apply(b []byte)
}

type nopStream struct{}

func (nopStream) apply([]byte) {}

// xorStream repeats the password over the stream. A legacy scheme kept as a
// cheap obfuscation mode; rc4Stream is the primary cipher.
type xorStream struct {
	key []byte
	pos int
}

func (s *xorStream) apply(b []byte) {
	for i := range b {
		b[i] ^= s.key[s.pos]
		s.pos = (s.pos + 1) % len(s.key)
	}
}

type rc4Stream struct {
	c *rc4.Cipher
}

func (s *rc4Stream) apply(b []byte) {
	s.c.XORKeyStream(b, b)
}

// newKeystream builds the cipher for one container. The password bytes are
// the key material as-is. A non-none mode with an empty password is a caller
// error rather than a silent no-op.
func newKeystream(mode EncMode, password []byte) (keystream, error) {
	switch mode {
	case EncNone:
		return nopStream{}, nil
	case EncXOR:
		if len(password) == 0 {
			return nil, ErrPasswordRequired
		}
		return &xorStream{key: password}, nil
	case EncRC4:
		if len(password) == 0 {
			return nil, ErrPasswordRequired
		}
		c, err := rc4.NewCipher(password)
		if err != nil {
			return nil, errors.WithMessage(err, "failed to init rc4")
		}
		return &rc4Stream{c: c}, nil
	default:
		return nil, ErrUnsupportedEncryption
	}
}
