package minibak

import "errors"

var (
	ErrInapplicableOption     = errors.New("option not applicable")
	ErrUnknownValue           = errors.New("value is unknown")
	ErrUnsupportedEncryption  = errors.New("encryption mode unsupported")
	ErrUnsupportedCompression = errors.New("compression mode unsupported")
	ErrPasswordRequired       = errors.New("password required")
	ErrBadMagic               = errors.New("not a minibak container")
	ErrTruncated              = errors.New("container is truncated")
	ErrCorrupted              = errors.New("container is corrupted")
	ErrChecksum               = errors.New("checksum mismatch, corrupted data or wrong password")
)
