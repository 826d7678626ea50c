package minibak

const unknownValue = "unknown"

// Container magic tags. The tag doubles as the encryption mode marker, so a
// reader knows whether a password is needed before touching any record.
const (
	magicLen   = 8
	magicPlain = "MINIBK10"
	magicXOR   = "MINIBK_X"
	magicRC4   = "MINIBK_R"
)

// maxPathLen bounds the declared path length of a record. Anything above it
// is treated as corruption (or a wrong password scrambling the metadata).
const maxPathLen = 64 << 10

// EncMode is the encryption mode of a container.
// The numeric values are part of the container contract.
type EncMode uint8

const (
	EncNone EncMode = 0
	EncXOR  EncMode = 1
	EncRC4  EncMode = 2
)

func (m EncMode) String() string {
	switch m {
	case EncNone:
		return "none"
	case EncXOR:
		return "xor"
	case EncRC4:
		return "rc4"
	default:
		return unknownValue
	}
}

// magic returns the container tag announcing this mode.
func (m EncMode) magic() string {
	switch m {
	case EncXOR:
		return magicXOR
	case EncRC4:
		return magicRC4
	default:
		return magicPlain
	}
}

// encModeForMagic maps a container tag back to its encryption mode.
func encModeForMagic(magic string) (EncMode, error) {
	switch magic {
	case magicPlain:
		return EncNone, nil
	case magicXOR:
		return EncXOR, nil
	case magicRC4:
		return EncRC4, nil
	default:
		return EncNone, ErrBadMagic
	}
}

// CompMode is the content compression mode of a container.
// The numeric values are part of the container contract.
type CompMode uint8

const (
	CompNone CompMode = 0
	CompRLE  CompMode = 1
)

func (m CompMode) String() string {
	switch m {
	case CompNone:
		return "none"
	case CompRLE:
		return "rle"
	default:
		return unknownValue
	}
}

// Kind is the type of an entry. The non-zero values are the wire codes used
// inside record headers; KindAny only appears in filters.
type Kind uint8

const (
	KindAny Kind = iota
	KindRegular
	KindDirectory
	KindSymlink
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindRegular:
		return "file"
	case KindDirectory:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return unknownValue
	}
}
