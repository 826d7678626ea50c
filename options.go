package minibak

// WithEncryption provides the encryption mode of container creation.
// Readers detect the mode from the container magic and don't take this.
func WithEncryption(mode EncMode) Option {
	return func(i private) error {
		if mode.String() == unknownValue {
			return ErrUnknownValue
		}
		p, ok := i.(*Packer)
		if !ok {
			return ErrInapplicableOption
		}
		p.encMode = mode
		return nil
	}
}

// WithCompression provides the content compression mode of container
// creation. Readers detect the mode from the container header.
func WithCompression(mode CompMode) Option {
	return func(i private) error {
		if mode.String() == unknownValue {
			return ErrUnknownValue
		}
		p, ok := i.(*Packer)
		if !ok {
			return ErrInapplicableOption
		}
		p.compMode = mode
		return nil
	}
}

// WithPassword provides the key material for the stream cipher. The bytes
// are used directly as the key, there is no stretching.
func WithPassword(password []byte) Option {
	return func(i private) error {
		switch i := i.(type) {
		case *Packer:
			i.password = password
		case *unpacker:
			i.password = password
		default:
			return ErrInapplicableOption
		}
		return nil
	}
}

// WithFilter restricts which entries are recorded during a pack.
// A nil filter records everything.
func WithFilter(filter *Filter) Option {
	return func(i private) error {
		p, ok := i.(*Packer)
		if !ok {
			return ErrInapplicableOption
		}
		p.filter = filter
		return nil
	}
}
