package oahash

import "github.com/pkg/errors"

var (
	// ErrInvalidCapacity is returned by New when the initial capacity is not positive.
	ErrInvalidCapacity = errors.New("oahash: capacity must be positive")

	// ErrInvalidLoadFactor is returned by New when the load factor is outside (0, 1].
	ErrInvalidLoadFactor = errors.New("oahash: load factor must be in (0, 1]")

	// ErrInvalidOption is returned by New when a hasher or equality option
	// was built for a different key type.
	ErrInvalidOption = errors.New("oahash: option does not match key type")

	// ErrNilKey is returned when a nil pointer, interface or channel is used as a key.
	ErrNilKey = errors.New("oahash: nil key")

	// ErrUnhashableKey is returned when an interface key holds a value whose
	// dynamic type cannot be hashed or compared.
	ErrUnhashableKey = errors.New("oahash: unhashable key")
)
