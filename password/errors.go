package password

import "errors"

var (
	// ErrInvalidInput is returned when a plaintext or stored hash argument is empty
	// or violates the minimum length accepted for hashing.
	ErrInvalidInput = errors.New("password: invalid input")
	// ErrMalformedHash is returned when a stored hash cannot be decoded.
	ErrMalformedHash = errors.New("password: malformed hash")
	// ErrInvalidConfig is returned by New for unusable work factors.
	ErrInvalidConfig = errors.New("password: invalid config")
)
