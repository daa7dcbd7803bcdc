package password

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Algorithm selects the encoding produced by [Hasher.Hash].
type Algorithm string

const (
	AlgorithmBcrypt   Algorithm = "bcrypt"
	AlgorithmArgon2id Algorithm = "argon2id"
)

const (
	// DefaultMinLength is the shortest plaintext Hash accepts. The stricter
	// [AssessStrength] policy is applied by callers before hashing.
	DefaultMinLength = 6
	// DefaultBcryptCost is the production work factor.
	DefaultBcryptCost = 12

	bcryptMaxBytes = 72
)

// Config controls which algorithm new hashes use and how expensive they are.
type Config struct {
	Algorithm  Algorithm
	MinLength  int
	BcryptCost int
	Argon2     Argon2Params
}

// DefaultConfig returns bcrypt at cost 12 with a six character minimum.
func DefaultConfig() Config {
	return Config{
		Algorithm:  AlgorithmBcrypt,
		MinLength:  DefaultMinLength,
		BcryptCost: DefaultBcryptCost,
		Argon2:     DefaultArgon2Params(),
	}
}

// Hasher hashes and compares passwords. It is stateless after construction and
// safe for concurrent use.
type Hasher struct {
	cfg    Config
	argon2 *argon2Hasher
}

// New validates cfg and returns a Hasher.
func New(cfg Config) (*Hasher, error) {
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmBcrypt
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultMinLength
	}
	if cfg.Argon2 == (Argon2Params{}) {
		cfg.Argon2 = DefaultArgon2Params()
	}

	switch cfg.Algorithm {
	case AlgorithmBcrypt:
		if cfg.BcryptCost == 0 {
			cfg.BcryptCost = DefaultBcryptCost
		}
		if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("%w: bcrypt cost must be in [%d,%d]", ErrInvalidConfig, bcrypt.MinCost, bcrypt.MaxCost)
		}
	case AlgorithmArgon2id:
	default:
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidConfig, cfg.Algorithm)
	}

	a, err := newArgon2Hasher(cfg.Argon2)
	if err != nil {
		return nil, err
	}

	return &Hasher{cfg: cfg, argon2: a}, nil
}

// Algorithm reports the algorithm used for new hashes.
func (h *Hasher) Algorithm() Algorithm {
	return h.cfg.Algorithm
}

// Hash returns a salted one-way encoding of plaintext.
//
// Plaintext is used byte-for-byte; no Unicode normalization is applied.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(plaintext) < h.cfg.MinLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, h.cfg.MinLength)
	}

	switch h.cfg.Algorithm {
	case AlgorithmArgon2id:
		return h.argon2.hash(plaintext)
	default:
		if len(plaintext) > bcryptMaxBytes {
			return "", fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, bcryptMaxBytes)
		}
		out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cfg.BcryptCost)
		if err != nil {
			return "", fmt.Errorf("password: bcrypt: %w", err)
		}
		return string(out), nil
	}
}

// Compare reports whether plaintext matches encoded. A mismatch is (false, nil);
// an error means the arguments or the stored hash are unusable.
func (h *Hasher) Compare(plaintext, encoded string) (bool, error) {
	if plaintext == "" || encoded == "" {
		return false, fmt.Errorf("%w: password and hash are required", ErrInvalidInput)
	}

	switch {
	case strings.HasPrefix(encoded, argon2Prefix):
		return h.argon2.compare(plaintext, encoded)
	case isBcrypt(encoded):
		if len(plaintext) > bcryptMaxBytes {
			return false, nil
		}
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
		}
	default:
		return false, fmt.Errorf("%w: unrecognised hash prefix", ErrMalformedHash)
	}
}

// NeedsUpgrade reports whether encoded was produced by a different algorithm or
// a weaker work factor than the current configuration.
func (h *Hasher) NeedsUpgrade(encoded string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, argon2Prefix):
		if h.cfg.Algorithm != AlgorithmArgon2id {
			return true, nil
		}
		return h.argon2.weakerThanConfigured(encoded)
	case isBcrypt(encoded):
		if h.cfg.Algorithm != AlgorithmBcrypt {
			return true, nil
		}
		cost, err := bcrypt.Cost([]byte(encoded))
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
		}
		return cost < h.cfg.BcryptCost, nil
	default:
		return false, fmt.Errorf("%w: unrecognised hash prefix", ErrMalformedHash)
	}
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}
