// Package ids derives identifiers and lookup keys: account ids, refresh-token
// digests and the short fingerprints that stand in for tokens in logs, audit
// events and session listings.
package ids

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// FingerprintLength is the number of hex characters kept from a digest.
const FingerprintLength = 12

// NewAccountID returns a random (v4) UUID string.
func NewAccountID() string {
	return uuid.NewString()
}

// ValidAccountID reports whether id parses as a UUID.
func ValidAccountID(id string) bool {
	return uuid.Validate(id) == nil
}

// TokenDigest is the lowercase hex SHA-256 of a signed token. Stores key
// refresh-token records by it so raw token values are never persisted.
func TokenDigest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// Fingerprint shortens a digest for display.
func Fingerprint(digest string) string {
	if len(digest) <= FingerprintLength {
		return digest
	}
	return digest[:FingerprintLength]
}
