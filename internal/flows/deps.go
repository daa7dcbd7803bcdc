package flows

import (
	"net/mail"
	"strings"
	"time"

	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/password"
	"github.com/MrEthical07/authcore/store"
)

// Deps groups flow collaborators. The root engine builds this once and passes
// it to every Run* call.
type Deps struct {
	Store        store.CredentialStore
	Codec        *jwt.Codec
	Hasher       *password.Hasher
	Now          func() time.Time
	NewAccountID func() string

	// DummyHash is compared against when a login names no account, so unknown
	// emails and wrong passwords cost the same.
	DummyHash          string
	UpgradeHashOnLogin bool

	Warn func(msg string, args ...any)
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d Deps) warn(msg string, args ...any) {
	if d.Warn != nil {
		d.Warn(msg, args...)
	}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email is a bare RFC 5322 address (no display name).
func ValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
