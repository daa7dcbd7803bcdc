package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicateEmail       = errors.New("store: email already registered")
	ErrDuplicateFederatedID = errors.New("store: federated identity already linked")
	ErrDuplicateToken       = errors.New("store: refresh token already recorded")
	ErrNotFound             = errors.New("store: not found")
)

// OriginLocal marks accounts created with a password. Any other origin names
// the identity provider that established or linked the account.
const OriginLocal = "local"

// Account is a registered identity.
type Account struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"password_hash,omitempty"`
	FirstName           string     `json:"first_name,omitempty"`
	LastName            string     `json:"last_name,omitempty"`
	AvatarURL           string     `json:"avatar_url,omitempty"`
	AuthOrigin          string     `json:"auth_origin"`
	FederatedID         string     `json:"federated_id,omitempty"`
	EmailConfirmed      bool       `json:"email_confirmed"`
	LastAuthenticatedAt *time.Time `json:"last_authenticated_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// HasPassword reports whether the account can sign in with a password.
func (a *Account) HasPassword() bool {
	return a != nil && a.PasswordHash != ""
}

// Federated reports whether the account is linked to an identity provider.
func (a *Account) Federated() bool {
	return a != nil && a.AuthOrigin != "" && a.AuthOrigin != OriginLocal
}

// NewAccount holds the fields supplied at creation. The store assigns
// timestamps; ID must be set by the caller.
type NewAccount struct {
	ID             string
	Email          string
	PasswordHash   string
	FirstName      string
	LastName       string
	AvatarURL      string
	AuthOrigin     string
	FederatedID    string
	EmailConfirmed bool
}

// AccountUpdate is a partial update. Nil fields are left unchanged; a pointer to
// the empty string clears the field.
type AccountUpdate struct {
	PasswordHash        *string
	FirstName           *string
	LastName            *string
	AvatarURL           *string
	AuthOrigin          *string
	FederatedID         *string
	EmailConfirmed      *bool
	LastAuthenticatedAt *time.Time
}

// Apply copies the set fields of u onto a. Implementations that hold whole
// records use it to keep update semantics identical.
func (u AccountUpdate) Apply(a *Account) {
	if u.PasswordHash != nil {
		a.PasswordHash = *u.PasswordHash
	}
	if u.FirstName != nil {
		a.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		a.LastName = *u.LastName
	}
	if u.AvatarURL != nil {
		a.AvatarURL = *u.AvatarURL
	}
	if u.AuthOrigin != nil {
		a.AuthOrigin = *u.AuthOrigin
	}
	if u.FederatedID != nil {
		a.FederatedID = *u.FederatedID
	}
	if u.EmailConfirmed != nil {
		a.EmailConfirmed = *u.EmailConfirmed
	}
	if u.LastAuthenticatedAt != nil {
		t := *u.LastAuthenticatedAt
		a.LastAuthenticatedAt = &t
	}
}

// Empty reports whether u changes nothing.
func (u AccountUpdate) Empty() bool {
	return u == AccountUpdate{}
}

// RefreshToken is the persisted record of one issued refresh token. TokenHash is
// the natural key: a digest of the signed token value.
type RefreshToken struct {
	TokenHash string    `json:"token_hash"`
	AccountID string    `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`

	// Account is populated by FindRefreshToken.
	Account *Account `json:"-"`
}

// ActiveAt reports whether the record can still be used at now.
func (t *RefreshToken) ActiveAt(now time.Time) bool {
	return t != nil && !t.Revoked && t.ExpiresAt.After(now)
}

//go:generate mockgen -destination=storemock/storemock.go -package=storemock github.com/MrEthical07/authcore/store CredentialStore

// CredentialStore persists accounts and refresh-token records.
//
// Every method may block on I/O and must honour ctx. Implementations must be
// safe for concurrent use.
type CredentialStore interface {
	CreateAccount(ctx context.Context, a NewAccount) (*Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*Account, error)
	FindAccountByID(ctx context.Context, id string) (*Account, error)
	FindAccountByFederatedID(ctx context.Context, origin, externalID string) (*Account, error)
	UpdateAccount(ctx context.Context, id string, u AccountUpdate) (*Account, error)
	// DeleteAccount removes the account and every refresh token it owns.
	DeleteAccount(ctx context.Context, id string) (*Account, error)

	CreateRefreshToken(ctx context.Context, tokenHash, accountID string, expiresAt time.Time) (*RefreshToken, error)
	// FindRefreshToken returns the record joined with its owning account.
	FindRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	// RevokeRefreshToken flips the record to revoked only if it is still active
	// at now, and reports whether this call performed the flip. Concurrent calls
	// for the same hash observe exactly one true.
	RevokeRefreshToken(ctx context.Context, tokenHash string, now time.Time) (bool, error)
	// RevokeAllRefreshTokens revokes every active record of the account.
	RevokeAllRefreshTokens(ctx context.Context, accountID string, now time.Time) (int64, error)
	ListRefreshTokens(ctx context.Context, accountID string) ([]RefreshToken, error)
	// PurgeExpiredOrRevoked deletes records that are revoked or no longer valid at
	// now. Active records are never touched.
	PurgeExpiredOrRevoked(ctx context.Context, now time.Time) (int64, error)
}
