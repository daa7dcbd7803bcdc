package authcore

import (
	"io"
	"time"

	internalaudit "github.com/MrEthical07/authcore/internal/audit"
	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/store"
)

// RegisterRequest carries the fields required to create a local account.
type RegisterRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Account is the caller-facing view of a stored account. It never carries the
// password hash.
type Account struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	FirstName           string     `json:"first_name,omitempty"`
	LastName            string     `json:"last_name,omitempty"`
	AvatarURL           string     `json:"avatar_url,omitempty"`
	AuthOrigin          string     `json:"auth_origin"`
	Federated           bool       `json:"federated"`
	HasPassword         bool       `json:"has_password"`
	EmailConfirmed      bool       `json:"email_confirmed"`
	LastAuthenticatedAt *time.Time `json:"last_authenticated_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func accountView(a *store.Account) *Account {
	if a == nil {
		return nil
	}
	return &Account{
		ID:                  a.ID,
		Email:               a.Email,
		FirstName:           a.FirstName,
		LastName:            a.LastName,
		AvatarURL:           a.AvatarURL,
		AuthOrigin:          a.AuthOrigin,
		Federated:           a.Federated(),
		HasPassword:         a.HasPassword(),
		EmailConfirmed:      a.EmailConfirmed,
		LastAuthenticatedAt: a.LastAuthenticatedAt,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

// AuthResult is returned by every operation that starts or rotates a session.
type AuthResult struct {
	Account          *Account  `json:"account"`
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"-"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Subject is the identity proven by a valid access token.
type Subject = jwt.Subject

// Claims is the decoded payload returned by [Engine.Peek].
type Claims = jwt.Claims

// FederatedProfile is the identity an external provider vouched for. ExternalID
// is the provider's stable subject identifier.
type FederatedProfile struct {
	ExternalID string
	Email      string
	GivenName  string
	FamilyName string
	AvatarURL  string
}

// FederatedOutcome reports which branch a federated sign-in took.
type FederatedOutcome uint8

const (
	// FederatedSignedIn means the provider identity was already linked.
	FederatedSignedIn FederatedOutcome = iota + 1
	// FederatedLinked means an existing local account was linked by email.
	FederatedLinked
	// FederatedCreated means a new account was created.
	FederatedCreated
)

func (o FederatedOutcome) String() string {
	switch o {
	case FederatedSignedIn:
		return "signed_in"
	case FederatedLinked:
		return "linked"
	case FederatedCreated:
		return "created"
	default:
		return "unknown"
	}
}

// FederatedResult is an [AuthResult] annotated with the sign-in outcome.
type FederatedResult struct {
	AuthResult
	Provider string           `json:"provider"`
	Outcome  FederatedOutcome `json:"-"`
}

// SessionInfo is the safe introspection view for a refresh token record.
// It excludes the token value and its full digest.
type SessionInfo struct {
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Revoked     bool      `json:"revoked"`
	Active      bool      `json:"active"`
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// AuditSinkFunc adapts a function to [AuditSink].
type AuditSinkFunc = internalaudit.SinkFunc

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
