package jwt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Kind discriminates access tokens from refresh tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

const (
	// DefaultRole is stamped on access tokens whose subject has no role.
	DefaultRole = "user"

	minSecretBytes = 32
	maxLeeway      = 2 * time.Minute
)

// Config holds the signing material and lifetimes for both token kinds.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Leeway        time.Duration

	// Now overrides the clock used for issuance and verification.
	Now func() time.Time
}

// DefaultConfig returns 15 minute access and 7 day refresh lifetimes. Secrets
// must still be supplied.
func DefaultConfig() Config {
	return Config{
		Issuer:     "authcore",
		Audience:   "authcore",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

// Subject is the identity a token is minted for.
type Subject struct {
	ID    string
	Email string
	Role  string
}

// Claims is the decoded payload of either token kind.
type Claims struct {
	Email string `json:"email"`
	Kind  Kind   `json:"kind"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the subject carried by c.
func (c *Claims) Identity() Subject {
	return Subject{ID: c.RegisteredClaims.Subject, Email: c.Email, Role: c.Role}
}

// Token is a signed token together with its absolute expiry.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Codec signs and verifies tokens. It holds no mutable state and is safe for
// concurrent use.
type Codec struct {
	cfg Config
}

// NewCodec validates cfg. Both secrets are required, must be at least 32 bytes
// and must differ from each other.
func NewCodec(cfg Config) (*Codec, error) {
	switch {
	case len(cfg.AccessSecret) == 0:
		return nil, fmt.Errorf("%w: access secret is not set", ErrConfiguration)
	case len(cfg.RefreshSecret) == 0:
		return nil, fmt.Errorf("%w: refresh secret is not set", ErrConfiguration)
	case len(cfg.AccessSecret) < minSecretBytes || len(cfg.RefreshSecret) < minSecretBytes:
		return nil, fmt.Errorf("%w: secrets must be at least %d bytes", ErrConfiguration, minSecretBytes)
	case bytes.Equal(cfg.AccessSecret, cfg.RefreshSecret):
		return nil, fmt.Errorf("%w: access and refresh secrets must differ", ErrConfiguration)
	case strings.TrimSpace(cfg.Issuer) == "" || strings.TrimSpace(cfg.Audience) == "":
		return nil, fmt.Errorf("%w: issuer and audience are required", ErrConfiguration)
	case cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0:
		return nil, fmt.Errorf("%w: token lifetimes must be positive", ErrConfiguration)
	case cfg.Leeway < 0 || cfg.Leeway > maxLeeway:
		return nil, fmt.Errorf("%w: leeway must be within [0,%s]", ErrConfiguration, maxLeeway)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	cfg.AccessSecret = bytes.Clone(cfg.AccessSecret)
	cfg.RefreshSecret = bytes.Clone(cfg.RefreshSecret)
	return &Codec{cfg: cfg}, nil
}

// AccessTTL reports the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.cfg.AccessTTL }

// RefreshTTL reports the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.cfg.RefreshTTL }

// IssueAccess mints an access token for s. An empty role becomes [DefaultRole].
func (c *Codec) IssueAccess(s Subject) (Token, error) {
	if s.Role == "" {
		s.Role = DefaultRole
	}
	return c.issue(s, KindAccess)
}

// IssueRefresh mints a refresh token for s. Refresh tokens carry no role.
func (c *Codec) IssueRefresh(s Subject) (Token, error) {
	s.Role = ""
	return c.issue(s, KindRefresh)
}

func (c *Codec) issue(s Subject, kind Kind) (Token, error) {
	if strings.TrimSpace(s.ID) == "" || strings.TrimSpace(s.Email) == "" {
		return Token{}, ErrInvalidSubject
	}
	secret, ttl := c.material(kind)
	if len(secret) == 0 {
		return Token{}, fmt.Errorf("%w: %s secret is not set", ErrConfiguration, kind)
	}

	now := c.cfg.Now()
	id := ulid.Make().String()
	exp := now.Add(ttl)
	claims := Claims{
		Email: s.Email,
		Kind:  kind,
		Role:  s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   s.ID,
			Issuer:    c.cfg.Issuer,
			Audience:  jwt.ClaimStrings{c.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return Token{}, fmt.Errorf("jwt: sign %s token: %w", kind, err)
	}
	return Token{Value: signed, ID: id, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// VerifyAccess verifies an access token.
func (c *Codec) VerifyAccess(value string) (*Claims, error) {
	return c.verify(value, KindAccess)
}

// VerifyRefresh verifies a refresh token.
func (c *Codec) VerifyRefresh(value string) (*Claims, error) {
	return c.verify(value, KindRefresh)
}

// verify selects the key from the kind claim, so a valid signature proves the
// kind was minted by this codec. Mismatching kinds surface as ErrWrongKind even
// when the token has also expired.
func (c *Codec) verify(value string, want Kind) (*Claims, error) {
	if strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformed)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.cfg.Issuer),
		jwt.WithAudience(c.cfg.Audience),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(c.cfg.Leeway),
		jwt.WithTimeFunc(c.cfg.Now),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(value, claims, func(t *jwt.Token) (any, error) {
		parsed, ok := t.Claims.(*Claims)
		if !ok {
			return nil, errors.New("unexpected claims type")
		}
		secret, _ := c.material(parsed.Kind)
		if len(secret) == 0 {
			return nil, fmt.Errorf("unknown token kind %q", parsed.Kind)
		}
		return secret, nil
	})

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		if claims.Kind != want {
			return nil, fmt.Errorf("%w: got %s token, want %s", ErrWrongKind, claims.Kind, want)
		}
		return nil, fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if claims.Kind != want {
		return nil, fmt.Errorf("%w: got %s token, want %s", ErrWrongKind, claims.Kind, want)
	}
	if claims.RegisteredClaims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrMalformed)
	}
	return claims, nil
}

// Peek decodes value without checking its signature or expiry. The result is
// for display only and must never drive an authorization decision.
func (c *Codec) Peek(value string) (*Claims, bool) {
	return Peek(value)
}

// Peek is the package-level form of [Codec.Peek] for tools without secrets.
func Peek(value string) (*Claims, bool) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(value, claims); err != nil {
		return nil, false
	}
	return claims, true
}

func (c *Codec) material(kind Kind) ([]byte, time.Duration) {
	switch kind {
	case KindAccess:
		return c.cfg.AccessSecret, c.cfg.AccessTTL
	case KindRefresh:
		return c.cfg.RefreshSecret, c.cfg.RefreshTTL
	default:
		return nil, 0
	}
}
