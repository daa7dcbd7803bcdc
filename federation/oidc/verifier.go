package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/MrEthical07/authcore"
)

var (
	// ErrInvalidConfig is returned by [NewVerifier] for unusable settings.
	ErrInvalidConfig = errors.New("oidc: invalid config")
	// ErrInvalidToken wraps every signature, issuer, audience or expiry failure.
	ErrInvalidToken = errors.New("oidc: invalid id token")
	// ErrMissingClaim marks a token without sub or email.
	ErrMissingClaim = errors.New("oidc: required claim missing")
	// ErrUnverifiedEmail marks a token whose email the provider did not verify.
	ErrUnverifiedEmail = errors.New("oidc: email not verified by provider")
)

// Config describes one identity provider.
type Config struct {
	// Provider is the tag stored as the account's auth origin, e.g. "google".
	Provider string
	// Issuer must equal the token's iss claim. Without KeySet it is also the
	// discovery URL.
	Issuer   string
	ClientID string

	// KeySet, when set, skips discovery. Tests use [gooidc.StaticKeySet].
	KeySet gooidc.KeySet
	// SigningAlgs defaults to RS256.
	SigningAlgs []string
	Now         func() time.Time

	// AllowUnverifiedEmail accepts tokens whose email_verified claim is false
	// or absent. Leave it off unless the provider never sends the claim.
	AllowUnverifiedEmail bool
}

// Verifier validates ID tokens from one provider.
type Verifier struct {
	provider   string
	verifier   *gooidc.IDTokenVerifier
	endpoint   oauth2.Endpoint
	unverified bool
}

// NewVerifier builds a Verifier. Without cfg.KeySet it fetches the issuer's
// discovery document, so ctx bounds that request.
func NewVerifier(ctx context.Context, cfg Config) (*Verifier, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch {
	case provider == "" || provider == "local":
		return nil, fmt.Errorf("%w: provider tag is required and must not be local", ErrInvalidConfig)
	case strings.TrimSpace(cfg.Issuer) == "":
		return nil, fmt.Errorf("%w: issuer is required", ErrInvalidConfig)
	case strings.TrimSpace(cfg.ClientID) == "":
		return nil, fmt.Errorf("%w: client id is required", ErrInvalidConfig)
	}

	oc := &gooidc.Config{
		ClientID:             cfg.ClientID,
		SupportedSigningAlgs: cfg.SigningAlgs,
		Now:                  cfg.Now,
	}

	v := &Verifier{provider: provider, unverified: cfg.AllowUnverifiedEmail}
	if cfg.KeySet != nil {
		v.verifier = gooidc.NewVerifier(cfg.Issuer, cfg.KeySet, oc)
		return v, nil
	}

	p, err := gooidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc: discover %s: %w", cfg.Issuer, err)
	}
	v.verifier = p.Verifier(oc)
	v.endpoint = p.Endpoint()
	return v, nil
}

// Endpoint returns the discovered OAuth2 endpoints. It is zero when the
// Verifier was built from a static KeySet.
func (v *Verifier) Endpoint() oauth2.Endpoint {
	return v.endpoint
}

// Provider returns the provider tag passed to Engine.FederatedSignIn.
func (v *Verifier) Provider() string {
	return v.provider
}

type idClaims struct {
	Email         string  `json:"email"`
	EmailVerified boolish `json:"email_verified"`
	GivenName     string  `json:"given_name"`
	FamilyName    string  `json:"family_name"`
	Picture       string  `json:"picture"`
}

// Verify checks rawIDToken and maps its claims to a profile.
func (v *Verifier) Verify(ctx context.Context, rawIDToken string) (authcore.FederatedProfile, error) {
	tok, err := v.verifier.Verify(ctx, strings.TrimSpace(rawIDToken))
	if err != nil {
		return authcore.FederatedProfile{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var c idClaims
	if err := tok.Claims(&c); err != nil {
		return authcore.FederatedProfile{}, fmt.Errorf("%w: decode claims: %v", ErrInvalidToken, err)
	}

	switch {
	case strings.TrimSpace(tok.Subject) == "":
		return authcore.FederatedProfile{}, fmt.Errorf("%w: sub", ErrMissingClaim)
	case strings.TrimSpace(c.Email) == "":
		return authcore.FederatedProfile{}, fmt.Errorf("%w: email", ErrMissingClaim)
	case !bool(c.EmailVerified) && !v.unverified:
		return authcore.FederatedProfile{}, ErrUnverifiedEmail
	}

	return authcore.FederatedProfile{
		ExternalID: tok.Subject,
		Email:      c.Email,
		GivenName:  c.GivenName,
		FamilyName: c.FamilyName,
		AvatarURL:  c.Picture,
	}, nil
}

// boolish accepts both true and "true"; some providers send the string form.
type boolish bool

func (b *boolish) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = boolish(t)
	case string:
		*b = boolish(strings.EqualFold(t, "true"))
	default:
		*b = false
	}
	return nil
}
