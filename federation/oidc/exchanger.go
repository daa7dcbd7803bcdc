package oidc

import (
	"context"
	"errors"
	"fmt"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/MrEthical07/authcore"
)

// ErrNoIDToken marks a token response without an id_token.
var ErrNoIDToken = errors.New("oidc: token response has no id_token")

// Exchanger redeems authorization codes for a verified profile.
type Exchanger struct {
	oauth    *oauth2.Config
	verifier *Verifier
}

// NewExchanger pairs an OAuth2 client with the Verifier for the same
// provider. An empty cfg.Endpoint is taken from discovery and empty scopes
// default to openid, email and profile.
func NewExchanger(cfg oauth2.Config, v *Verifier) *Exchanger {
	if cfg.Endpoint.TokenURL == "" {
		cfg.Endpoint = v.Endpoint()
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{gooidc.ScopeOpenID, "email", "profile"}
	}
	return &Exchanger{oauth: &cfg, verifier: v}
}

// Provider returns the provider tag of the underlying Verifier.
func (e *Exchanger) Provider() string {
	return e.verifier.Provider()
}

// AuthCodeURL returns the provider URL to redirect the user to.
func (e *Exchanger) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return e.oauth.AuthCodeURL(state, opts...)
}

// Exchange redeems code and verifies the returned ID token. Provider access
// and refresh tokens are discarded.
func (e *Exchanger) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (authcore.FederatedProfile, error) {
	tok, err := e.oauth.Exchange(ctx, code, opts...)
	if err != nil {
		return authcore.FederatedProfile{}, fmt.Errorf("oidc: exchange code: %w", err)
	}

	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return authcore.FederatedProfile{}, ErrNoIDToken
	}
	return e.verifier.Verify(ctx, raw)
}
