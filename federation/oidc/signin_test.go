package oidc

import (
	"context"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/store/memory"
)

func TestVerifiedProfileDrivesFederatedSignIn(t *testing.T) {
	p := newTestProvider(t)

	cfg := authcore.DefaultConfig()
	cfg.Tokens.AccessSecret = []byte(strings.Repeat("a", 32))
	cfg.Tokens.RefreshSecret = []byte(strings.Repeat("r", 32))
	cfg.Password.BcryptCost = 4
	engine, err := authcore.New().WithConfig(cfg).WithStore(memory.New()).Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	ctx := context.Background()
	profile, err := p.verifier.Verify(ctx, p.sign(t, nil))
	require.NoError(t, err)

	first, err := engine.FederatedSignIn(ctx, p.verifier.Provider(), profile)
	require.NoError(t, err)
	require.Equal(t, authcore.FederatedCreated, first.Outcome)
	require.Equal(t, "google", first.Account.AuthOrigin)
	require.Equal(t, "grace@example.com", first.Account.Email)

	again, err := p.verifier.Verify(ctx, p.sign(t, func(c jwt.MapClaims) { c["given_name"] = "Amazing" }))
	require.NoError(t, err)
	second, err := engine.FederatedSignIn(ctx, p.verifier.Provider(), again)
	require.NoError(t, err)
	require.Equal(t, authcore.FederatedSignedIn, second.Outcome)
	require.Equal(t, first.Account.ID, second.Account.ID)
}
