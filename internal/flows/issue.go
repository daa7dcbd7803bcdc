package flows

import (
	"context"
	"fmt"

	"github.com/MrEthical07/authcore/internal/ids"
	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/store"
)

// Pair is a freshly minted access/refresh pair whose refresh half is already
// persisted.
type Pair struct {
	Access  jwt.Token
	Refresh jwt.Token
	// Digest keys the refresh token's store record.
	Digest string
}

// issuePair mints both tokens for a and records the refresh token. Callers
// never see a refresh token the store does not know about.
func issuePair(ctx context.Context, deps Deps, a *store.Account) (Pair, error) {
	subject := jwt.Subject{ID: a.ID, Email: a.Email}

	access, err := deps.Codec.IssueAccess(subject)
	if err != nil {
		return Pair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := deps.Codec.IssueRefresh(subject)
	if err != nil {
		return Pair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	digest := ids.TokenDigest(refresh.Value)
	if _, err := deps.Store.CreateRefreshToken(ctx, digest, a.ID, refresh.ExpiresAt); err != nil {
		return Pair{}, fmt.Errorf("persist refresh token: %w", err)
	}
	return Pair{Access: access, Refresh: refresh, Digest: digest}, nil
}
