package flows

import (
	"context"
	"errors"
	"strings"

	"github.com/MrEthical07/authcore/internal/ids"
	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/store"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureEmpty
	RefreshFailureMalformed
	RefreshFailureExpired
	RefreshFailureWrongKind
	RefreshFailureUnknown
	RefreshFailureRevoked
	RefreshFailureInactive
	RefreshFailureReuse
	RefreshFailureStore
	RefreshFailureIssue
)

// RefreshResult carries either the rotated pair or failure metadata.
type RefreshResult struct {
	Failure     RefreshFailureKind
	Err         error
	AccountID   string
	Fingerprint string
	Account     *store.Account
	Pair        Pair
}

// RunRefresh rotates a refresh token: the presented token is revoked and a new
// pair is minted for the same account.
//
// The conditional revoke is the linearization point. Of any number of
// concurrent calls presenting the same token, exactly one wins it and mints;
// the rest fail with RefreshFailureReuse. A failure after the revoke (minting
// or persisting the new token) leaves the caller with no usable refresh token.
func RunRefresh(ctx context.Context, value string, deps Deps) RefreshResult {
	value = strings.TrimSpace(value)
	if value == "" {
		return RefreshResult{Failure: RefreshFailureEmpty}
	}

	claims, err := deps.Codec.VerifyRefresh(value)
	if err != nil {
		failure := RefreshFailureMalformed
		switch {
		case errors.Is(err, jwt.ErrWrongKind):
			failure = RefreshFailureWrongKind
		case errors.Is(err, jwt.ErrExpired):
			failure = RefreshFailureExpired
		}
		return RefreshResult{Failure: failure, Err: err}
	}

	digest := ids.TokenDigest(value)
	res := RefreshResult{
		AccountID:   claims.RegisteredClaims.Subject,
		Fingerprint: ids.Fingerprint(digest),
	}

	record, err := deps.Store.FindRefreshToken(ctx, digest)
	switch {
	case err != nil:
		res.Failure, res.Err = RefreshFailureStore, err
		return res
	case record == nil:
		res.Failure = RefreshFailureUnknown
		return res
	}

	now := deps.now()
	switch {
	case record.Revoked:
		res.Failure = RefreshFailureRevoked
		return res
	case !record.ActiveAt(now):
		res.Failure = RefreshFailureInactive
		return res
	}

	won, err := deps.Store.RevokeRefreshToken(ctx, digest, now)
	switch {
	case err != nil:
		res.Failure, res.Err = RefreshFailureStore, err
		return res
	case !won:
		res.Failure = RefreshFailureReuse
		return res
	}

	account := record.Account
	if account == nil {
		account, err = deps.Store.FindAccountByID(ctx, record.AccountID)
		switch {
		case err != nil:
			res.Failure, res.Err = RefreshFailureStore, err
			return res
		case account == nil:
			res.Failure = RefreshFailureUnknown
			return res
		}
	}
	res.AccountID = account.ID
	res.Account = account

	pair, err := issuePair(ctx, deps, account)
	if err != nil {
		res.Failure, res.Err = RefreshFailureIssue, err
		return res
	}
	res.Pair = pair
	return res
}
