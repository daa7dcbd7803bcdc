package flows

import (
	"context"
	"strings"

	"github.com/MrEthical07/authcore/internal/ids"
)

// LogoutFailureKind classifies logout flow failures for root-level mapping.
type LogoutFailureKind int

const (
	LogoutFailureNone LogoutFailureKind = iota
	LogoutFailureEmpty
	LogoutFailureUnknown
	LogoutFailureAlreadyRevoked
	LogoutFailureExpired
	LogoutFailureStore
)

// LogoutResult reports which session, if any, was ended.
type LogoutResult struct {
	Failure     LogoutFailureKind
	Err         error
	AccountID   string
	Fingerprint string
}

// RunLogout revokes exactly the presented refresh token. The record is looked
// up by digest, so possession of the value is the only credential required.
func RunLogout(ctx context.Context, value string, deps Deps) LogoutResult {
	value = strings.TrimSpace(value)
	if value == "" {
		return LogoutResult{Failure: LogoutFailureEmpty}
	}

	digest := ids.TokenDigest(value)
	res := LogoutResult{Fingerprint: ids.Fingerprint(digest)}

	record, err := deps.Store.FindRefreshToken(ctx, digest)
	switch {
	case err != nil:
		res.Failure, res.Err = LogoutFailureStore, err
		return res
	case record == nil:
		res.Failure = LogoutFailureUnknown
		return res
	}
	res.AccountID = record.AccountID

	now := deps.now()
	switch {
	case record.Revoked:
		res.Failure = LogoutFailureAlreadyRevoked
		return res
	case !record.ExpiresAt.After(now):
		res.Failure = LogoutFailureExpired
		return res
	}

	won, err := deps.Store.RevokeRefreshToken(ctx, digest, now)
	switch {
	case err != nil:
		res.Failure, res.Err = LogoutFailureStore, err
	case !won:
		// A concurrent logout or rotation got there first.
		res.Failure = LogoutFailureAlreadyRevoked
	}
	return res
}
