package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/authcore/store"
)

// LoginFailureKind classifies login flow failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureMissingField
	LoginFailureInvalidCredentials
	LoginFailureFederatedOnly
	LoginFailureStore
	LoginFailureIssue
)

// LoginResult carries either the authenticated account and its new pair or failure metadata.
type LoginResult struct {
	Failure LoginFailureKind
	Err     error
	Field   string
	// Reason is a low-cardinality tag for audit; it never reaches callers.
	Reason   string
	Email    string
	Account  *store.Account
	Pair     Pair
	Upgraded bool
}

// RunLogin authenticates email/password and starts a new session.
//
// Unknown email and wrong password are indistinguishable to the caller and
// cost one hash comparison each. Accounts that only sign in through a provider
// fail with LoginFailureFederatedOnly.
func RunLogin(ctx context.Context, email, plaintext string, deps Deps) LoginResult {
	email = NormalizeEmail(email)
	switch {
	case email == "":
		return LoginResult{Failure: LoginFailureMissingField, Field: "email"}
	case plaintext == "":
		return LoginResult{Failure: LoginFailureMissingField, Field: "password", Email: email}
	}

	account, err := deps.Store.FindAccountByEmail(ctx, email)
	if err != nil {
		return LoginResult{Failure: LoginFailureStore, Err: err, Email: email}
	}
	if account == nil {
		_, _ = deps.Hasher.Compare(plaintext, deps.DummyHash)
		return LoginResult{Failure: LoginFailureInvalidCredentials, Reason: "unknown_email", Email: email}
	}
	if !account.HasPassword() {
		if account.Federated() {
			return LoginResult{Failure: LoginFailureFederatedOnly, Reason: "federated_only", Email: email, Account: account}
		}
		_, _ = deps.Hasher.Compare(plaintext, deps.DummyHash)
		return LoginResult{Failure: LoginFailureInvalidCredentials, Reason: "no_password", Email: email, Account: account}
	}

	ok, err := deps.Hasher.Compare(plaintext, account.PasswordHash)
	if err != nil {
		deps.warn("authcore: stored password hash could not be compared", "account_id", account.ID, "error", err)
	}
	if !ok {
		return LoginResult{Failure: LoginFailureInvalidCredentials, Reason: "wrong_password", Email: email, Account: account}
	}

	now := deps.now().UTC()
	update := store.AccountUpdate{LastAuthenticatedAt: &now}
	upgraded := false
	if deps.UpgradeHashOnLogin {
		if stale, err := deps.Hasher.NeedsUpgrade(account.PasswordHash); err == nil && stale {
			if fresh, err := deps.Hasher.Hash(plaintext); err == nil {
				update.PasswordHash = &fresh
				upgraded = true
			} else {
				deps.warn("authcore: password hash upgrade skipped", "account_id", account.ID, "error", err)
			}
		}
	}

	updated, err := deps.Store.UpdateAccount(ctx, account.ID, update)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// Deleted between lookup and update.
		return LoginResult{Failure: LoginFailureInvalidCredentials, Reason: "account_deleted", Email: email}
	case err != nil:
		return LoginResult{Failure: LoginFailureStore, Err: err, Email: email, Account: account}
	}

	pair, err := issuePair(ctx, deps, updated)
	if err != nil {
		return LoginResult{Failure: LoginFailureIssue, Err: err, Email: email, Account: updated}
	}

	return LoginResult{Email: email, Account: updated, Pair: pair, Upgraded: upgraded}
}
