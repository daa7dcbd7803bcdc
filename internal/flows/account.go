package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/authcore/password"
	"github.com/MrEthical07/authcore/store"
)

// AccountFailureKind classifies account maintenance failures (password change,
// password set, unlink, delete) for root-level mapping.
type AccountFailureKind int

const (
	AccountFailureNone AccountFailureKind = iota
	AccountFailureMissingField
	AccountFailureNotFound
	AccountFailureWrongPassword
	AccountFailureWeakPassword
	AccountFailurePasswordReuse
	AccountFailurePasswordRequired
	AccountFailurePasswordAlreadySet
	AccountFailureNotLinked
	AccountFailureHash
	AccountFailureStore
	// AccountFailureRevoke means the change was committed but sessions could
	// not be revoked afterwards.
	AccountFailureRevoke
)

// AccountResult carries the updated account or failure metadata.
type AccountResult struct {
	Failure    AccountFailureKind
	Err        error
	Field      string
	Violations []string
	Account    *store.Account
	// Provider is the origin an unlink removed.
	Provider string
	// Revoked counts sessions ended as a side effect.
	Revoked int64
}

func loadAccount(ctx context.Context, accountID string, deps Deps) (*store.Account, AccountResult, bool) {
	if accountID == "" {
		return nil, AccountResult{Failure: AccountFailureMissingField, Field: "account_id"}, false
	}
	a, err := deps.Store.FindAccountByID(ctx, accountID)
	switch {
	case err != nil:
		return nil, AccountResult{Failure: AccountFailureStore, Err: err}, false
	case a == nil:
		return nil, AccountResult{Failure: AccountFailureNotFound}, false
	}
	return a, AccountResult{}, true
}

// hashNew applies the registration policy to next and hashes it.
func hashNew(next string, deps Deps) (string, AccountResult, bool) {
	if s := password.AssessStrength(next); !s.OK {
		return "", AccountResult{Failure: AccountFailureWeakPassword, Field: "new_password", Violations: s.Violations}, false
	}
	hash, err := deps.Hasher.Hash(next)
	switch {
	case errors.Is(err, password.ErrInvalidInput):
		return "", AccountResult{
			Failure:    AccountFailureWeakPassword,
			Err:        err,
			Field:      "new_password",
			Violations: []string{"must be at most 72 bytes when UTF-8 encoded"},
		}, false
	case err != nil:
		return "", AccountResult{Failure: AccountFailureHash, Err: err}, false
	}
	return hash, AccountResult{}, true
}

func updateFailure(err error) AccountResult {
	if errors.Is(err, store.ErrNotFound) {
		return AccountResult{Failure: AccountFailureNotFound, Err: err}
	}
	return AccountResult{Failure: AccountFailureStore, Err: err}
}

// RunChangePassword replaces the password after verifying the current one and
// then revokes every session of the account.
func RunChangePassword(ctx context.Context, accountID, current, next string, deps Deps) AccountResult {
	switch {
	case current == "":
		return AccountResult{Failure: AccountFailureMissingField, Field: "current_password"}
	case next == "":
		return AccountResult{Failure: AccountFailureMissingField, Field: "new_password"}
	}
	a, res, ok := loadAccount(ctx, accountID, deps)
	if !ok {
		return res
	}
	if !a.HasPassword() {
		return AccountResult{Failure: AccountFailurePasswordRequired, Account: a}
	}

	match, err := deps.Hasher.Compare(current, a.PasswordHash)
	if err != nil {
		deps.warn("authcore: stored password hash could not be compared", "account_id", a.ID, "error", err)
	}
	if !match {
		return AccountResult{Failure: AccountFailureWrongPassword, Field: "current_password", Account: a}
	}
	if current == next {
		return AccountResult{Failure: AccountFailurePasswordReuse, Field: "new_password", Account: a}
	}

	hash, res, ok := hashNew(next, deps)
	if !ok {
		return res
	}
	updated, err := deps.Store.UpdateAccount(ctx, a.ID, store.AccountUpdate{PasswordHash: &hash})
	if err != nil {
		return updateFailure(err)
	}

	n, err := deps.Store.RevokeAllRefreshTokens(ctx, a.ID, deps.now())
	if err != nil {
		return AccountResult{Failure: AccountFailureRevoke, Err: err, Account: updated}
	}
	return AccountResult{Account: updated, Revoked: n}
}

// RunSetPassword gives a password to an account that has none, typically one
// created through a provider, so it can later be unlinked.
func RunSetPassword(ctx context.Context, accountID, next string, deps Deps) AccountResult {
	if next == "" {
		return AccountResult{Failure: AccountFailureMissingField, Field: "new_password"}
	}
	a, res, ok := loadAccount(ctx, accountID, deps)
	if !ok {
		return res
	}
	if a.HasPassword() {
		return AccountResult{Failure: AccountFailurePasswordAlreadySet, Account: a}
	}

	hash, res, ok := hashNew(next, deps)
	if !ok {
		return res
	}
	updated, err := deps.Store.UpdateAccount(ctx, a.ID, store.AccountUpdate{PasswordHash: &hash})
	if err != nil {
		return updateFailure(err)
	}
	return AccountResult{Account: updated}
}

// RunUnlinkFederated detaches the provider identity and turns the account back
// into a local one. A password must exist first.
func RunUnlinkFederated(ctx context.Context, accountID string, deps Deps) AccountResult {
	a, res, ok := loadAccount(ctx, accountID, deps)
	if !ok {
		return res
	}
	if !a.Federated() {
		return AccountResult{Failure: AccountFailureNotLinked, Account: a}
	}
	if !a.HasPassword() {
		return AccountResult{Failure: AccountFailurePasswordRequired, Account: a, Provider: a.AuthOrigin}
	}

	origin, none := store.OriginLocal, ""
	updated, err := deps.Store.UpdateAccount(ctx, a.ID, store.AccountUpdate{AuthOrigin: &origin, FederatedID: &none})
	if err != nil {
		return updateFailure(err)
	}
	return AccountResult{Account: updated, Provider: a.AuthOrigin}
}

// RunDeleteAccount removes the account; its refresh tokens go with it.
func RunDeleteAccount(ctx context.Context, accountID string, deps Deps) AccountResult {
	if accountID == "" {
		return AccountResult{Failure: AccountFailureMissingField, Field: "account_id"}
	}
	a, err := deps.Store.DeleteAccount(ctx, accountID)
	if err != nil {
		return updateFailure(err)
	}
	return AccountResult{Account: a}
}
