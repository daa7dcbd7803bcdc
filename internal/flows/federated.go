package flows

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/authcore/store"
)

// FederatedFailureKind classifies federated sign-in failures for root-level mapping.
type FederatedFailureKind int

const (
	FederatedFailureNone FederatedFailureKind = iota
	FederatedFailureInvalidProvider
	FederatedFailureMissingIdentity
	FederatedFailureProviderConflict
	FederatedFailureEmailTaken
	FederatedFailureStore
	FederatedFailureIssue
)

// FederatedOutcome says how the account was resolved.
type FederatedOutcome int

const (
	FederatedSignedIn FederatedOutcome = iota + 1
	FederatedLinked
	FederatedCreated
)

// FederatedInput is a provider-verified identity.
type FederatedInput struct {
	Provider   string
	ExternalID string
	Email      string
	GivenName  string
	FamilyName string
	AvatarURL  string
}

// FederatedResult carries the resolved account and its new pair or failure metadata.
type FederatedResult struct {
	Failure  FederatedFailureKind
	Err      error
	Field    string
	Provider string
	Outcome  FederatedOutcome
	Account  *store.Account
	Pair     Pair
}

// NormalizeProvider lower-cases and trims a provider tag.
func NormalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

// RunFederatedSignIn resolves a provider identity to an account and starts a
// session. Resolution order: the (provider, external id) link, then the email
// of a local account (which gets linked), then a new account.
//
// An email already owned by an account linked elsewhere, to another provider
// or another identity at the same provider, is a conflict. Accounts are never
// merged or re-linked implicitly.
func RunFederatedSignIn(ctx context.Context, in FederatedInput, deps Deps) FederatedResult {
	provider := NormalizeProvider(in.Provider)
	res := FederatedResult{Provider: provider}
	if provider == "" || provider == store.OriginLocal {
		res.Failure, res.Field = FederatedFailureInvalidProvider, "provider"
		return res
	}

	in.ExternalID = strings.TrimSpace(in.ExternalID)
	in.Email = NormalizeEmail(in.Email)
	switch {
	case in.ExternalID == "":
		res.Failure, res.Field = FederatedFailureMissingIdentity, "external_id"
		return res
	case in.Email == "":
		res.Failure, res.Field = FederatedFailureMissingIdentity, "email"
		return res
	}

	account, outcome, failure, err := resolveFederated(ctx, provider, in, deps)
	if failure != FederatedFailureNone {
		res.Failure, res.Err = failure, err
		return res
	}
	res.Outcome = outcome
	res.Account = account

	pair, err := issuePair(ctx, deps, account)
	if err != nil {
		res.Failure, res.Err = FederatedFailureIssue, err
		return res
	}
	res.Pair = pair
	return res
}

func resolveFederated(ctx context.Context, provider string, in FederatedInput, deps Deps) (*store.Account, FederatedOutcome, FederatedFailureKind, error) {
	now := deps.now().UTC()

	linked, err := deps.Store.FindAccountByFederatedID(ctx, provider, in.ExternalID)
	if err != nil {
		return nil, 0, FederatedFailureStore, err
	}
	if linked != nil {
		return signInLinked(ctx, linked, in, now, deps)
	}

	byEmail, err := deps.Store.FindAccountByEmail(ctx, in.Email)
	if err != nil {
		return nil, 0, FederatedFailureStore, err
	}
	if byEmail != nil {
		if byEmail.FederatedID != "" {
			return nil, 0, FederatedFailureProviderConflict, nil
		}
		update := profileUpdate(byEmail, in)
		origin, externalID, confirmed := provider, in.ExternalID, true
		update.AuthOrigin = &origin
		update.FederatedID = &externalID
		update.EmailConfirmed = &confirmed
		update.LastAuthenticatedAt = &now

		account, err := deps.Store.UpdateAccount(ctx, byEmail.ID, update)
		switch {
		case errors.Is(err, store.ErrDuplicateFederatedID):
			// Another account claimed this identity concurrently.
			return nil, 0, FederatedFailureProviderConflict, err
		case err != nil:
			return nil, 0, FederatedFailureStore, err
		}
		return account, FederatedLinked, FederatedFailureNone, nil
	}

	created, err := deps.Store.CreateAccount(ctx, store.NewAccount{
		ID:             deps.NewAccountID(),
		Email:          in.Email,
		FirstName:      strings.TrimSpace(in.GivenName),
		LastName:       strings.TrimSpace(in.FamilyName),
		AvatarURL:      strings.TrimSpace(in.AvatarURL),
		AuthOrigin:     provider,
		FederatedID:    in.ExternalID,
		EmailConfirmed: true,
	})
	switch {
	case errors.Is(err, store.ErrDuplicateFederatedID):
		// A concurrent first sign-in with the same identity created it.
		linked, err := deps.Store.FindAccountByFederatedID(ctx, provider, in.ExternalID)
		switch {
		case err != nil:
			return nil, 0, FederatedFailureStore, err
		case linked == nil:
			return nil, 0, FederatedFailureStore, store.ErrNotFound
		}
		return signInLinked(ctx, linked, in, now, deps)
	case errors.Is(err, store.ErrDuplicateEmail):
		return nil, 0, FederatedFailureEmailTaken, err
	case err != nil:
		return nil, 0, FederatedFailureStore, err
	}

	account, err := deps.Store.UpdateAccount(ctx, created.ID, store.AccountUpdate{LastAuthenticatedAt: &now})
	if err != nil {
		return nil, 0, FederatedFailureStore, err
	}
	return account, FederatedCreated, FederatedFailureNone, nil
}

func signInLinked(ctx context.Context, a *store.Account, in FederatedInput, now time.Time, deps Deps) (*store.Account, FederatedOutcome, FederatedFailureKind, error) {
	update := profileUpdate(a, in)
	update.LastAuthenticatedAt = &now
	account, err := deps.Store.UpdateAccount(ctx, a.ID, update)
	if err != nil {
		return nil, 0, FederatedFailureStore, err
	}
	return account, FederatedSignedIn, FederatedFailureNone, nil
}

// profileUpdate fills profile fields the provider now supplies. Names are only
// set when empty; the avatar follows the provider.
func profileUpdate(a *store.Account, in FederatedInput) store.AccountUpdate {
	var u store.AccountUpdate
	if v := strings.TrimSpace(in.AvatarURL); v != "" && v != a.AvatarURL {
		u.AvatarURL = &v
	}
	if v := strings.TrimSpace(in.GivenName); v != "" && a.FirstName == "" {
		u.FirstName = &v
	}
	if v := strings.TrimSpace(in.FamilyName); v != "" && a.LastName == "" {
		u.LastName = &v
	}
	return u
}
