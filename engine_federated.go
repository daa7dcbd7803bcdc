package authcore

import (
	"context"
	"strings"

	"github.com/MrEthical07/authcore/internal/flows"
	"github.com/MrEthical07/authcore/internal/ids"
)

// FederatedSignIn signs in with an identity a provider has already verified,
// linking or creating the account as needed.
//
// The identity is resolved in order: an account already linked to
// (provider, profile.ExternalID); then a local account with the same email,
// which becomes linked; then a new account with no password. An email that
// belongs to an account linked to another identity fails with KindConflict
// and reason [ErrProviderConflict]. Missing email or external id is
// KindUnauthorized: the provider did not vouch for enough.
func (e *Engine) FederatedSignIn(ctx context.Context, provider string, profile FederatedProfile) (*FederatedResult, error) {
	const op = "federated_sign_in"
	if err := e.ready(op); err != nil {
		return nil, err
	}

	res := flows.RunFederatedSignIn(ctx, flows.FederatedInput{
		Provider:   provider,
		ExternalID: profile.ExternalID,
		Email:      profile.Email,
		GivenName:  profile.GivenName,
		FamilyName: profile.FamilyName,
		AvatarURL:  profile.AvatarURL,
	}, e.deps())

	if err := federatedError(op, res); err != nil {
		if res.Failure == flows.FederatedFailureProviderConflict {
			e.metricInc(MetricFederatedConflict)
		}
		e.emitAudit(ctx, auditRecord{
			eventType: AuditFederatedFailure,
			err:       err,
			metadata:  providerMetadata(res.Provider, ""),
		})
		return nil, err
	}

	outcome := FederatedOutcome(res.Outcome)
	switch outcome {
	case FederatedSignedIn:
		e.metricInc(MetricFederatedSignIn)
	case FederatedLinked:
		e.metricInc(MetricFederatedLinked)
	case FederatedCreated:
		e.metricInc(MetricFederatedCreated)
	}
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditRecord{
		eventType: AuditFederatedSignIn,
		success:   true,
		accountID: res.Account.ID,
		token:     ids.Fingerprint(res.Pair.Digest),
		metadata:  providerMetadata(res.Provider, outcome.String()),
	})

	return &FederatedResult{
		AuthResult: *authResult(res.Account, res.Pair),
		Provider:   res.Provider,
		Outcome:    outcome,
	}, nil
}

func federatedError(op string, res flows.FederatedResult) error {
	switch res.Failure {
	case flows.FederatedFailureNone:
		return nil
	case flows.FederatedFailureInvalidProvider:
		return invalidField(op, res.Field)
	case flows.FederatedFailureMissingIdentity:
		return &Error{Op: op, Kind: KindUnauthorized, Field: res.Field, Msg: "provider identity is incomplete"}
	case flows.FederatedFailureProviderConflict:
		return newError(op, KindConflict, ErrProviderConflict, res.Err)
	case flows.FederatedFailureEmailTaken:
		return newError(op, KindConflict, ErrEmailTaken, res.Err)
	default:
		return internalError(op, res.Err)
	}
}

// UnlinkFederated detaches the provider identity from the account, which
// becomes a local account. The account must already have a password
// ([Engine.SetPassword]); otherwise it fails with KindConflict and reason
// [ErrPasswordRequired]. Unlinking a local account is KindConflict with reason
// [ErrNotLinked].
func (e *Engine) UnlinkFederated(ctx context.Context, accountID string) (*Account, error) {
	const op = "unlink"
	if err := e.ready(op); err != nil {
		return nil, err
	}

	res := flows.RunUnlinkFederated(ctx, strings.TrimSpace(accountID), e.deps())
	if err := accountError(op, res); err != nil {
		e.emitAudit(ctx, auditRecord{
			eventType: AuditFederatedUnlink,
			accountID: accountID,
			err:       err,
			metadata:  providerMetadata(res.Provider, ""),
		})
		return nil, err
	}

	e.metricInc(MetricFederatedUnlinked)
	e.emitAudit(ctx, auditRecord{
		eventType: AuditFederatedUnlink,
		success:   true,
		accountID: res.Account.ID,
		metadata:  providerMetadata(res.Provider, ""),
	})
	return accountView(res.Account), nil
}

func providerMetadata(provider, outcome string) func() map[string]string {
	return func() map[string]string {
		m := make(map[string]string, 2)
		if provider != "" {
			m["provider"] = provider
		}
		if outcome != "" {
			m["outcome"] = outcome
		}
		return m
	}
}
