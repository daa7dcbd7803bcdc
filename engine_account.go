package authcore

import (
	"context"
	"strings"

	"github.com/MrEthical07/authcore/internal/flows"
)

// ChangePassword replaces the password of an account after checking the
// current one, then revokes every session of the account so other devices
// have to sign in again.
//
// If the password is changed but revocation fails, the error has KindInternal
// and the new password is already in effect.
func (e *Engine) ChangePassword(ctx context.Context, accountID, current, next string) error {
	const op = "change_password"
	if err := e.ready(op); err != nil {
		return err
	}

	res := flows.RunChangePassword(ctx, strings.TrimSpace(accountID), current, next, e.deps())
	if err := accountError(op, res); err != nil {
		switch res.Failure {
		case flows.AccountFailureWrongPassword:
			e.metricInc(MetricPasswordChangeInvalidOld)
		case flows.AccountFailurePasswordReuse:
			e.metricInc(MetricPasswordChangeReuseRejected)
		case flows.AccountFailureRevoke:
			e.logger.Warn("authcore: password changed but sessions were not revoked",
				"account_id", accountID, "error", res.Err)
		}
		e.emitAudit(ctx, auditRecord{
			eventType: AuditPasswordChangeFailure,
			accountID: accountID,
			err:       err,
			metadata:  fieldMetadata(res.Field),
		})
		return err
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.metricAdd(MetricSessionRevoked, res.Revoked)
	e.emitAudit(ctx, auditRecord{
		eventType: AuditPasswordChangeSuccess,
		success:   true,
		accountID: res.Account.ID,
		metadata:  countMetadata(res.Revoked),
	})
	return nil
}

// SetPassword gives a password to an account that has none, such as one
// created through a provider. Accounts that already have a password fail with
// KindConflict and reason [ErrPasswordAlreadySet]; use [Engine.ChangePassword].
func (e *Engine) SetPassword(ctx context.Context, accountID, next string) error {
	const op = "set_password"
	if err := e.ready(op); err != nil {
		return err
	}

	res := flows.RunSetPassword(ctx, strings.TrimSpace(accountID), next, e.deps())
	if err := accountError(op, res); err != nil {
		e.emitAudit(ctx, auditRecord{
			eventType: AuditPasswordSet,
			accountID: accountID,
			err:       err,
			metadata:  fieldMetadata(res.Field),
		})
		return err
	}

	e.metricInc(MetricPasswordSet)
	e.emitAudit(ctx, auditRecord{
		eventType: AuditPasswordSet,
		success:   true,
		accountID: res.Account.ID,
	})
	return nil
}

// DeleteAccount removes the account together with all of its refresh tokens.
func (e *Engine) DeleteAccount(ctx context.Context, accountID string) error {
	const op = "delete_account"
	if err := e.ready(op); err != nil {
		return err
	}

	res := flows.RunDeleteAccount(ctx, strings.TrimSpace(accountID), e.deps())
	if err := accountError(op, res); err != nil {
		return err
	}

	e.metricInc(MetricAccountDeleted)
	e.emitAudit(ctx, auditRecord{
		eventType: AuditAccountDeleted,
		success:   true,
		accountID: res.Account.ID,
	})
	return nil
}

// GetAccount returns the caller-facing view of an account.
func (e *Engine) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	const op = "get_account"
	if err := e.ready(op); err != nil {
		return nil, err
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, invalidField(op, "account_id")
	}

	a, err := e.store.FindAccountByID(ctx, accountID)
	switch {
	case err != nil:
		return nil, internalError(op, err)
	case a == nil:
		return nil, &Error{Op: op, Kind: KindNotFound, Msg: "account not found"}
	}
	return accountView(a), nil
}

// Peek decodes a token without verifying it. The result is for display and
// debugging only and must never drive an authorization decision.
func (e *Engine) Peek(token string) (*Claims, bool) {
	if e == nil || e.codec == nil {
		return nil, false
	}
	return e.codec.Peek(token)
}

func accountError(op string, res flows.AccountResult) error {
	switch res.Failure {
	case flows.AccountFailureNone:
		return nil
	case flows.AccountFailureMissingField:
		return invalidField(op, res.Field)
	case flows.AccountFailureNotFound:
		return &Error{Op: op, Kind: KindNotFound, Msg: "account not found", Err: res.Err}
	case flows.AccountFailureWrongPassword:
		return &Error{Op: op, Kind: KindUnauthorized, Field: res.Field, Msg: "current password is incorrect"}
	case flows.AccountFailureWeakPassword:
		return &Error{Op: op, Kind: KindInvalidInput, Reason: ErrWeakPassword, Field: res.Field, Details: res.Violations, Err: res.Err}
	case flows.AccountFailurePasswordReuse:
		return &Error{Op: op, Kind: KindInvalidInput, Reason: ErrPasswordReuse, Field: res.Field}
	case flows.AccountFailurePasswordRequired:
		return newError(op, KindConflict, ErrPasswordRequired, nil)
	case flows.AccountFailurePasswordAlreadySet:
		return newError(op, KindConflict, ErrPasswordAlreadySet, nil)
	case flows.AccountFailureNotLinked:
		return newError(op, KindConflict, ErrNotLinked, nil)
	default:
		return internalError(op, res.Err)
	}
}
