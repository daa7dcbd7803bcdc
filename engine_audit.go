package authcore

import (
	"context"
	"errors"

	internalaudit "github.com/MrEthical07/authcore/internal/audit"
)

// AuditEventType names an audited engine outcome.
type AuditEventType = internalaudit.Type

// Audit event types emitted by the engine.
const (
	AuditRegisterSuccess       = internalaudit.TypeRegisterSuccess
	AuditRegisterFailure       = internalaudit.TypeRegisterFailure
	AuditLoginSuccess          = internalaudit.TypeLoginSuccess
	AuditLoginFailure          = internalaudit.TypeLoginFailure
	AuditRefreshSuccess        = internalaudit.TypeRefreshSuccess
	AuditRefreshInvalid        = internalaudit.TypeRefreshInvalid
	AuditRefreshReuseDetected  = internalaudit.TypeRefreshReuseDetected
	AuditLogoutSession         = internalaudit.TypeLogoutSession
	AuditLogoutFailure         = internalaudit.TypeLogoutFailure
	AuditLogoutAll             = internalaudit.TypeLogoutAll
	AuditPurge                 = internalaudit.TypePurge
	AuditFederatedSignIn       = internalaudit.TypeFederatedSignIn
	AuditFederatedFailure      = internalaudit.TypeFederatedFailure
	AuditFederatedUnlink       = internalaudit.TypeFederatedUnlink
	AuditPasswordChangeSuccess = internalaudit.TypePasswordChangeSuccess
	AuditPasswordChangeFailure = internalaudit.TypePasswordChangeFailure
	AuditPasswordSet           = internalaudit.TypePasswordSet
	AuditAccountDeleted        = internalaudit.TypeAccountDeleted
)

// AuditErrorCode is the low-cardinality failure tag stored in [AuditEvent].Error.
type AuditErrorCode = internalaudit.Code

type auditRecord struct {
	eventType AuditEventType
	success   bool
	accountID string
	// token is a refresh token fingerprint, never a value.
	token    string
	err      error
	metadata func() map[string]string
}

func (e *Engine) emitAudit(ctx context.Context, r auditRecord) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if r.metadata != nil {
		metadata = r.metadata()
	}

	event := AuditEvent{
		Timestamp: e.now().UTC(),
		Type:      r.eventType,
		AccountID: r.accountID,
		Token:     r.token,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   r.success,
		Error:     auditErrorCode(r.err),
		Metadata:  metadata,
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return internalaudit.CodeInvalidCredentials
	case errors.Is(err, ErrFederatedOnly):
		return internalaudit.CodeFederatedOnly
	case errors.Is(err, ErrRefreshReuse):
		return internalaudit.CodeRefreshReuse
	case errors.Is(err, ErrAlreadyRevoked):
		return internalaudit.CodeAlreadyRevoked
	case errors.Is(err, ErrEmailTaken):
		return internalaudit.CodeDuplicate
	case errors.Is(err, ErrProviderConflict):
		return internalaudit.CodeProviderConflict
	case errors.Is(err, ErrWeakPassword):
		return internalaudit.CodePasswordPolicy
	case errors.Is(err, ErrPasswordReuse):
		return internalaudit.CodePasswordReuse
	}

	switch KindOf(err) {
	case KindInvalidInput:
		return internalaudit.CodeInvalidInput
	case KindUnauthorized:
		return internalaudit.CodeUnauthorized
	case KindMalformed, KindWrongKind:
		return internalaudit.CodeInvalidToken
	case KindExpired:
		return internalaudit.CodeExpired
	case KindConflict:
		return internalaudit.CodeConflict
	case KindNotFound:
		return internalaudit.CodeNotFound
	default:
		return internalaudit.CodeInternal
	}
}
