package authcore

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	internalaudit "github.com/MrEthical07/authcore/internal/audit"
	"github.com/MrEthical07/authcore/internal/flows"
	"github.com/MrEthical07/authcore/internal/ids"
	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/password"
	"github.com/MrEthical07/authcore/store"
)

// refreshInvalidMsg is the single caller-facing message for every refresh
// token that cannot be used, so callers learn nothing about why.
const refreshInvalidMsg = "refresh token is not valid"

// Engine defines a public type used by authcore APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config  Config
	store   store.CredentialStore
	codec   *jwt.Codec
	hasher  *password.Hasher
	logger  *slog.Logger
	now     func() time.Time
	metrics *Metrics
	audit   *internalaudit.Dispatcher
	dummy   string
}

// Close flushes queued audit events and stops the dispatcher. The store is
// owned by the caller and is not closed.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricAdd(id MetricID, n int64) {
	if e == nil || e.metrics == nil || n <= 0 {
		return
	}
	e.metrics.Add(id, uint64(n))
}

func (e *Engine) ready(op string) error {
	if e == nil || e.store == nil || e.codec == nil || e.hasher == nil {
		return &Error{Op: op, Kind: KindConfiguration, Reason: ErrEngineNotReady}
	}
	return nil
}

func (e *Engine) deps() flows.Deps {
	return flows.Deps{
		Store:              e.store,
		Codec:              e.codec,
		Hasher:             e.hasher,
		Now:                e.now,
		NewAccountID:       ids.NewAccountID,
		DummyHash:          e.dummy,
		UpgradeHashOnLogin: e.config.Password.UpgradeOnLogin,
		Warn:               e.logger.Warn,
	}
}

func authResult(a *store.Account, p flows.Pair) *AuthResult {
	return &AuthResult{
		Account:          accountView(a),
		AccessToken:      p.Access.Value,
		AccessExpiresAt:  p.Access.ExpiresAt,
		RefreshToken:     p.Refresh.Value,
		RefreshExpiresAt: p.Refresh.ExpiresAt,
	}
}

// Register creates a local account and starts its first session.
//
// All four request fields are required. The password must satisfy
// [password.AssessStrength]; every violated rule is reported in Error.Details.
// A taken email fails with KindConflict and reason [ErrEmailTaken].
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	const op = "register"
	if err := e.ready(op); err != nil {
		return nil, err
	}

	res := flows.RunRegister(ctx, flows.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, e.deps())

	if err := registerError(op, res); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			e.metricInc(MetricRegisterDuplicate)
		} else {
			e.metricInc(MetricRegisterFailure)
		}
		e.emitAudit(ctx, auditRecord{
			eventType: AuditRegisterFailure,
			err:       err,
			metadata:  fieldMetadata(res.Field),
		})
		return nil, err
	}

	e.metricInc(MetricRegisterSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditRecord{
		eventType: AuditRegisterSuccess,
		success:   true,
		accountID: res.Account.ID,
		token:     ids.Fingerprint(res.Pair.Digest),
	})
	return authResult(res.Account, res.Pair), nil
}

func registerError(op string, res flows.RegisterResult) error {
	switch res.Failure {
	case flows.RegisterFailureNone:
		return nil
	case flows.RegisterFailureMissingField:
		return invalidField(op, res.Field)
	case flows.RegisterFailureInvalidEmail:
		return &Error{Op: op, Kind: KindInvalidInput, Field: "email", Msg: "invalid email address"}
	case flows.RegisterFailureWeakPassword:
		return &Error{Op: op, Kind: KindInvalidInput, Reason: ErrWeakPassword, Field: "password", Details: res.Violations, Err: res.Err}
	case flows.RegisterFailureDuplicate:
		return newError(op, KindConflict, ErrEmailTaken, res.Err)
	default:
		return internalError(op, res.Err)
	}
}

// Login authenticates a local account by email and password and starts a new
// session.
//
// Unknown emails and wrong passwords fail identically with KindUnauthorized
// and reason [ErrInvalidCredentials]. Accounts without a password that sign in
// through a provider fail with reason [ErrFederatedOnly].
func (e *Engine) Login(ctx context.Context, email, plaintext string) (*AuthResult, error) {
	const op = "login"
	if err := e.ready(op); err != nil {
		return nil, err
	}

	res := flows.RunLogin(ctx, email, plaintext, e.deps())
	if err := loginError(op, res); err != nil {
		if errors.Is(err, ErrFederatedOnly) {
			e.metricInc(MetricLoginFederatedOnly)
		}
		e.metricInc(MetricLoginFailure)
		accountID := ""
		if res.Account != nil {
			accountID = res.Account.ID
		}
		e.emitAudit(ctx, auditRecord{
			eventType: AuditLoginFailure,
			accountID: accountID,
			err:       err,
			metadata: func() map[string]string {
				if res.Reason == "" {
					return nil
				}
				return map[string]string{"reason": res.Reason}
			},
		})
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionCreated)
	if res.Upgraded {
		e.metricInc(MetricPasswordHashUpgraded)
	}
	e.emitAudit(ctx, auditRecord{
		eventType: AuditLoginSuccess,
		success:   true,
		accountID: res.Account.ID,
		token:     ids.Fingerprint(res.Pair.Digest),
	})
	return authResult(res.Account, res.Pair), nil
}

func loginError(op string, res flows.LoginResult) error {
	switch res.Failure {
	case flows.LoginFailureNone:
		return nil
	case flows.LoginFailureMissingField:
		return invalidField(op, res.Field)
	case flows.LoginFailureInvalidCredentials:
		return newError(op, KindUnauthorized, ErrInvalidCredentials, nil)
	case flows.LoginFailureFederatedOnly:
		return newError(op, KindUnauthorized, ErrFederatedOnly, nil)
	default:
		return internalError(op, res.Err)
	}
}

// Refresh rotates a refresh token. The presented token is revoked and a new
// pair for the same account is returned.
//
// Exactly one of any number of concurrent calls presenting the same token
// succeeds; the others fail with KindUnauthorized and reason
// [ErrRefreshReuse]. Tokens that fail verification keep their specific kind
// (KindExpired, KindMalformed, KindWrongKind); [PublicKind] folds those into
// KindUnauthorized for clients.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	const op = "refresh"
	if err := e.ready(op); err != nil {
		return nil, err
	}

	res := flows.RunRefresh(ctx, refreshToken, e.deps())
	if err := refreshError(op, res); err != nil {
		e.metricInc(MetricRefreshFailure)
		event := AuditRefreshInvalid
		switch res.Failure {
		case flows.RefreshFailureRevoked:
			e.metricInc(MetricRefreshReplayRejected)
			event = AuditRefreshReuseDetected
		case flows.RefreshFailureReuse:
			e.metricInc(MetricRefreshReuseDetected)
			event = AuditRefreshReuseDetected
		case flows.RefreshFailureIssue:
			// The old token is already revoked; the caller holds nothing usable.
			e.metricInc(MetricSessionRevoked)
			e.logger.Warn("authcore: refresh token revoked without replacement",
				"account_id", res.AccountID, "token", res.Fingerprint, "error", res.Err)
		}
		e.emitAudit(ctx, auditRecord{
			eventType: event,
			accountID: res.AccountID,
			token:     res.Fingerprint,
			err:       err,
		})
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.metricInc(MetricSessionRevoked)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditRecord{
		eventType: AuditRefreshSuccess,
		success:   true,
		accountID: res.Account.ID,
		token:     res.Fingerprint,
		metadata: func() map[string]string {
			return map[string]string{"issued": ids.Fingerprint(res.Pair.Digest)}
		},
	})
	return authResult(res.Account, res.Pair), nil
}

func refreshError(op string, res flows.RefreshResult) error {
	switch res.Failure {
	case flows.RefreshFailureNone:
		return nil
	case flows.RefreshFailureEmpty:
		return invalidField(op, "refresh_token")
	case flows.RefreshFailureMalformed:
		return &Error{Op: op, Kind: KindMalformed, Msg: refreshInvalidMsg, Err: res.Err}
	case flows.RefreshFailureExpired:
		return &Error{Op: op, Kind: KindExpired, Msg: refreshInvalidMsg, Err: res.Err}
	case flows.RefreshFailureWrongKind:
		return &Error{Op: op, Kind: KindWrongKind, Msg: refreshInvalidMsg, Err: res.Err}
	case flows.RefreshFailureUnknown, flows.RefreshFailureInactive:
		return &Error{Op: op, Kind: KindUnauthorized, Msg: refreshInvalidMsg}
	case flows.RefreshFailureRevoked, flows.RefreshFailureReuse:
		return &Error{Op: op, Kind: KindUnauthorized, Reason: ErrRefreshReuse, Msg: refreshInvalidMsg}
	default:
		return internalError(op, res.Err)
	}
}

// Logout revokes exactly the presented refresh token. Other sessions of the
// account are untouched.
//
// An unknown token is KindUnauthorized; one already revoked, including by a
// concurrent call, is KindConflict with reason [ErrAlreadyRevoked]; one past
// its expiry is KindExpired.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	const op = "logout"
	if err := e.ready(op); err != nil {
		return err
	}

	res := flows.RunLogout(ctx, refreshToken, e.deps())
	if err := logoutError(op, res); err != nil {
		e.metricInc(MetricLogoutFailure)
		e.emitAudit(ctx, auditRecord{
			eventType: AuditLogoutFailure,
			accountID: res.AccountID,
			token:     res.Fingerprint,
			err:       err,
		})
		return err
	}

	e.metricInc(MetricLogout)
	e.metricInc(MetricSessionRevoked)
	e.emitAudit(ctx, auditRecord{
		eventType: AuditLogoutSession,
		success:   true,
		accountID: res.AccountID,
		token:     res.Fingerprint,
	})
	return nil
}

func logoutError(op string, res flows.LogoutResult) error {
	switch res.Failure {
	case flows.LogoutFailureNone:
		return nil
	case flows.LogoutFailureEmpty:
		return invalidField(op, "refresh_token")
	case flows.LogoutFailureUnknown:
		return &Error{Op: op, Kind: KindUnauthorized, Msg: refreshInvalidMsg}
	case flows.LogoutFailureAlreadyRevoked:
		return newError(op, KindConflict, ErrAlreadyRevoked, nil)
	case flows.LogoutFailureExpired:
		return &Error{Op: op, Kind: KindExpired, Msg: "refresh token expired"}
	default:
		return internalError(op, res.Err)
	}
}

// RevokeAllSessions revokes every active refresh token of the account and
// reports how many were revoked. Access tokens already issued stay valid until
// they expire.
func (e *Engine) RevokeAllSessions(ctx context.Context, accountID string) (int64, error) {
	const op = "revoke_all"
	if err := e.ready(op); err != nil {
		return 0, err
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return 0, invalidField(op, "account_id")
	}

	a, err := e.store.FindAccountByID(ctx, accountID)
	switch {
	case err != nil:
		return 0, internalError(op, err)
	case a == nil:
		return 0, &Error{Op: op, Kind: KindNotFound, Msg: "account not found"}
	}

	n, err := e.store.RevokeAllRefreshTokens(ctx, accountID, e.now())
	if err != nil {
		return 0, internalError(op, err)
	}

	e.metricInc(MetricLogoutAll)
	e.metricAdd(MetricSessionRevoked, n)
	e.emitAudit(ctx, auditRecord{
		eventType: AuditLogoutAll,
		success:   true,
		accountID: accountID,
		metadata:  countMetadata(n),
	})
	return n, nil
}

// PurgeExpired deletes refresh token records that are revoked or expired.
// Active records are never touched, so running it repeatedly or concurrently
// with other operations is safe.
func (e *Engine) PurgeExpired(ctx context.Context) (int64, error) {
	const op = "purge"
	if err := e.ready(op); err != nil {
		return 0, err
	}

	n, err := e.store.PurgeExpiredOrRevoked(ctx, e.now())
	if err != nil {
		return 0, internalError(op, err)
	}

	e.metricInc(MetricPurgeRun)
	e.metricAdd(MetricPurgedTokens, n)
	e.logger.Info("authcore: purged refresh tokens", "count", n)
	e.emitAudit(ctx, auditRecord{
		eventType: AuditPurge,
		success:   true,
		metadata:  countMetadata(n),
	})
	return n, nil
}

// ValidateAccess verifies an access token without touching the store. A
// revoked session's access token stays valid until it expires.
func (e *Engine) ValidateAccess(ctx context.Context, accessToken string) (*Subject, error) {
	const op = "validate"
	if err := e.ready(op); err != nil {
		return nil, err
	}
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, invalidField(op, "access_token")
	}

	start := time.Now()
	claims, err := e.codec.VerifyAccess(accessToken)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricValidateLatency, time.Since(start))
	}
	if err != nil {
		return nil, tokenError(op, err, "access token is not valid")
	}

	subject := claims.Identity()
	return &subject, nil
}

func tokenError(op string, err error, msg string) *Error {
	kind := KindMalformed
	switch {
	case errors.Is(err, jwt.ErrExpired):
		kind = KindExpired
	case errors.Is(err, jwt.ErrWrongKind):
		kind = KindWrongKind
	}
	return &Error{Op: op, Kind: kind, Msg: msg, Err: err}
}

func fieldMetadata(field string) func() map[string]string {
	if field == "" {
		return nil
	}
	return func() map[string]string {
		return map[string]string{"field": field}
	}
}

func countMetadata(n int64) func() map[string]string {
	return func() map[string]string {
		return map[string]string{"count": strconv.FormatInt(n, 10)}
	}
}
