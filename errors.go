package authcore

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies an engine failure. Callers branch on kinds, never on
// message text.
type Kind uint8

const (
	// KindInvalidInput marks a missing or syntactically invalid argument.
	KindInvalidInput Kind = iota + 1
	// KindUnauthorized marks failed authentication.
	KindUnauthorized
	// KindConflict marks a request that clashes with current state.
	KindConflict
	// KindExpired marks a token or record past its expiry.
	KindExpired
	// KindMalformed marks a token that could not be decoded or verified.
	KindMalformed
	// KindWrongKind marks an access token presented as a refresh token or the
	// reverse.
	KindWrongKind
	// KindNotFound marks a missing account.
	KindNotFound
	// KindConfiguration marks an unusable engine configuration.
	KindConfiguration
	// KindInternal marks a store, hashing or signing fault.
	KindInternal
)

var kindNames = [...]string{
	KindInvalidInput:  "invalid_input",
	KindUnauthorized:  "unauthorized",
	KindConflict:      "conflict",
	KindExpired:       "expired",
	KindMalformed:     "malformed",
	KindWrongKind:     "wrong_kind",
	KindNotFound:      "not_found",
	KindConfiguration: "configuration",
	KindInternal:      "internal",
}

// String returns the snake_case name of k.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

var (
	// ErrInvalidInput is an exported constant or variable used by the authentication engine.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is an exported constant or variable used by the authentication engine.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict is an exported constant or variable used by the authentication engine.
	ErrConflict = errors.New("conflict")
	// ErrExpired is an exported constant or variable used by the authentication engine.
	ErrExpired = errors.New("expired")
	// ErrMalformed is an exported constant or variable used by the authentication engine.
	ErrMalformed = errors.New("malformed token")
	// ErrWrongKind is an exported constant or variable used by the authentication engine.
	ErrWrongKind = errors.New("wrong token kind")
	// ErrNotFound is an exported constant or variable used by the authentication engine.
	ErrNotFound = errors.New("not found")
	// ErrConfiguration is an exported constant or variable used by the authentication engine.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrInternal is an exported constant or variable used by the authentication engine.
	ErrInternal = errors.New("internal error")
)

// Reasons refine a kind. Every *Error carries at most one.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrFederatedOnly      = errors.New("account signs in through an identity provider")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrPasswordReuse      = errors.New("new password must be different from current password")
	ErrAlreadyRevoked     = errors.New("refresh token already revoked")
	ErrRefreshReuse       = errors.New("refresh token reuse detected")
	ErrProviderConflict   = errors.New("email is linked to another identity provider")
	ErrPasswordRequired   = errors.New("set a password first")
	ErrPasswordAlreadySet = errors.New("password already set")
	ErrNotLinked          = errors.New("account is not linked to an identity provider")
	ErrEngineNotReady     = errors.New("engine not initialized")
)

var kindSentinels = [...]error{
	KindInvalidInput:  ErrInvalidInput,
	KindUnauthorized:  ErrUnauthorized,
	KindConflict:      ErrConflict,
	KindExpired:       ErrExpired,
	KindMalformed:     ErrMalformed,
	KindWrongKind:     ErrWrongKind,
	KindNotFound:      ErrNotFound,
	KindConfiguration: ErrConfiguration,
	KindInternal:      ErrInternal,
}

// Error is the single error type returned by [Engine] methods.
//
// errors.Is matches the kind sentinel (ErrConflict, ErrUnauthorized, ...),
// the reason sentinel (ErrAlreadyRevoked, ...) and anything in the wrapped
// cause chain.
type Error struct {
	// Op names the engine operation, e.g. "refresh".
	Op     string
	Kind   Kind
	Reason error
	// Field names the offending input for KindInvalidInput.
	Field string
	// Msg overrides the caller-facing message.
	Msg string
	// Details lists individual policy violations.
	Details []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.message())
	if e.Field != "" {
		b.WriteString(" (")
		b.WriteString(e.Field)
		b.WriteString(")")
	}
	if len(e.Details) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Details, "; "))
	}
	if e.Err != nil && e.Kind == KindInternal {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) message() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Reason != nil:
		return e.Reason.Error()
	case int(e.Kind) < len(kindSentinels) && kindSentinels[e.Kind] != nil:
		return kindSentinels[e.Kind].Error()
	}
	return "error"
}

// Unwrap exposes the kind sentinel, the reason and the cause.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 3)
	if int(e.Kind) < len(kindSentinels) && kindSentinels[e.Kind] != nil {
		out = append(out, kindSentinels[e.Kind])
	}
	if e.Reason != nil {
		out = append(out, e.Reason)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// KindOf returns the kind of the first *Error in err's chain, or zero.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

// PublicKind collapses the token kinds (expired, malformed, wrong kind) into
// KindUnauthorized, which is what a client should be told.
func PublicKind(err error) Kind {
	switch k := KindOf(err); k {
	case KindExpired, KindMalformed, KindWrongKind:
		return KindUnauthorized
	case 0:
		if err != nil {
			return KindInternal
		}
		return 0
	default:
		return k
	}
}

// HTTPStatus maps err to a response status code. A nil error is 200.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch PublicKind(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns a message safe to show to clients. Internal causes are
// never included.
func PublicMessage(err error) string {
	var ae *Error
	if !errors.As(err, &ae) {
		if err == nil {
			return ""
		}
		return ErrInternal.Error()
	}
	if ae.Kind == KindInternal || ae.Kind == KindConfiguration {
		return ErrInternal.Error()
	}
	msg := ae.message()
	if ae.Field != "" {
		msg += ": " + ae.Field
	}
	return msg
}

func newError(op string, kind Kind, reason, cause error) *Error {
	return &Error{Op: op, Kind: kind, Reason: reason, Err: cause}
}

func invalidField(op, field string) *Error {
	return &Error{Op: op, Kind: KindInvalidInput, Field: field, Msg: "missing or invalid field"}
}

func internalError(op string, cause error) *Error {
	return &Error{Op: op, Kind: KindInternal, Err: cause}
}
