package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Type names an audited engine outcome. Values are stable and safe to index.
type Type string

const (
	TypeRegisterSuccess       Type = "register_success"
	TypeRegisterFailure       Type = "register_failure"
	TypeLoginSuccess          Type = "login_success"
	TypeLoginFailure          Type = "login_failure"
	TypeRefreshSuccess        Type = "refresh_success"
	TypeRefreshInvalid        Type = "refresh_invalid"
	TypeRefreshReuseDetected  Type = "refresh_reuse_detected"
	TypeLogoutSession         Type = "logout_session"
	TypeLogoutFailure         Type = "logout_failure"
	TypeLogoutAll             Type = "logout_all"
	TypePurge                 Type = "purge"
	TypeFederatedSignIn       Type = "federated_sign_in"
	TypeFederatedFailure      Type = "federated_failure"
	TypeFederatedUnlink       Type = "federated_unlink"
	TypePasswordChangeSuccess Type = "password_change_success"
	TypePasswordChangeFailure Type = "password_change_failure"
	TypePasswordSet           Type = "password_set"
	TypeAccountDeleted        Type = "account_deleted"
)

// Code is the low-cardinality failure tag of an event. It never carries
// caller input.
type Code string

const (
	CodeInvalidInput       Code = "invalid_input"
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeFederatedOnly      Code = "federated_only"
	CodeUnauthorized       Code = "unauthorized"
	CodeInvalidToken       Code = "invalid_token"
	CodeExpired            Code = "expired"
	CodeRefreshReuse       Code = "refresh_reuse"
	CodeAlreadyRevoked     Code = "already_revoked"
	CodeDuplicate          Code = "duplicate"
	CodeProviderConflict   Code = "provider_conflict"
	CodePasswordPolicy     Code = "password_policy"
	CodePasswordReuse      Code = "password_reuse"
	CodeConflict           Code = "conflict"
	CodeNotFound           Code = "not_found"
	CodeInternal           Code = "internal_error"
)

// Event is one security-relevant outcome. Token values never appear here;
// Token carries the fingerprint of the refresh token involved, if any.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      Type              `json:"type"`
	AccountID string            `json:"account_id,omitempty"`
	Token     string            `json:"token,omitempty"`
	IP        string            `json:"ip,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`
	Success   bool              `json:"success"`
	Error     Code              `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Sink receives emitted audit events. The dispatcher calls Emit from a single
// goroutine.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink hands events to a consumer through a buffered channel. Emit
// blocks while the channel is full.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{events: make(chan Event, max(buffer, 1))}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events is the receive side of the sink.
func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line. Failed writes are counted,
// not retried.
type JSONWriterSink struct {
	mu       sync.Mutex
	w        io.Writer
	failures atomic.Uint64
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{w: w}
}

func (s *JSONWriterSink) Emit(_ context.Context, event Event) {
	if s == nil || s.w == nil {
		return
	}
	line, err := json.Marshal(event)
	if err != nil {
		s.failures.Add(1)
		return
	}
	line = append(line, '\n')

	s.mu.Lock()
	_, err = s.w.Write(line)
	s.mu.Unlock()
	if err != nil {
		s.failures.Add(1)
	}
}

// Failures reports how many events could not be written.
func (s *JSONWriterSink) Failures() uint64 {
	if s == nil {
		return 0
	}
	return s.failures.Load()
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, event Event)

func (f SinkFunc) Emit(ctx context.Context, event Event) { f(ctx, event) }

// MultiSink fans an event out to every sink in order.
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, event Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(ctx, event)
		}
	}
}
