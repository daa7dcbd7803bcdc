package authcore

import (
	"io"
	"log/slog"
	"time"

	internalaudit "github.com/MrEthical07/authcore/internal/audit"
	"github.com/MrEthical07/authcore/internal/ids"
	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/password"
	"github.com/MrEthical07/authcore/store"
)

// Builder defines a public type used by authcore APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config    Config
	store     store.CredentialStore
	logger    *slog.Logger
	auditSink AuditSink
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the credential store. It is required.
func (b *Builder) WithStore(s store.CredentialStore) *Builder {
	b.store = s
	return b
}

// WithLogger sets the logger for best-effort paths. Nothing is logged by
// default.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock overrides the time source for token issuance, verification and
// every expiry comparison against the store.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the [Engine]. A Builder can
// be used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, &Error{Op: "build", Kind: KindConfiguration, Msg: "builder already used"}
	}
	if b.store == nil {
		return nil, &Error{Op: "build", Kind: KindConfiguration, Msg: "credential store required"}
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}
	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	codec, err := jwt.NewCodec(jwt.Config{
		AccessSecret:  cfg.Tokens.AccessSecret,
		RefreshSecret: cfg.Tokens.RefreshSecret,
		Issuer:        cfg.Tokens.Issuer,
		Audience:      cfg.Tokens.Audience,
		AccessTTL:     cfg.Tokens.AccessTTL,
		RefreshTTL:    cfg.Tokens.RefreshTTL,
		Leeway:        cfg.Tokens.Leeway,
		Now:           now,
	})
	if err != nil {
		return nil, &Error{Op: "build", Kind: KindConfiguration, Msg: "token codec", Err: err}
	}

	hasher, err := password.New(password.Config{
		Algorithm:  cfg.Password.Algorithm,
		MinLength:  cfg.Password.MinLength,
		BcryptCost: cfg.Password.BcryptCost,
		Argon2:     cfg.Password.Argon2,
	})
	if err != nil {
		return nil, &Error{Op: "build", Kind: KindConfiguration, Msg: "password hasher", Err: err}
	}

	// Unknown-email logins compare against this so they cost a real hash.
	dummy, err := hasher.Hash("authcore-dummy-" + ids.NewAccountID())
	if err != nil {
		return nil, &Error{Op: "build", Kind: KindConfiguration, Msg: "password hasher", Err: err}
	}

	engine := &Engine{
		config:  cfg,
		store:   b.store,
		codec:   codec,
		hasher:  hasher,
		logger:  logger,
		now:     now,
		metrics: NewMetrics(cfg.Metrics),
		dummy:   dummy,
	}
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
		OnDrop: func(event AuditEvent) {
			logger.Warn("authcore: audit event dropped", "type", event.Type)
		},
		OnSinkPanic: func(event AuditEvent, r any) {
			logger.Error("authcore: audit sink panicked", "type", event.Type, "panic", r)
		},
	}, b.auditSink)

	b.built = true

	return engine, nil
}
