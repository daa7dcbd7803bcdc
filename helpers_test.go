package authcore

import (
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/authcore/store"
	"github.com/MrEthical07/authcore/store/memory"
)

const testPassword = "Aa1!aaaa"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Tokens.AccessSecret = []byte("access-secret-access-secret-0123456789")
	cfg.Tokens.RefreshSecret = []byte("refresh-secret-refresh-secret-0123456789")
	cfg.Password.BcryptCost = 4
	return cfg
}

type engineOption func(*Builder)

func withAuditSink(sink AuditSink) engineOption {
	return func(b *Builder) {
		cfg := b.config
		cfg.Audit.Enabled = true
		cfg.Audit.DropIfFull = false
		b.WithConfig(cfg).WithAuditSink(sink)
	}
}

func withConfig(mutate func(*Config)) engineOption {
	return func(b *Builder) {
		cfg := b.config
		mutate(&cfg)
		b.WithConfig(cfg)
	}
}

func newTestEngineWithStore(t *testing.T, s store.CredentialStore, clock *testClock, opts ...engineOption) *Engine {
	t.Helper()

	b := New().WithConfig(testConfig()).WithStore(s).WithClock(clock.Now)
	for _, opt := range opts {
		opt(b)
	}
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func newTestEngine(t *testing.T, opts ...engineOption) (*Engine, *memory.Store, *testClock) {
	t.Helper()

	clock := newTestClock()
	s := memory.New(memory.WithClock(clock.Now))
	return newTestEngineWithStore(t, s, clock, opts...), s, clock
}

func registerTestAccount(t *testing.T, e *Engine, email string) *AuthResult {
	t.Helper()

	res, err := e.Register(t.Context(), RegisterRequest{
		Email:     email,
		Password:  testPassword,
		FirstName: "A",
		LastName:  "B",
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return res
}

func requireKind(t *testing.T, err error, want Kind) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("expected kind %s, got %s (%v)", want, got, err)
	}
}
