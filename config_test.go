package authcore

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/authcore/password"
	"github.com/MrEthical07/authcore/store/memory"
)

func TestDefaultConfigNeedsOnlySecrets(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	requireKind(t, err, KindConfiguration)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration sentinel, got %v", err)
	}

	cfg = testConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected test config to be valid, got %v", err)
	}
}

func TestConfigValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short access secret", func(c *Config) { c.Tokens.AccessSecret = []byte("short") }, "AccessSecret"},
		{"missing refresh secret", func(c *Config) { c.Tokens.RefreshSecret = nil }, "RefreshSecret"},
		{"shared secret", func(c *Config) { c.Tokens.RefreshSecret = c.Tokens.AccessSecret }, "must differ"},
		{"empty issuer", func(c *Config) { c.Tokens.Issuer = " " }, "Issuer"},
		{"empty audience", func(c *Config) { c.Tokens.Audience = "" }, "Audience"},
		{"zero access ttl", func(c *Config) { c.Tokens.AccessTTL = 0 }, "AccessTTL"},
		{"refresh not longer", func(c *Config) { c.Tokens.RefreshTTL = c.Tokens.AccessTTL }, "longer than AccessTTL"},
		{"negative leeway", func(c *Config) { c.Tokens.Leeway = -time.Second }, "Leeway"},
		{"huge leeway", func(c *Config) { c.Tokens.Leeway = time.Hour }, "Leeway"},
		{"unknown algorithm", func(c *Config) { c.Password.Algorithm = "md5" }, "Algorithm"},
		{"bcrypt cost", func(c *Config) { c.Password.BcryptCost = 40 }, "BcryptCost"},
		{"audit buffer", func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 }, "BufferSize"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			requireKind(t, err, KindConfiguration)
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	_, err := New().WithConfig(DefaultConfig()).WithStore(nil).Build()
	requireKind(t, err, KindConfiguration)

	cfg := testConfig()
	cfg.Tokens.RefreshTTL = time.Minute
	clock := newTestClock()
	_, err = New().WithConfig(cfg).WithStore(memoryStoreFor(clock)).Build()
	requireKind(t, err, KindConfiguration)
}

func TestBuilderCannotBeReused(t *testing.T) {
	clock := newTestClock()
	b := New().WithConfig(testConfig()).WithStore(memoryStoreFor(clock))
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestBuildCopiesSecrets(t *testing.T) {
	cfg := testConfig()
	clock := newTestClock()
	engine, err := New().WithConfig(cfg).WithStore(memoryStoreFor(clock)).WithClock(clock.Now).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer engine.Close()

	res := registerTestAccount(t, engine, "a@x.com")
	for i := range cfg.Tokens.AccessSecret {
		cfg.Tokens.AccessSecret[i] = 'x'
	}
	if _, err := engine.ValidateAccess(t.Context(), res.AccessToken); err != nil {
		t.Fatalf("mutating the caller's config must not affect the engine: %v", err)
	}
}

func TestArgon2EngineUpgradesBcryptHashes(t *testing.T) {
	clock := newTestClock()
	s := memoryStoreFor(clock)

	bcryptEngine := newTestEngineWithStore(t, s, clock)
	registerTestAccount(t, bcryptEngine, "a@x.com")

	argonEngine := newTestEngineWithStore(t, s, clock, withConfig(func(c *Config) {
		c.Password.Algorithm = password.AlgorithmArgon2id
		c.Password.Argon2 = password.Argon2Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	}))
	if _, err := argonEngine.Login(t.Context(), "a@x.com", testPassword); err != nil {
		t.Fatalf("login: %v", err)
	}

	stored, _ := s.FindAccountByEmail(t.Context(), "a@x.com")
	if !strings.HasPrefix(stored.PasswordHash, "$argon2id$") {
		t.Fatalf("expected hash to be upgraded, got %q", stored.PasswordHash[:7])
	}
	if argonEngine.MetricsSnapshot().Counters[MetricPasswordHashUpgraded] != 1 {
		t.Fatal("expected upgrade to be counted")
	}
	// The old engine still verifies the upgraded hash.
	if _, err := bcryptEngine.Login(t.Context(), "a@x.com", testPassword); err != nil {
		t.Fatalf("bcrypt engine login after upgrade: %v", err)
	}
}

func TestLintFlagsRiskySettings(t *testing.T) {
	cfg := testConfig()
	cfg.Password.BcryptCost = password.DefaultBcryptCost
	if codes := cfg.Lint().Codes(); len(codes) != 0 {
		t.Fatalf("expected default settings to lint clean, got %v", codes)
	}

	cfg.Tokens.AccessTTL = time.Hour
	cfg.Tokens.RefreshTTL = 90 * 24 * time.Hour
	cfg.Tokens.Leeway = 90 * time.Second
	cfg.Password.BcryptCost = 4
	cfg.Password.UpgradeOnLogin = false
	cfg.Audit.Enabled = true
	cfg.Audit.DropIfFull = false

	want := []string{
		"access_ttl_long",
		"refresh_ttl_long",
		"leeway_large",
		"bcrypt_cost_low",
		"hash_upgrade_disabled",
		"audit_blocking",
	}
	if got := cfg.Lint().Codes(); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func memoryStoreFor(clock *testClock) *memory.Store {
	return memory.New(memory.WithClock(clock.Now))
}
