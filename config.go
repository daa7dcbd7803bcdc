package authcore

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/authcore/password"
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Tokens   TokenConfig
	Password PasswordConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig holds the signing material and lifetimes of both token kinds.
// The two secrets must be independent; a leaked refresh secret must not let
// anyone mint access tokens.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Leeway        time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig selects the hashing algorithm and its cost.
type PasswordConfig struct {
	Algorithm  password.Algorithm
	MinLength  int
	BcryptCost int
	Argon2     password.Argon2Params

	// UpgradeOnLogin rehashes a password with the current settings after a
	// successful login whose stored hash is weaker or uses another algorithm.
	UpgradeOnLogin bool
}

// AuditConfig defines a public type used by authcore APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authcore APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns 15 minute access tokens, 7 day refresh tokens and
// bcrypt at cost 12. Secrets are left empty and must be supplied.
func DefaultConfig() Config {
	return Config{
		Tokens: TokenConfig{
			Issuer:     "authcore",
			Audience:   "authcore",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Password: PasswordConfig{
			Algorithm:      password.AlgorithmBcrypt,
			MinLength:      password.DefaultMinLength,
			BcryptCost:     password.DefaultBcryptCost,
			Argon2:         password.DefaultArgon2Params(),
			UpgradeOnLogin: true,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Tokens.AccessSecret = bytes.Clone(cfg.Tokens.AccessSecret)
	out.Tokens.RefreshSecret = bytes.Clone(cfg.Tokens.RefreshSecret)
	return out
}

/*
====================================
VALIDATION
====================================
*/

const (
	minSecretBytes = 32
	maxLeeway      = 2 * time.Minute
)

// Validate reports the first problem that would prevent [Builder.Build] from
// producing a working engine. The error has kind [KindConfiguration].
func (c *Config) Validate() error {
	if err := c.validate(); err != "" {
		return &Error{Op: "config", Kind: KindConfiguration, Msg: err}
	}
	return nil
}

func (c *Config) validate() string {
	t := c.Tokens
	switch {
	case len(t.AccessSecret) == 0:
		return "Tokens AccessSecret is required"
	case len(t.RefreshSecret) == 0:
		return "Tokens RefreshSecret is required"
	case len(t.AccessSecret) < minSecretBytes:
		return fmt.Sprintf("Tokens AccessSecret must be at least %d bytes", minSecretBytes)
	case len(t.RefreshSecret) < minSecretBytes:
		return fmt.Sprintf("Tokens RefreshSecret must be at least %d bytes", minSecretBytes)
	case bytes.Equal(t.AccessSecret, t.RefreshSecret):
		return "Tokens AccessSecret and RefreshSecret must differ"
	case strings.TrimSpace(t.Issuer) == "":
		return "Tokens Issuer is required"
	case strings.TrimSpace(t.Audience) == "":
		return "Tokens Audience is required"
	case t.AccessTTL <= 0:
		return "Tokens AccessTTL must be > 0"
	case t.RefreshTTL <= 0:
		return "Tokens RefreshTTL must be > 0"
	case t.RefreshTTL <= t.AccessTTL:
		return "Tokens RefreshTTL must be longer than AccessTTL"
	case t.Leeway < 0 || t.Leeway > maxLeeway:
		return fmt.Sprintf("Tokens Leeway must be within [0,%s]", maxLeeway)
	}

	p := c.Password
	switch p.Algorithm {
	case "", password.AlgorithmBcrypt, password.AlgorithmArgon2id:
	default:
		return fmt.Sprintf("Password Algorithm %q is not supported", p.Algorithm)
	}
	if p.MinLength < 0 {
		return "Password MinLength must be >= 0"
	}
	if p.BcryptCost != 0 && (p.BcryptCost < 4 || p.BcryptCost > 31) {
		return "Password BcryptCost must be within [4,31]"
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return "Audit BufferSize must be > 0 when Enabled is true"
	}
	return ""
}

/*
====================================
LINT
====================================
*/

// LintWarning is a non-fatal configuration concern.
type LintWarning struct {
	Code    string
	Message string
}

// LintResult lists warnings in a stable order.
type LintResult []LintWarning

// Codes returns the warning codes of r.
func (r LintResult) Codes() []string {
	out := make([]string, len(r))
	for i, w := range r {
		out[i] = w.Code
	}
	return out
}

// Lint flags settings that are valid but risky for production. It never
// fails; Validate decides what is unusable.
func (c *Config) Lint() LintResult {
	var ws LintResult
	add := func(code, msg string) {
		ws = append(ws, LintWarning{Code: code, Message: msg})
	}

	if c.Tokens.AccessTTL > 15*time.Minute {
		add("access_ttl_long", "access tokens live longer than 15m and cannot be revoked before expiry")
	}
	if c.Tokens.RefreshTTL > 30*24*time.Hour {
		add("refresh_ttl_long", "refresh tokens live longer than 30 days")
	}
	if c.Tokens.Leeway > time.Minute {
		add("leeway_large", "clock leeway above 1m extends every token's effective lifetime")
	}
	if c.Password.Algorithm != password.AlgorithmArgon2id && c.Password.BcryptCost != 0 && c.Password.BcryptCost < 10 {
		add("bcrypt_cost_low", "bcrypt cost below 10 is only suitable for tests")
	}
	if !c.Password.UpgradeOnLogin {
		add("hash_upgrade_disabled", "hashes created with weaker settings are never upgraded")
	}
	if c.Audit.Enabled && !c.Audit.DropIfFull {
		add("audit_blocking", "audit emission blocks operations when the sink falls behind")
	}
	return ws
}
