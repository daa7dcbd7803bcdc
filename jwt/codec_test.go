package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

var (
	testAccessSecret  = []byte("access-secret-access-secret-0123456789")
	testRefreshSecret = []byte("refresh-secret-refresh-secret-0123456789")
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestCodec(t *testing.T, mutate ...func(*Config)) (*Codec, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	cfg := DefaultConfig()
	cfg.AccessSecret = testAccessSecret
	cfg.RefreshSecret = testRefreshSecret
	cfg.Now = clock.Now
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := NewCodec(cfg)
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	return c, clock
}

var alice = Subject{ID: "acc-1", Email: "alice@example.com"}

func TestIssueAndVerifyAccess(t *testing.T) {
	c, clock := newTestCodec(t)

	tok, err := c.IssueAccess(alice)
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	if want := clock.now.Add(15 * time.Minute); !tok.ExpiresAt.Equal(want) {
		t.Fatalf("ExpiresAt = %v, want %v", tok.ExpiresAt, want)
	}

	claims, err := c.VerifyAccess(tok.Value)
	if err != nil {
		t.Fatalf("VerifyAccess error: %v", err)
	}
	got := claims.Identity()
	if got.ID != alice.ID || got.Email != alice.Email || got.Role != DefaultRole {
		t.Fatalf("unexpected subject: %+v", got)
	}
	if claims.Kind != KindAccess || claims.ID != tok.ID {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRefreshCarriesNoRole(t *testing.T) {
	c, clock := newTestCodec(t)

	tok, err := c.IssueRefresh(Subject{ID: "acc-1", Email: "alice@example.com", Role: "admin"})
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}
	if want := clock.now.Add(7 * 24 * time.Hour); !tok.ExpiresAt.Equal(want) {
		t.Fatalf("ExpiresAt = %v, want %v", tok.ExpiresAt, want)
	}
	claims, err := c.VerifyRefresh(tok.Value)
	if err != nil {
		t.Fatalf("VerifyRefresh error: %v", err)
	}
	if claims.Role != "" {
		t.Fatalf("refresh token role = %q, want empty", claims.Role)
	}
}

func TestTokensIssuedInSameInstantDiffer(t *testing.T) {
	c, _ := newTestCodec(t)

	a, err := c.IssueRefresh(alice)
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}
	b, err := c.IssueRefresh(alice)
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}
	if a.Value == b.Value || a.ID == b.ID {
		t.Fatal("expected unique refresh tokens for the same subject and instant")
	}
}

func TestKindIsolation(t *testing.T) {
	c, _ := newTestCodec(t)

	access, err := c.IssueAccess(alice)
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	refresh, err := c.IssueRefresh(alice)
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}

	if _, err := c.VerifyAccess(refresh.Value); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("VerifyAccess(refresh) err = %v, want ErrWrongKind", err)
	}
	if _, err := c.VerifyRefresh(access.Value); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("VerifyRefresh(access) err = %v, want ErrWrongKind", err)
	}
}

func TestForgedKindClaimIsMalformed(t *testing.T) {
	c, clock := newTestCodec(t)

	// A refresh-kind claim signed with the access secret.
	claims := Claims{
		Email: alice.Email,
		Kind:  KindRefresh,
		RegisteredClaims: gjwt.RegisteredClaims{
			Subject:   alice.ID,
			Issuer:    "authcore",
			Audience:  gjwt.ClaimStrings{"authcore"},
			IssuedAt:  gjwt.NewNumericDate(clock.now),
			ExpiresAt: gjwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	}
	forged, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString(testAccessSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := c.VerifyRefresh(forged); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestExpiredToken(t *testing.T) {
	c, clock := newTestCodec(t)

	tok, err := c.IssueAccess(alice)
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	clock.now = clock.now.Add(16 * time.Minute)

	if _, err := c.VerifyAccess(tok.Value); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}

	refresh, err := c.IssueRefresh(alice)
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}
	clock.now = clock.now.Add(8 * 24 * time.Hour)
	if _, err := c.VerifyAccess(refresh.Value); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expired refresh as access err = %v, want ErrWrongKind", err)
	}
}

func TestLeewayToleratesSmallSkew(t *testing.T) {
	c, clock := newTestCodec(t, func(cfg *Config) { cfg.Leeway = 30 * time.Second })

	tok, err := c.IssueAccess(alice)
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	clock.now = clock.now.Add(15*time.Minute + 10*time.Second)
	if _, err := c.VerifyAccess(tok.Value); err != nil {
		t.Fatalf("expected leeway to accept token: %v", err)
	}
}

func TestIssuerAndAudienceBinding(t *testing.T) {
	ours, _ := newTestCodec(t)
	otherIssuer, _ := newTestCodec(t, func(cfg *Config) { cfg.Issuer = "other-deployment" })
	otherAudience, _ := newTestCodec(t, func(cfg *Config) { cfg.Audience = "other-api" })

	for name, foreign := range map[string]*Codec{"issuer": otherIssuer, "audience": otherAudience} {
		tok, err := foreign.IssueAccess(alice)
		if err != nil {
			t.Fatalf("%s: IssueAccess error: %v", name, err)
		}
		if _, err := ours.VerifyAccess(tok.Value); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s: err = %v, want ErrMalformed", name, err)
		}
	}
}

func TestRejectsTamperedAndGarbage(t *testing.T) {
	c, _ := newTestCodec(t)

	tok, err := c.IssueAccess(alice)
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	parts := strings.Split(tok.Value, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))
	tampered := strings.Join(parts, ".")

	for _, in := range []string{"", "   ", "not.a.jwt", tampered} {
		if _, err := c.VerifyAccess(in); !errors.Is(err, ErrMalformed) {
			t.Fatalf("VerifyAccess(%q) err = %v, want ErrMalformed", in, err)
		}
	}
}

func TestRejectsAlgNone(t *testing.T) {
	c, clock := newTestCodec(t)
	claims := Claims{
		Email: alice.Email,
		Kind:  KindAccess,
		RegisteredClaims: gjwt.RegisteredClaims{
			Subject:   alice.ID,
			Issuer:    "authcore",
			Audience:  gjwt.ClaimStrings{"authcore"},
			IssuedAt:  gjwt.NewNumericDate(clock.now),
			ExpiresAt: gjwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	}
	unsigned, err := gjwt.NewWithClaims(gjwt.SigningMethodNone, claims).SignedString(gjwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := c.VerifyAccess(unsigned); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestIssueRequiresSubject(t *testing.T) {
	c, _ := newTestCodec(t)

	for _, s := range []Subject{{Email: "a@x.com"}, {ID: "acc-1"}, {}} {
		if _, err := c.IssueAccess(s); !errors.Is(err, ErrInvalidSubject) {
			t.Fatalf("IssueAccess(%+v) err = %v", s, err)
		}
		if _, err := c.IssueRefresh(s); !errors.Is(err, ErrInvalidSubject) {
			t.Fatalf("IssueRefresh(%+v) err = %v", s, err)
		}
	}
}

func TestNewCodecValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing access secret", func(c *Config) { c.AccessSecret = nil }},
		{"missing refresh secret", func(c *Config) { c.RefreshSecret = nil }},
		{"short secret", func(c *Config) { c.AccessSecret = []byte("short") }},
		{"shared secret", func(c *Config) { c.RefreshSecret = c.AccessSecret }},
		{"missing issuer", func(c *Config) { c.Issuer = "" }},
		{"zero ttl", func(c *Config) { c.AccessTTL = 0 }},
		{"huge leeway", func(c *Config) { c.Leeway = time.Hour }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.AccessSecret = testAccessSecret
			cfg.RefreshSecret = testRefreshSecret
			tc.mutate(&cfg)
			if _, err := NewCodec(cfg); !errors.Is(err, ErrConfiguration) {
				t.Fatalf("err = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestPeekDoesNotVerify(t *testing.T) {
	c, clock := newTestCodec(t)

	tok, err := c.IssueRefresh(alice)
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}
	clock.now = clock.now.Add(30 * 24 * time.Hour)

	claims, ok := c.Peek(tok.Value)
	if !ok {
		t.Fatal("expected Peek to decode an expired token")
	}
	if claims.Kind != KindRefresh || claims.Email != alice.Email {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, ok := Peek("garbage"); ok {
		t.Fatal("expected Peek to reject garbage")
	}
}
