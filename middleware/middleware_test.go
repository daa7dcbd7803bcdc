package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/store/memory"
)

func newEngine(t *testing.T) *authcore.Engine {
	t.Helper()

	cfg := authcore.DefaultConfig()
	cfg.Tokens.AccessSecret = []byte("access-secret-access-secret-0123456789")
	cfg.Tokens.RefreshSecret = []byte("refresh-secret-refresh-secret-0123456789")
	cfg.Password.BcryptCost = 4

	engine, err := authcore.New().WithConfig(cfg).WithStore(memory.New()).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func register(t *testing.T, engine *authcore.Engine) *authcore.AuthResult {
	t.Helper()

	res, err := engine.Register(context.Background(), authcore.RegisterRequest{
		Email:     "a@x.com",
		Password:  "Aa1!aaaa",
		FirstName: "A",
		LastName:  "B",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return res
}

func TestRequireAccess(t *testing.T) {
	engine := newEngine(t)
	res := register(t, engine)

	var seen *authcore.Subject
	h := RequireAccess(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + res.AccessToken, http.StatusNoContent},
		{"lower-case scheme", "bearer " + res.AccessToken, http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"refresh token", "Bearer " + res.RefreshToken, http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if tc.status == http.StatusNoContent {
				if seen == nil || seen.ID != res.Account.ID {
					t.Fatalf("expected subject in context, got %+v", seen)
				}
			} else if rec.Header().Get("WWW-Authenticate") == "" {
				t.Fatal("expected WWW-Authenticate on rejection")
			}
		})
	}
}

func TestRequireAccessNilValidator(t *testing.T) {
	h := RequireAccess(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRefreshCookieRoundTrip(t *testing.T) {
	opts := CookieOptions{Path: "/auth"}
	rec := httptest.NewRecorder()
	SetRefreshCookie(rec, "opaque-value", time.Now().Add(time.Hour), opts)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != DefaultRefreshCookieName || c.Path != "/auth" {
		t.Fatalf("unexpected cookie scope %+v", c)
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode {
		t.Fatalf("cookie must be HttpOnly, Secure and SameSite=Strict: %+v", c)
	}
	if c.MaxAge <= 0 || c.MaxAge > 3600 {
		t.Fatalf("unexpected MaxAge %d", c.MaxAge)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(c)
	got, ok := RefreshCookie(req, opts)
	if !ok || got != "opaque-value" {
		t.Fatalf("expected cookie value back, got %q", got)
	}

	if _, ok := RefreshCookie(httptest.NewRequest(http.MethodPost, "/", nil), opts); ok {
		t.Fatal("expected no cookie")
	}
}

func TestClearRefreshCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearRefreshCookie(rec, CookieOptions{Name: "rt"})

	c := rec.Result().Cookies()[0]
	if c.Name != "rt" || c.Value != "" || c.MaxAge >= 0 {
		t.Fatalf("expected deletion cookie, got %+v", c)
	}

	rec = httptest.NewRecorder()
	SetRefreshCookie(rec, "expired", time.Now().Add(-time.Minute), CookieOptions{})
	if c := rec.Result().Cookies()[0]; c.Value != "" || c.MaxAge >= 0 {
		t.Fatalf("an expired token must clear the cookie, got %+v", c)
	}
}
