package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/authcore"
)

// AccessValidator is the part of [authcore.Engine] the guard needs.
type AccessValidator interface {
	ValidateAccess(ctx context.Context, accessToken string) (*authcore.Subject, error)
}

type subjectContextKey struct{}

// SubjectFromContext returns the subject injected by [RequireAccess].
func SubjectFromContext(ctx context.Context) (*authcore.Subject, bool) {
	s, ok := ctx.Value(subjectContextKey{}).(*authcore.Subject)
	return s, ok
}

// WithSubject stores s in ctx the way [RequireAccess] does. Useful for
// handler tests.
func WithSubject(ctx context.Context, s *authcore.Subject) context.Context {
	return context.WithValue(ctx, subjectContextKey{}, s)
}

// RequireAccess verifies the bearer access token on every request and injects
// the token's subject into the request context. Verification is stateless;
// the store is never consulted.
//
// Every rejection is a bare 401 so clients cannot tell an expired token from
// a forged one.
func RequireAccess(v AccessValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				unauthorized(w)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			subject, err := v.ValidateAccess(r.Context(), token)
			if err != nil {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="authcore"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
