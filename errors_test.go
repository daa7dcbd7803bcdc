package authcore

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestErrorMatchesKindReasonAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("wrapped: %w", newError("logout", KindConflict, ErrAlreadyRevoked, cause))

	for _, target := range []error{ErrConflict, ErrAlreadyRevoked, cause} {
		if !errors.Is(err, target) {
			t.Fatalf("expected errors.Is(%v)", target)
		}
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatal("unexpected kind match")
	}
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict, got %s", KindOf(err))
	}
}

func TestErrorMessageHidesNonInternalCause(t *testing.T) {
	err := &Error{Op: "refresh", Kind: KindMalformed, Msg: refreshInvalidMsg, Err: errors.New("signature is invalid")}
	if strings.Contains(err.Error(), "signature") {
		t.Fatalf("token details leaked into %q", err.Error())
	}

	internal := internalError("login", errors.New("connection refused"))
	if !strings.Contains(internal.Error(), "connection refused") {
		t.Fatalf("expected cause in log text, got %q", internal.Error())
	}
	if PublicMessage(internal) != "internal error" {
		t.Fatalf("expected generic public message, got %q", PublicMessage(internal))
	}
}

func TestHTTPStatusAndPublicKind(t *testing.T) {
	cases := []struct {
		err    error
		kind   Kind
		status int
	}{
		{nil, 0, http.StatusOK},
		{invalidField("register", "email"), KindInvalidInput, http.StatusBadRequest},
		{newError("login", KindUnauthorized, ErrInvalidCredentials, nil), KindUnauthorized, http.StatusUnauthorized},
		{&Error{Kind: KindExpired}, KindUnauthorized, http.StatusUnauthorized},
		{&Error{Kind: KindMalformed}, KindUnauthorized, http.StatusUnauthorized},
		{&Error{Kind: KindWrongKind}, KindUnauthorized, http.StatusUnauthorized},
		{newError("logout", KindConflict, ErrAlreadyRevoked, nil), KindConflict, http.StatusConflict},
		{&Error{Kind: KindNotFound}, KindNotFound, http.StatusNotFound},
		{&Error{Kind: KindConfiguration}, KindConfiguration, http.StatusInternalServerError},
		{errors.New("plain"), KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := PublicKind(tc.err); got != tc.kind {
			t.Fatalf("PublicKind(%v) = %s, want %s", tc.err, got, tc.kind)
		}
		if got := HTTPStatus(tc.err); got != tc.status {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.status)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindWrongKind.String() != "wrong_kind" || KindInternal.String() != "internal" {
		t.Fatal("unexpected kind names")
	}
	if Kind(0).String() != "unknown" || Kind(200).String() != "unknown" {
		t.Fatal("expected unknown for out-of-range kinds")
	}
}
