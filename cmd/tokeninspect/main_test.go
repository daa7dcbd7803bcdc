package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/authcore/jwt"
)

var inspectNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.Claims{
		Email: "alice@example.com",
		Kind:  jwt.KindRefresh,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "acc-1",
			Issuer:    "authcore",
			Audience:  gojwt.ClaimStrings{"authcore"},
			ID:        "01J0000000000000000000000",
			IssuedAt:  gojwt.NewNumericDate(exp.Add(-time.Hour)),
			ExpiresAt: gojwt.NewNumericDate(exp),
		},
	}
	raw, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("any-key-the-inspector-never-sees"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return raw
}

func decode(t *testing.T, out string) report {
	t.Helper()
	header, body, ok := strings.Cut(out, "\n")
	if !ok || !strings.Contains(header, "NOT verified") {
		t.Fatalf("missing warning header in %q", out)
	}
	var r report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	return r
}

func TestInspectLiveToken(t *testing.T) {
	var buf bytes.Buffer
	if err := inspect(&buf, signed(t, inspectNow.Add(time.Hour)), inspectNow); err != nil {
		t.Fatalf("inspect: %v", err)
	}

	r := decode(t, buf.String())
	if r.Verified {
		t.Fatal("report must never claim verification")
	}
	if r.Kind != jwt.KindRefresh || r.Subject != "acc-1" || r.Email != "alice@example.com" {
		t.Fatalf("unexpected report: %+v", r)
	}
	if r.Expired {
		t.Fatal("token should not be reported expired")
	}
	if len(r.Audience) != 1 || r.Audience[0] != "authcore" {
		t.Fatalf("unexpected audience: %v", r.Audience)
	}
}

func TestInspectExpiredToken(t *testing.T) {
	var buf bytes.Buffer
	if err := inspect(&buf, signed(t, inspectNow.Add(-time.Minute)), inspectNow); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if r := decode(t, buf.String()); !r.Expired {
		t.Fatalf("expected expired, got %+v", r)
	}
}

func TestInspectGarbage(t *testing.T) {
	var buf bytes.Buffer
	if err := inspect(&buf, "not.a.token", inspectNow); !errors.Is(err, errUndecodable) {
		t.Fatalf("expected errUndecodable, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written for garbage, got %q", buf.String())
	}
}

func TestReadToken(t *testing.T) {
	got, err := readToken([]string{"  abc  "}, strings.NewReader("ignored"))
	if err != nil || got != "abc" {
		t.Fatalf("args: got %q, %v", got, err)
	}

	got, err = readToken(nil, strings.NewReader("from-stdin\n"))
	if err != nil || got != "from-stdin" {
		t.Fatalf("stdin: got %q, %v", got, err)
	}

	if _, err := readToken(nil, strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}
