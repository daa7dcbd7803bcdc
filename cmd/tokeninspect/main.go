// Command tokeninspect prints the claims of an authcore token without
// verifying its signature. The output is NOT authoritative: anyone can mint a
// token that decodes cleanly. Use it for debugging only.
//
// Usage:
//
//	tokeninspect <token>
//	echo <token> | tokeninspect
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/MrEthical07/authcore/jwt"
)

var errUndecodable = errors.New("token could not be decoded")

type report struct {
	Verified  bool      `json:"verified"`
	Kind      jwt.Kind  `json:"kind"`
	Subject   string    `json:"sub"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	Issuer    string    `json:"iss,omitempty"`
	Audience  []string  `json:"aud,omitempty"`
	ID        string    `json:"jti,omitempty"`
	IssuedAt  time.Time `json:"iat,omitzero"`
	ExpiresAt time.Time `json:"exp,omitzero"`
	Expired   bool      `json:"expired"`
}

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: tokeninspect [token]  (reads stdin when omitted)")
	}
	flag.Parse()

	raw, err := readToken(flag.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokeninspect: %v\n", err)
		os.Exit(2)
	}
	if err := inspect(os.Stdout, raw, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "tokeninspect: %v\n", err)
		os.Exit(1)
	}
}

func readToken(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("no token given")
	}
	return line, nil
}

func inspect(w io.Writer, raw string, now time.Time) error {
	claims, ok := jwt.Peek(raw)
	if !ok {
		return errUndecodable
	}

	r := report{
		Kind:     claims.Kind,
		Subject:  claims.Subject,
		Email:    claims.Email,
		Role:     claims.Role,
		Issuer:   claims.Issuer,
		Audience: []string(claims.Audience),
		ID:       claims.ID,
	}
	if claims.IssuedAt != nil {
		r.IssuedAt = claims.IssuedAt.UTC()
	}
	if claims.ExpiresAt != nil {
		r.ExpiresAt = claims.ExpiresAt.UTC()
		r.Expired = !now.Before(r.ExpiresAt)
	}

	fmt.Fprintln(w, "# signature NOT verified; do not trust these claims")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
