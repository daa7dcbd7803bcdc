package password

import (
	"strings"
	"testing"
)

func TestAssessStrength(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		ok         bool
		violations int
	}{
		{name: "meets policy", in: "Aa1!aaaa", ok: true},
		{name: "empty reports everything", in: "", violations: 5},
		{name: "lowercase only", in: "abcdefgh", violations: 3},
		{name: "too short", in: "Aa1!", violations: 1},
		{name: "too long", in: "Aa1!" + strings.Repeat("a", 125), violations: 1},
		{name: "max length", in: "Aa1!" + strings.Repeat("a", 124), ok: true},
		{name: "unicode letters", in: "Ççç1!ççç", ok: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := AssessStrength(tc.in)
			if got.OK != tc.ok {
				t.Fatalf("OK = %v, want %v (violations %v)", got.OK, tc.ok, got.Violations)
			}
			if len(got.Violations) != tc.violations {
				t.Fatalf("violations = %v, want %d", got.Violations, tc.violations)
			}
		})
	}
}
