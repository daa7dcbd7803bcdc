package password

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

const (
	StrengthMinLength = 8
	StrengthMaxLength = 128
)

// Strength is the outcome of [AssessStrength].
type Strength struct {
	OK         bool
	Violations []string
}

// AssessStrength checks plaintext against the registration policy and reports
// every violated rule, not just the first.
func AssessStrength(plaintext string) Strength {
	var (
		violations                              []string
		hasLower, hasUpper, hasDigit, hasSymbol bool
	)

	for _, r := range plaintext {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	n := utf8.RuneCountInString(plaintext)
	if n < StrengthMinLength {
		violations = append(violations, fmt.Sprintf("must be at least %d characters", StrengthMinLength))
	}
	if n > StrengthMaxLength {
		violations = append(violations, fmt.Sprintf("must be at most %d characters", StrengthMaxLength))
	}
	if !hasLower {
		violations = append(violations, "must contain a lowercase letter")
	}
	if !hasUpper {
		violations = append(violations, "must contain an uppercase letter")
	}
	if !hasDigit {
		violations = append(violations, "must contain a digit")
	}
	if !hasSymbol {
		violations = append(violations, "must contain a symbol")
	}

	return Strength{OK: len(violations) == 0, Violations: violations}
}
