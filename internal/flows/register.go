package flows

import (
	"context"
	"errors"
	"strings"

	"github.com/MrEthical07/authcore/password"
	"github.com/MrEthical07/authcore/store"
)

// RegisterFailureKind classifies register flow failures for root-level mapping.
type RegisterFailureKind int

const (
	RegisterFailureNone RegisterFailureKind = iota
	RegisterFailureMissingField
	RegisterFailureInvalidEmail
	RegisterFailureWeakPassword
	RegisterFailureDuplicate
	RegisterFailureHash
	RegisterFailureStore
	RegisterFailureIssue
)

// RegisterInput is the flow-local registration request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// RegisterResult carries either the new account and its first pair or failure metadata.
type RegisterResult struct {
	Failure    RegisterFailureKind
	Err        error
	Field      string
	Violations []string
	Email      string
	Account    *store.Account
	Pair       Pair
}

// RunRegister validates the request, creates a local account and issues its
// first token pair.
func RunRegister(ctx context.Context, in RegisterInput, deps Deps) RegisterResult {
	email := NormalizeEmail(in.Email)
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)

	for _, f := range []struct{ name, value string }{
		{"email", email},
		{"password", in.Password},
		{"first_name", firstName},
		{"last_name", lastName},
	} {
		if f.value == "" {
			return RegisterResult{Failure: RegisterFailureMissingField, Field: f.name, Email: email}
		}
	}
	if !ValidEmail(email) {
		return RegisterResult{Failure: RegisterFailureInvalidEmail, Field: "email", Email: email}
	}
	if s := password.AssessStrength(in.Password); !s.OK {
		return RegisterResult{
			Failure:    RegisterFailureWeakPassword,
			Field:      "password",
			Violations: s.Violations,
			Email:      email,
		}
	}

	hash, err := deps.Hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, password.ErrInvalidInput) {
			// Passes the strength policy but not the algorithm's own limits
			// (bcrypt caps input at 72 bytes).
			return RegisterResult{
				Failure:    RegisterFailureWeakPassword,
				Err:        err,
				Field:      "password",
				Violations: []string{"must be at most 72 bytes when UTF-8 encoded"},
				Email:      email,
			}
		}
		return RegisterResult{Failure: RegisterFailureHash, Err: err, Email: email}
	}

	account, err := deps.Store.CreateAccount(ctx, store.NewAccount{
		ID:           deps.NewAccountID(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		AuthOrigin:   store.OriginLocal,
	})
	switch {
	case errors.Is(err, store.ErrDuplicateEmail):
		return RegisterResult{Failure: RegisterFailureDuplicate, Err: err, Field: "email", Email: email}
	case err != nil:
		return RegisterResult{Failure: RegisterFailureStore, Err: err, Email: email}
	}

	pair, err := issuePair(ctx, deps, account)
	if err != nil {
		return RegisterResult{Failure: RegisterFailureIssue, Err: err, Email: email, Account: account}
	}

	return RegisterResult{Email: email, Account: account, Pair: pair}
}
