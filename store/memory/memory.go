// Package memory is an in-process [store.CredentialStore] backed by maps.
//
// It is intended for tests, examples and single-process tools. All state is
// lost when the process exits.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/authcore/store"
)

type federatedKey struct {
	origin     string
	externalID string
}

// Store implements store.CredentialStore with a single mutex, which makes every
// operation trivially atomic.
type Store struct {
	mu          sync.Mutex
	now         func() time.Time
	accounts    map[string]*store.Account
	byEmail     map[string]string
	byFederated map[federatedKey]string
	tokens      map[string]*store.RefreshToken
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		now:         time.Now,
		accounts:    make(map[string]*store.Account),
		byEmail:     make(map[string]string),
		byFederated: make(map[federatedKey]string),
		tokens:      make(map[string]*store.RefreshToken),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ store.CredentialStore = (*Store)(nil)

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cloneAccount(a *store.Account) *store.Account {
	out := *a
	if a.LastAuthenticatedAt != nil {
		t := *a.LastAuthenticatedAt
		out.LastAuthenticatedAt = &t
	}
	return &out
}

func (s *Store) CreateAccount(ctx context.Context, in store.NewAccount) (*store.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[emailKey(in.Email)]; ok {
		return nil, store.ErrDuplicateEmail
	}
	fk := federatedKey{origin: in.AuthOrigin, externalID: in.FederatedID}
	if in.FederatedID != "" {
		if _, ok := s.byFederated[fk]; ok {
			return nil, store.ErrDuplicateFederatedID
		}
	}

	now := s.now().UTC()
	a := &store.Account{
		ID:             in.ID,
		Email:          in.Email,
		PasswordHash:   in.PasswordHash,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		AvatarURL:      in.AvatarURL,
		AuthOrigin:     in.AuthOrigin,
		FederatedID:    in.FederatedID,
		EmailConfirmed: in.EmailConfirmed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.accounts[a.ID] = a
	s.byEmail[emailKey(a.Email)] = a.ID
	if a.FederatedID != "" {
		s.byFederated[fk] = a.ID
	}
	return cloneAccount(a), nil
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*store.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, nil
	}
	return cloneAccount(s.accounts[id]), nil
}

func (s *Store) FindAccountByID(ctx context.Context, id string) (*store.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return cloneAccount(a), nil
}

func (s *Store) FindAccountByFederatedID(ctx context.Context, origin, externalID string) (*store.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byFederated[federatedKey{origin: origin, externalID: externalID}]
	if !ok || externalID == "" {
		return nil, nil
	}
	return cloneAccount(s.accounts[id]), nil
}

func (s *Store) UpdateAccount(ctx context.Context, id string, u store.AccountUpdate) (*store.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	next := cloneAccount(current)
	u.Apply(next)

	oldKey := federatedKey{origin: current.AuthOrigin, externalID: current.FederatedID}
	newKey := federatedKey{origin: next.AuthOrigin, externalID: next.FederatedID}
	if newKey != oldKey && next.FederatedID != "" {
		if owner, taken := s.byFederated[newKey]; taken && owner != id {
			return nil, store.ErrDuplicateFederatedID
		}
	}
	if current.FederatedID != "" {
		delete(s.byFederated, oldKey)
	}
	if next.FederatedID != "" {
		s.byFederated[newKey] = id
	}

	next.UpdatedAt = s.now().UTC()
	s.accounts[id] = next
	return cloneAccount(next), nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) (*store.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(s.accounts, id)
	delete(s.byEmail, emailKey(a.Email))
	if a.FederatedID != "" {
		delete(s.byFederated, federatedKey{origin: a.AuthOrigin, externalID: a.FederatedID})
	}
	for hash, t := range s.tokens {
		if t.AccountID == id {
			delete(s.tokens, hash)
		}
	}
	return a, nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, tokenHash, accountID string, expiresAt time.Time) (*store.RefreshToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountID]; !ok {
		return nil, store.ErrNotFound
	}
	if _, ok := s.tokens[tokenHash]; ok {
		return nil, store.ErrDuplicateToken
	}
	t := &store.RefreshToken{
		TokenHash: tokenHash,
		AccountID: accountID,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: s.now().UTC(),
	}
	s.tokens[tokenHash] = t
	out := *t
	return &out, nil
}

func (s *Store) FindRefreshToken(ctx context.Context, tokenHash string) (*store.RefreshToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[tokenHash]
	if !ok {
		return nil, nil
	}
	out := *t
	if a, ok := s.accounts[t.AccountID]; ok {
		out.Account = cloneAccount(a)
	}
	return &out, nil
}

func (s *Store) RevokeRefreshToken(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[tokenHash]
	if !ok || !t.ActiveAt(now) {
		return false, nil
	}
	t.Revoked = true
	return true, nil
}

func (s *Store) RevokeAllRefreshTokens(ctx context.Context, accountID string, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, t := range s.tokens {
		if t.AccountID == accountID && t.ActiveAt(now) {
			t.Revoked = true
			n++
		}
	}
	return n, nil
}

func (s *Store) ListRefreshTokens(ctx context.Context, accountID string) ([]store.RefreshToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.RefreshToken
	for _, t := range s.tokens {
		if t.AccountID == accountID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].TokenHash < out[j].TokenHash
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) PurgeExpiredOrRevoked(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for hash, t := range s.tokens {
		if !t.ActiveAt(now) {
			delete(s.tokens, hash)
			n++
		}
	}
	return n, nil
}
