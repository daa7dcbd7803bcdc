// Package storetest is the conformance suite every store.CredentialStore
// implementation runs from its own tests.
package storetest

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/authcore/store"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) store.CredentialStore

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s store.CredentialStore)
	}{
		{"CreateAndFindAccount", testCreateAndFindAccount},
		{"FindAbsentReturnsNil", testFindAbsentReturnsNil},
		{"DuplicateEmailIsCaseInsensitive", testDuplicateEmail},
		{"DuplicateFederatedID", testDuplicateFederatedID},
		{"SameExternalIDDifferentProvider", testSameExternalIDDifferentProvider},
		{"UpdateAccountPartial", testUpdateAccountPartial},
		{"UpdateAccountRelinksFederatedID", testUpdateAccountRelinks},
		{"UpdateAccountMissing", testUpdateAccountMissing},
		{"DeleteAccountCascades", testDeleteAccountCascades},
		{"DeleteAccountMissing", testDeleteAccountMissing},
		{"CreateRefreshTokenUnknownAccount", testCreateRefreshTokenUnknownAccount},
		{"CreateRefreshTokenDuplicate", testCreateRefreshTokenDuplicate},
		{"FindRefreshTokenJoinsAccount", testFindRefreshTokenJoinsAccount},
		{"RevokeIsConditional", testRevokeIsConditional},
		{"ConcurrentRevokeSingleWinner", testConcurrentRevokeSingleWinner},
		{"RevokeAllCountsActiveOnly", testRevokeAll},
		{"ListRefreshTokens", testListRefreshTokens},
		{"PurgeIsIdempotent", testPurgeIsIdempotent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newStore(t))
		})
	}
}

func baseTime() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func newLocal(t *testing.T, s store.CredentialStore, email string) *store.Account {
	t.Helper()
	a, err := s.CreateAccount(context.Background(), store.NewAccount{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceholderplacehold",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		AuthOrigin:   store.OriginLocal,
	})
	require.NoError(t, err)
	return a
}

func newToken(t *testing.T, s store.CredentialStore, accountID string, expiresAt time.Time) string {
	t.Helper()
	hash := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	_, err := s.CreateRefreshToken(context.Background(), hash, accountID, expiresAt)
	require.NoError(t, err)
	return hash
}

func testCreateAndFindAccount(t *testing.T, s store.CredentialStore) {
	ctx := context.Background()
	created := newLocal(t, s, "ada@example.com")

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.Equal(t, store.OriginLocal, created.AuthOrigin)
	assert.False(t, created.EmailConfirmed)
	assert.Nil(t, created.LastAuthenticatedAt)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.UpdatedAt.IsZero())

	byID, err := s.FindAccountByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, created.Email, byID.Email)
	assert.Equal(t, created.PasswordHash, byID.PasswordHash)
	assert.Equal(t, "Ada", byID.FirstName)
	assert.Equal(t, "Lovelace", byID.LastName)

	byEmail, err := s.FindAccountByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, created.ID, byEmail.ID)

	fed, err := s.CreateAccount(ctx, store.NewAccount{
		ID:             uuid.NewString(),
		Email:          "grace@example.com",
		AuthOrigin:     "google",
		FederatedID:    "g-123",
		AvatarURL:      "https://example.com/g.png",
		EmailConfirmed: true,
	})
	require.NoError(t, err)
	assert.False(t, fed.HasPassword())

	byFed, err := s.FindAccountByFederatedID(ctx, "google", "g-123")
	require.NoError(t, err)
	require.NotNil(t, byFed)
	assert.Equal(t, fed.ID, byFed.ID)
	assert.True(t, byFed.EmailConfirmed)
	assert.True(t, byFed.Federated())
	assert.Equal(t, "https://example.com/g.png", byFed.AvatarURL)
}

func testFindAbsentReturnsNil(t *testing.T, s store.CredentialStore) {
	ctx := context.Background()

	a, err := s.FindAccountByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, a)

	a, err = s.FindAccountByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, a)

	a, err = s.FindAccountByFederatedID(ctx, "google", "missing")
	require.NoError(t, err)
	assert.Nil(t, a)

	rt, err := s.FindRefreshToken(ctx, "missing-hash")
	require.NoError(t, err)
	assert.Nil(t, rt)
}

func testDuplicateEmail(t *testing.T, s store.CredentialStore) {
	newLocal(t, s, "dup@example.com")

	_, err := s.CreateAccount(context.Background(), store.NewAccount{
		ID:         uuid.NewString(),
		Email:      "Dup@Example.com",
		AuthOrigin: store.OriginLocal,
	})
	require.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func testDuplicateFederatedID(t *testing.T, s store.CredentialStore) {
	ctx := context.Background()
	_, err := s.CreateAccount(ctx, store.NewAccount{
		ID: uuid.NewString(), Email: "one@example.com", AuthOrigin: "google", FederatedID: "same",
	})
	require.NoError(t, err)

	_, err = s.CreateAccount(ctx, store.NewAccount{
		ID: uuid.NewString(), Email: "two@example.com", AuthOrigin: "google", FederatedID: "same",
	})
	require.ErrorIs(t, err, store.ErrDuplicateFederatedID)
}

func testSameExternalIDDifferentProvider(t *testing.T, s store.CredentialStore) {
	ctx := context.Background()
	_, err := s.CreateAccount(ctx, store.NewAccount{
		ID: uuid.NewString(), Email: "one@example.com", AuthOrigin: "google", FederatedID: "42",
	})
	require.NoError(t, err)
	_, err = s.CreateAccount(ctx, store.NewAccount{
		ID: uuid.NewString(), Email: "two@example.com", AuthOrigin: "github", FederatedID: "42",
	})
	require.NoError(t, err)

	gh, err := s.FindAccountByFederatedID(ctx, "github", "42")
	require.NoError(t, err)
	require.NotNil(t, gh)
	assert.Equal(t, "two@example.com", gh.Email)
}

func testUpdateAccountPartial(t *testing.T, s store.CredentialStore) {
	ctx := context.Background()
	a := newLocal(t, s, "partial@example.com")

	seen := baseTime()
	confirmed := true
	avatar := "https://example.com/a.png"
	updated, err := s.UpdateAccount(ctx, a.ID, store.AccountUpdate{
		AvatarURL:           &avatar,
		EmailConfirmed:      &confirmed,
		LastAuthenticatedAt: &seen,
	})
	require.NoError(t, err)
	assert.Equal(t, avatar, updated.AvatarURL)
	assert.True(t, updated.EmailConfirmed)
	require.NotNil(t, updated.LastAuthenticatedAt)
	assert.WithinDuration(t, seen, *updated.LastAuthenticatedAt, time.Millisecond)
	assert.Equal(t, a.PasswordHash, updated.PasswordHash, "unset fields must be preserved")
	assert.Equal(t, "Ada", updated.FirstName)

	again, err := s.FindAccountByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, avatar, again.AvatarURL)
	assert.False(t, again.UpdatedAt.Before(a.UpdatedAt))
}

func testUpdateAccountRelinks(t *testing.T, s store.CredentialStore) {
	ctx := context.Background()
	a := newLocal(t, s, "link@example.com")

	origin, extID := "google", "g-link"
	linked, err := s.UpdateAccount(ctx, a.ID, store.AccountUpdate{AuthOrigin: &origin, FederatedID: &extID})
	require.NoError(t, err)
	assert.Equal(t, "google", linked.AuthOrigin)

	found, err := s.FindAccountByFederatedID(ctx, "google", "g-link")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, a.ID, found.ID)

	other := newLocal(t, s, "other@example.com")
	_, err = s.UpdateAccount(ctx, other.ID, store.AccountUpdate{AuthOrigin: &origin, FederatedID: &extID})
	require.ErrorIs(t, err, store.ErrDuplicateFederatedID)

	local, empty := store.OriginLocal, ""
	unlinked, err := s.UpdateAccount(ctx, a.ID, store.AccountUpdate{AuthOrigin: &local, FederatedID: &empty})
	require.NoError(t, err)
	assert.Equal(t, store.OriginLocal, unlinked.AuthOrigin)
	assert.Empty(t, unlinked.FederatedID)

	found, err = s.FindAccountByFederatedID(ctx, "google", "g-link")
	require.NoError(t, err)
	assert.Nil(t, found)

	// The identity is free again once unlinked.
	_, err = s.UpdateAccount(ctx, other.ID, store.AccountUpdate{AuthOrigin: &origin, FederatedID: &extID})
	require.NoError(t, err)
}

func testUpdateAccountMissing(t *testing.T, s store.CredentialStore) {
	name := "x"
	_, err := s.UpdateAccount(context.Background(), uuid.NewString(), store.AccountUpdate{FirstName: &name})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testDeleteAccountCascades(t *testing.T, s store.CredentialStore) {
	ctx := context.Background()
	a := newLocal(t, s, "gone@example.com")
	keep := newLocal(t, s, "keep@example.com")
	now := baseTime()

	h1 := newToken(t, s, a.ID, now.Add(time.Hour))
	h2 := newToken(t, s, a.ID, now.Add(2*time.Hour))
	kept := newToken(t, s, keep.ID, now.Add(time.Hour))

	deleted, err := s.DeleteAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, deleted.ID)
	assert.Equal(t, "gone@example.com", deleted.Email)

	for _, h := range []string{h1, h2} {
		rt, err := s.FindRefreshToken(ctx, h)
		require.NoError(t, err)
		assert.Nil(t, rt, "refresh token must be removed with its account")
	}
	rt, err := s.FindRefreshToken(ctx, kept)
	require.NoError(t, err)
	assert.NotNil(t, rt)

	gone, err := s.FindAccountByEmail(ctx, "gone@example.com")
	require.NoError(t, err)
	assert.Nil(t, gone)

	// The email is reusable after deletion.
	newLocal(t, s, "gone@example.com")
}

func testDeleteAccountMissing(t *testing.T, s store.CredentialStore) {
	_, err := s.DeleteAccount(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testCreateRefreshTokenUnknownAccount(t *testing.T, s store.CredentialStore) {
	_, err := s.CreateRefreshToken(context.Background(), "orphan", uuid.NewString(), baseTime().Add(time.Hour))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testCreateRefreshTokenDuplicate(t *testing.T, s store.CredentialStore) {
	a := newLocal(t, s, "dup-token@example.com")
	h := newToken(t, s, a.ID, baseTime().Add(time.Hour))

	_, err := s.CreateRefreshToken(context.Background(), h, a.ID, baseTime().Add(time.Hour))
	require.ErrorIs(t, err, store.ErrDuplicateToken)
}

func testFindRefreshTokenJoinsAccount(t *testing.T, s store.CredentialStore) {
	ctx := context.Background()
	a := newLocal(t, s, "join@example.com")
	exp := baseTime().Add(7 * 24 * time.Hour)
	h := newToken(t, s, a.ID, exp)

	rt, err := s.FindRefreshToken(ctx, h)
	require.NoError(t, err)
	require.NotNil(t, rt)
	assert.Equal(t, h, rt.TokenHash)
	assert.Equal(t, a.ID, rt.AccountID)
	assert.False(t, rt.Revoked)
	assert.WithinDuration(t, exp, rt.ExpiresAt, time.Millisecond)
	assert.False(t, rt.CreatedAt.IsZero())
	require.NotNil(t, rt.Account)
	assert.Equal(t, "join@example.com", rt.Account.Email)
	assert.Equal(t, a.PasswordHash, rt.Account.PasswordHash)
}

func testRevokeIsConditional(t *testing.T, s store.CredentialStore) {
	ctx := context.Background()
	a := newLocal(t, s, "revoke@example.com")
	now := baseTime()

	active := newToken(t, s, a.ID, now.Add(time.Hour))
	expired := newToken(t, s, a.ID, now.Add(-time.Minute))

	ok, err := s.RevokeRefreshToken(ctx, active, now)
	require.NoError(t, err)
	assert.True(t, ok, "first revoke of an active token must win")

	ok, err = s.RevokeRefreshToken(ctx, active, now)
	require.NoError(t, err)
	assert.False(t, ok, "revoked tokens cannot be revoked again")

	ok, err = s.RevokeRefreshToken(ctx, expired, now)
	require.NoError(t, err)
	assert.False(t, ok, "expired tokens are not active")

	ok, err = s.RevokeRefreshToken(ctx, "missing", now)
	require.NoError(t, err)
	assert.False(t, ok)

	rt, err := s.FindRefreshToken(ctx, active)
	require.NoError(t, err)
	assert.True(t, rt.Revoked)

	rt, err = s.FindRefreshToken(ctx, expired)
	require.NoError(t, err)
	assert.False(t, rt.Revoked, "expired rows are left untouched")
}

func testConcurrentRevokeSingleWinner(t *testing.T, s store.CredentialStore) {
	a := newLocal(t, s, "race@example.com")
	now := baseTime()
	h := newToken(t, s, a.ID, now.Add(time.Hour))

	const workers = 16
	var (
		wins  atomic.Int32
		start = make(chan struct{})
		wg    sync.WaitGroup
		errs  = make(chan error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := s.RevokeRefreshToken(context.Background(), h, now)
			if err != nil {
				errs <- err
				return
			}
			if ok {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), wins.Load(), "exactly one concurrent revoke may succeed")
}

func testRevokeAll(t *testing.T, s store.CredentialStore) {
	ctx := context.Background()
	a := newLocal(t, s, "all@example.com")
	other := newLocal(t, s, "bystander@example.com")
	now := baseTime()

	newToken(t, s, a.ID, now.Add(time.Hour))
	newToken(t, s, a.ID, now.Add(2*time.Hour))
	revoked := newToken(t, s, a.ID, now.Add(time.Hour))
	newToken(t, s, a.ID, now.Add(-time.Hour))
	untouched := newToken(t, s, other.ID, now.Add(time.Hour))

	ok, err := s.RevokeRefreshToken(ctx, revoked, now)
	require.NoError(t, err)
	require.True(t, ok)

	n, err := s.RevokeAllRefreshTokens(ctx, a.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.RevokeAllRefreshTokens(ctx, a.ID, now)
	require.NoError(t, err)
	assert.Zero(t, n)

	rt, err := s.FindRefreshToken(ctx, untouched)
	require.NoError(t, err)
	assert.False(t, rt.Revoked, "other accounts keep their sessions")
}

func testListRefreshTokens(t *testing.T, s store.CredentialStore) {
	ctx := context.Background()
	a := newLocal(t, s, "list@example.com")
	now := baseTime()

	want := map[string]bool{
		newToken(t, s, a.ID, now.Add(time.Hour)):  true,
		newToken(t, s, a.ID, now.Add(-time.Hour)): true,
	}
	newToken(t, s, newLocal(t, s, "else@example.com").ID, now.Add(time.Hour))

	list, err := s.ListRefreshTokens(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, rt := range list {
		assert.True(t, want[rt.TokenHash])
		assert.Equal(t, a.ID, rt.AccountID)
	}

	empty, err := s.ListRefreshTokens(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testPurgeIsIdempotent(t *testing.T, s store.CredentialStore) {
	ctx := context.Background()
	a := newLocal(t, s, "purge@example.com")
	now := baseTime()

	active := newToken(t, s, a.ID, now.Add(time.Hour))
	newToken(t, s, a.ID, now.Add(-time.Hour))
	revoked := newToken(t, s, a.ID, now.Add(time.Hour))
	ok, err := s.RevokeRefreshToken(ctx, revoked, now)
	require.NoError(t, err)
	require.True(t, ok)

	n, err := s.PurgeExpiredOrRevoked(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.PurgeExpiredOrRevoked(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n, "second purge must be a no-op")

	rt, err := s.FindRefreshToken(ctx, active)
	require.NoError(t, err)
	require.NotNil(t, rt, "purge never touches active tokens")
	assert.False(t, rt.Revoked)
}
