package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/authcore/store"
	"github.com/MrEthical07/authcore/store/storetest"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "authcore.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.CredentialStore {
		return openTemp(t)
	})
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authcore.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.CreateAccount(ctx, store.NewAccount{ID: "a1", Email: "keep@example.com", AuthOrigin: store.OriginLocal})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err, "schema application must be idempotent")
	defer s.Close()

	a, err := s.FindAccountByEmail(ctx, "keep@example.com")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "a1", a.ID)
}

func TestMillisRoundTrip(t *testing.T) {
	in := time.Date(2026, 3, 1, 12, 30, 45, 123456789, time.FixedZone("x", 3600))
	out := fromMillis(toMillis(in))

	assert.Equal(t, time.UTC, out.Location())
	assert.True(t, out.Equal(in.Truncate(time.Millisecond)))
}

func TestWithClock(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s, err := Open(filepath.Join(t.TempDir(), "clock.db"), WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	defer s.Close()

	a, err := s.CreateAccount(context.Background(), store.NewAccount{ID: "a1", Email: "clock@example.com", AuthOrigin: store.OriginLocal})
	require.NoError(t, err)
	assert.True(t, a.CreatedAt.Equal(fixed))
	assert.True(t, a.UpdatedAt.Equal(fixed))
}
