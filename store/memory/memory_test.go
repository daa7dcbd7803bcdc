package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/authcore/store"
	"github.com/MrEthical07/authcore/store/memory"
	"github.com/MrEthical07/authcore/store/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.CredentialStore {
		return memory.New()
	})
}

func TestReturnsCopies(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	a, err := s.CreateAccount(ctx, store.NewAccount{ID: "a1", Email: "copy@example.com", AuthOrigin: store.OriginLocal})
	require.NoError(t, err)
	a.Email = "mutated@example.com"

	again, err := s.FindAccountByID(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, "copy@example.com", again.Email)
}

func TestCanceledContext(t *testing.T) {
	s := memory.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.FindAccountByID(ctx, "a1")
	require.ErrorIs(t, err, context.Canceled)
}
