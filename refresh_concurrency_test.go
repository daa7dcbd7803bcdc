package authcore

import (
	"errors"
	"sync"
	"testing"
)

func TestRefreshConcurrencySingleWinner(t *testing.T) {
	engine, s, _ := newTestEngine(t)
	res := registerTestAccount(t, engine, "alice@x.com")

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	start := make(chan struct{})
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, err := engine.Refresh(t.Context(), res.RefreshToken)
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	success := 0
	fail := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		if KindOf(err) == KindUnauthorized && errors.Is(err, ErrRefreshReuse) {
			fail++
			continue
		}
		t.Fatalf("unexpected refresh error: %v", err)
	}

	if success != 1 {
		t.Fatalf("expected exactly one refresh success, got %d", success)
	}
	if fail != n-1 {
		t.Fatalf("expected %d refresh failures, got %d", n-1, fail)
	}

	records, err := s.ListRefreshTokens(t.Context(), res.Account.ID)
	if err != nil {
		t.Fatalf("list tokens: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected the original and one replacement, got %d records", len(records))
	}
	count, err := engine.ActiveSessionCount(t.Context(), res.Account.ID)
	if err != nil || count != 1 {
		t.Fatalf("expected one active session, got %d (%v)", count, err)
	}
}

func TestLogoutRacesRefresh(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	res := registerTestAccount(t, engine, "alice@x.com")

	var (
		wg        sync.WaitGroup
		logoutErr error
		refresh   *AuthResult
		rotateErr error
	)
	start := make(chan struct{})
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		logoutErr = engine.Logout(t.Context(), res.RefreshToken)
	}()
	go func() {
		defer wg.Done()
		<-start
		refresh, rotateErr = engine.Refresh(t.Context(), res.RefreshToken)
	}()
	close(start)
	wg.Wait()

	switch {
	case logoutErr == nil && rotateErr == nil:
		t.Fatal("logout and refresh both claimed the same token")
	case logoutErr == nil:
		if !errors.Is(rotateErr, ErrRefreshReuse) {
			t.Fatalf("unexpected refresh error: %v", rotateErr)
		}
	case rotateErr == nil:
		if !errors.Is(logoutErr, ErrAlreadyRevoked) {
			t.Fatalf("unexpected logout error: %v", logoutErr)
		}
		if refresh.RefreshToken == "" {
			t.Fatal("winning refresh returned no token")
		}
	default:
		t.Fatalf("expected one winner, got logout=%v refresh=%v", logoutErr, rotateErr)
	}
}
