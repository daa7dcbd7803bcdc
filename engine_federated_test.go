package authcore

import (
	"errors"
	"testing"
)

func googleProfile(id, email string) FederatedProfile {
	return FederatedProfile{
		ExternalID: id,
		Email:      email,
		GivenName:  "Grace",
		FamilyName: "Hopper",
		AvatarURL:  "https://example.com/" + id + ".png",
	}
}

func TestFederatedSignInLinksExistingLocalAccount(t *testing.T) {
	engine, s, _ := newTestEngine(t)
	local := registerTestAccount(t, engine, "a@x.com")

	res, err := engine.FederatedSignIn(t.Context(), "Google", googleProfile("g-1", "A@x.com"))
	if err != nil {
		t.Fatalf("federated sign-in: %v", err)
	}
	if res.Outcome != FederatedLinked || res.Provider != "google" {
		t.Fatalf("expected linked via google, got %s via %q", res.Outcome, res.Provider)
	}
	if res.Account.ID != local.Account.ID {
		t.Fatal("expected the existing account to be linked, not a new one")
	}
	if res.Account.AuthOrigin != "google" || !res.Account.Federated || !res.Account.EmailConfirmed {
		t.Fatalf("unexpected linked view %+v", res.Account)
	}
	if !res.Account.HasPassword {
		t.Fatal("linking must keep the password")
	}
	// Names already set locally are kept.
	if res.Account.FirstName != "A" {
		t.Fatalf("expected first name to be kept, got %q", res.Account.FirstName)
	}

	again, err := engine.FederatedSignIn(t.Context(), "google", googleProfile("g-1", "a@x.com"))
	if err != nil || again.Outcome != FederatedSignedIn {
		t.Fatalf("second sign-in: outcome=%v err=%v", again, err)
	}

	// Password login keeps working for a linked account that has one.
	if _, err := engine.Login(t.Context(), "a@x.com", testPassword); err != nil {
		t.Fatalf("password login after link: %v", err)
	}

	unlinked, err := engine.UnlinkFederated(t.Context(), local.Account.ID)
	if err != nil {
		t.Fatalf("unlink: %v", err)
	}
	if unlinked.AuthOrigin != "local" || unlinked.Federated {
		t.Fatalf("expected local account after unlink, got %+v", unlinked)
	}
	stored, _ := s.FindAccountByID(t.Context(), local.Account.ID)
	if stored.FederatedID != "" {
		t.Fatalf("federated id not cleared: %q", stored.FederatedID)
	}

	requireErrorReason(t, mustUnlinkErr(t, engine, local.Account.ID), KindConflict, ErrNotLinked)
}

func TestFederatedSignInCreatesAccount(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	res, err := engine.FederatedSignIn(t.Context(), "github", googleProfile("gh-7", "new@x.com"))
	if err != nil {
		t.Fatalf("federated sign-in: %v", err)
	}
	if res.Outcome != FederatedCreated {
		t.Fatalf("expected created, got %s", res.Outcome)
	}
	a := res.Account
	if a.AuthOrigin != "github" || !a.EmailConfirmed || a.HasPassword {
		t.Fatalf("unexpected created view %+v", a)
	}
	if a.FirstName != "Grace" || a.LastName != "Hopper" || a.AvatarURL == "" {
		t.Fatalf("expected profile fields to be copied, got %+v", a)
	}
	if a.LastAuthenticatedAt == nil {
		t.Fatal("expected LastAuthenticatedAt on first sign-in")
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("expected a token pair")
	}

	err = mustUnlinkErr(t, engine, a.ID)
	requireErrorReason(t, err, KindConflict, ErrPasswordRequired)
	if PublicMessage(err) != "set a password first" {
		t.Fatalf("unexpected message %q", PublicMessage(err))
	}
}

func TestFederatedSignInProviderConflict(t *testing.T) {
	engine, s, _ := newTestEngine(t)

	first, err := engine.FederatedSignIn(t.Context(), "google", googleProfile("g-1", "a@x.com"))
	if err != nil {
		t.Fatalf("google sign-in: %v", err)
	}

	for name, attempt := range map[string]struct {
		provider string
		id       string
	}{
		"other provider":         {"github", "gh-1"},
		"other id same provider": {"google", "g-2"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := engine.FederatedSignIn(t.Context(), attempt.provider, googleProfile(attempt.id, "a@x.com"))
			requireErrorReason(t, err, KindConflict, ErrProviderConflict)
		})
	}

	stored, _ := s.FindAccountByID(t.Context(), first.Account.ID)
	if stored.AuthOrigin != "google" || stored.FederatedID != "g-1" {
		t.Fatalf("existing link must not be overwritten, got %s/%s", stored.AuthOrigin, stored.FederatedID)
	}
	if got := engine.MetricsSnapshot().Counters[MetricFederatedConflict]; got != 2 {
		t.Fatalf("expected 2 conflicts counted, got %d", got)
	}
}

func TestFederatedSignInRejectsIncompleteProfile(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.FederatedSignIn(t.Context(), "google", FederatedProfile{Email: "a@x.com"})
	requireKind(t, err, KindUnauthorized)

	_, err = engine.FederatedSignIn(t.Context(), "google", FederatedProfile{ExternalID: "g-1"})
	requireKind(t, err, KindUnauthorized)

	_, err = engine.FederatedSignIn(t.Context(), " ", googleProfile("g-1", "a@x.com"))
	requireKind(t, err, KindInvalidInput)

	_, err = engine.FederatedSignIn(t.Context(), "local", googleProfile("g-1", "a@x.com"))
	requireKind(t, err, KindInvalidInput)
}

func TestSetPasswordThenUnlink(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	res, err := engine.FederatedSignIn(t.Context(), "google", googleProfile("g-1", "f@x.com"))
	if err != nil {
		t.Fatalf("federated sign-in: %v", err)
	}
	id := res.Account.ID

	err = engine.SetPassword(t.Context(), id, "weak")
	requireErrorReason(t, err, KindInvalidInput, ErrWeakPassword)

	if err := engine.SetPassword(t.Context(), id, testPassword); err != nil {
		t.Fatalf("set password: %v", err)
	}
	requireErrorReason(t, engine.SetPassword(t.Context(), id, "Bb2@bbbb"), KindConflict, ErrPasswordAlreadySet)

	if _, err := engine.UnlinkFederated(t.Context(), id); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	if _, err := engine.Login(t.Context(), "f@x.com", testPassword); err != nil {
		t.Fatalf("login after unlink: %v", err)
	}

	// The identity is free again, so signing in creates nothing new but links.
	again, err := engine.FederatedSignIn(t.Context(), "google", googleProfile("g-1", "f@x.com"))
	if err != nil || again.Outcome != FederatedLinked || again.Account.ID != id {
		t.Fatalf("relink: res=%+v err=%v", again, err)
	}
}

func mustUnlinkErr(t *testing.T, e *Engine, id string) error {
	t.Helper()

	a, err := e.UnlinkFederated(t.Context(), id)
	if err == nil {
		t.Fatalf("expected unlink to fail, got %+v", a)
	}
	return err
}

func requireErrorReason(t *testing.T, err error, kind Kind, reason error) {
	t.Helper()

	requireKind(t, err, kind)
	if !errors.Is(err, reason) {
		t.Fatalf("expected reason %v, got %v", reason, err)
	}
}
