package authcore

import (
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/MrEthical07/authcore/store"
	"github.com/MrEthical07/authcore/store/storemock"
)

var errStoreDown = errors.New("store down")

func TestStoreFailuresSurfaceAsInternal(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := storemock.NewMockCredentialStore(ctrl)
	engine := newTestEngineWithStore(t, s, newTestClock())

	s.EXPECT().FindAccountByEmail(gomock.Any(), "a@x.com").Return(nil, errStoreDown)
	_, err := engine.Login(t.Context(), "a@x.com", testPassword)
	requireKind(t, err, KindInternal)
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected cause to be wrapped, got %v", err)
	}
	if PublicMessage(err) != ErrInternal.Error() {
		t.Fatalf("internal causes must not leak, got %q", PublicMessage(err))
	}

	s.EXPECT().FindRefreshToken(gomock.Any(), gomock.Any()).Return(nil, errStoreDown)
	requireKind(t, engine.Logout(t.Context(), "some-token"), KindInternal)

	s.EXPECT().PurgeExpiredOrRevoked(gomock.Any(), gomock.Any()).Return(int64(0), errStoreDown)
	_, err = engine.PurgeExpired(t.Context())
	requireKind(t, err, KindInternal)
}

func TestRegisterDuplicateFromStoreIsConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := storemock.NewMockCredentialStore(ctrl)
	engine := newTestEngineWithStore(t, s, newTestClock())

	s.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return(nil, store.ErrDuplicateEmail)
	_, err := engine.Register(t.Context(), RegisterRequest{
		Email:     "a@x.com",
		Password:  testPassword,
		FirstName: "A",
		LastName:  "B",
	})
	requireErrorReason(t, err, KindConflict, ErrEmailTaken)
}

func TestRefreshLosingRevokeIsReuse(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := newTestClock()
	s := storemock.NewMockCredentialStore(ctrl)
	engine := newTestEngineWithStore(t, s, clock)

	issued, err := engine.codec.IssueRefresh(Subject{ID: "acc-1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	gomock.InOrder(
		s.EXPECT().FindRefreshToken(gomock.Any(), gomock.Any()).Return(&store.RefreshToken{
			AccountID: "acc-1",
			ExpiresAt: issued.ExpiresAt,
			CreatedAt: clock.Now(),
		}, nil),
		// Another caller rotated the token between the read and the revoke.
		s.EXPECT().RevokeRefreshToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil),
	)

	_, err = engine.Refresh(t.Context(), issued.Value)
	requireErrorReason(t, err, KindUnauthorized, ErrRefreshReuse)
	if got := engine.MetricsSnapshot().Counters[MetricRefreshReuseDetected]; got != 1 {
		t.Fatalf("expected reuse to be counted, got %d", got)
	}
}
