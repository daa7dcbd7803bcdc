package authcore

import (
	"context"
	"strings"
	"time"

	"github.com/MrEthical07/authcore/internal/ids"
)

// HealthStatus is an on-demand backend health result.
type HealthStatus struct {
	StoreAvailable bool
	StoreLatency   time.Duration
	// StoreChecked is false when the store has no way to be probed.
	StoreChecked bool
}

// storePinger is implemented by stores that can be probed without side
// effects.
type storePinger interface {
	Ping(ctx context.Context) (time.Duration, error)
}

// ActiveSessions lists the refresh token records of an account, oldest first,
// including revoked and expired ones until they are purged. Token values and
// full digests are never returned; each record is identified by fingerprint.
func (e *Engine) ActiveSessions(ctx context.Context, accountID string) ([]SessionInfo, error) {
	const op = "sessions"
	if err := e.ready(op); err != nil {
		return nil, err
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, invalidField(op, "account_id")
	}

	records, err := e.store.ListRefreshTokens(ctx, accountID)
	if err != nil {
		return nil, internalError(op, err)
	}

	now := e.now()
	out := make([]SessionInfo, 0, len(records))
	for i := range records {
		rec := &records[i]
		out = append(out, SessionInfo{
			Fingerprint: ids.Fingerprint(rec.TokenHash),
			CreatedAt:   rec.CreatedAt,
			ExpiresAt:   rec.ExpiresAt,
			Revoked:     rec.Revoked,
			Active:      rec.ActiveAt(now),
		})
	}
	return out, nil
}

// ActiveSessionCount counts the records of an account still usable for
// rotation.
func (e *Engine) ActiveSessionCount(ctx context.Context, accountID string) (int, error) {
	sessions, err := e.ActiveSessions(ctx, accountID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, s := range sessions {
		if s.Active {
			n++
		}
	}
	return n, nil
}

// Health probes the store when it supports it.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	if e == nil || e.store == nil {
		return HealthStatus{}
	}

	p, ok := e.store.(storePinger)
	if !ok {
		return HealthStatus{StoreAvailable: true}
	}
	latency, err := p.Ping(ctx)
	return HealthStatus{
		StoreAvailable: err == nil,
		StoreLatency:   latency,
		StoreChecked:   true,
	}
}
