// Package redis implements store.CredentialStore on Redis.
//
// Layout, with every key under a configurable prefix (default "ac"):
//
//	{p}:a:{id}              account record (JSON)
//	{p}:e:{lower(email)}    email index -> account id
//	{p}:f:{origin}:{extID}  federated index -> account id
//	{p}:t:{hash}            refresh token record (hash: account, exp, revoked, created)
//	{p}:u:{id}              set of token hashes owned by the account
//	{p}:tx                  expiry index (zset scored by exp ms)
//	{p}:tr                  set of revoked token hashes
//
// Index maintenance runs in Lua scripts or WATCH/MULTI transactions so that
// concurrent writers never leave the indexes disagreeing with the records.
// Scripts address keys derived from the prefix, so the store expects a single
// node or a deployment where all keys share a hash slot.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authcore/store"
)

// ErrUnavailable wraps transport and server failures.
var ErrUnavailable = errors.New("redis store unavailable")

const (
	defaultPrefix = "ac"
	maxTxRetries  = 16
)

// Store is a Redis-backed credential store.
type Store struct {
	rdb    goredis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ store.CredentialStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key namespace.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithClock overrides the clock used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store on an existing client. The caller owns the client.
func New(rdb goredis.UniversalClient, opts ...Option) *Store {
	s := &Store{rdb: rdb, prefix: defaultPrefix, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping reports round-trip latency to the server.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return 0, unavailable(err)
	}
	return time.Since(start), nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func (s *Store) accountKey(id string) string {
	return s.prefix + ":a:" + id
}

func (s *Store) emailKey(email string) string {
	return s.prefix + ":e:" + strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) tokenPrefix() string {
	return s.prefix + ":t:"
}

func (s *Store) tokenKey(hash string) string {
	return s.tokenPrefix() + hash
}

func (s *Store) ownerPrefix() string {
	return s.prefix + ":u:"
}

func (s *Store) ownerKey(accountID string) string {
	return s.ownerPrefix() + accountID
}

func (s *Store) expiryKey() string {
	return s.prefix + ":tx"
}

func (s *Store) revokedKey() string {
	return s.prefix + ":tr"
}

func (s *Store) federatedKey(origin, externalID string) string {
	return s.prefix + ":f:" + origin + ":" + externalID
}

// federatedKeyOf returns the index key for a, or "" when a is not linked.
func (s *Store) federatedKeyOf(a *store.Account) string {
	if a.FederatedID == "" {
		return ""
	}
	return s.federatedKey(a.AuthOrigin, a.FederatedID)
}

func (s *Store) CreateAccount(ctx context.Context, in store.NewAccount) (*store.Account, error) {
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
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("redis: encode account: %w", err)
	}

	fedKey, hasFed := s.federatedKeyOf(a), "0"
	if fedKey != "" {
		hasFed = "1"
	} else {
		fedKey = s.federatedKey(in.AuthOrigin, "")
	}

	res, err := createAccountLua.Run(ctx, s.rdb,
		[]string{s.accountKey(a.ID), s.emailKey(a.Email), fedKey},
		a.ID, data, hasFed,
	).Int64()
	if err != nil {
		return nil, unavailable(err)
	}
	switch res {
	case createDuplicateEmail:
		return nil, store.ErrDuplicateEmail
	case createDuplicateFed:
		return nil, store.ErrDuplicateFederatedID
	}
	return a, nil
}

type getter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

func (s *Store) loadAccount(ctx context.Context, c getter, id string) (*store.Account, error) {
	data, err := c.Get(ctx, s.accountKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable(err)
	}
	var a store.Account
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("redis: decode account %s: %w", id, err)
	}
	return &a, nil
}

func (s *Store) findByIndex(ctx context.Context, indexKey string) (*store.Account, error) {
	id, err := s.rdb.Get(ctx, indexKey).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return s.loadAccount(ctx, s.rdb, id)
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*store.Account, error) {
	return s.findByIndex(ctx, s.emailKey(email))
}

func (s *Store) FindAccountByID(ctx context.Context, id string) (*store.Account, error) {
	return s.loadAccount(ctx, s.rdb, id)
}

func (s *Store) FindAccountByFederatedID(ctx context.Context, origin, externalID string) (*store.Account, error) {
	if externalID == "" {
		return nil, nil
	}
	return s.findByIndex(ctx, s.federatedKey(origin, externalID))
}

// watchRetry runs fn under WATCH on keys, retrying when another client
// modified a watched key before EXEC.
func (s *Store) watchRetry(ctx context.Context, fn func(tx *goredis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.rdb.Watch(ctx, fn, keys...)
		if !errors.Is(err, goredis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("%w: transaction retries exhausted", ErrUnavailable)
}

func (s *Store) UpdateAccount(ctx context.Context, id string, u store.AccountUpdate) (*store.Account, error) {
	key := s.accountKey(id)
	var out *store.Account

	err := s.watchRetry(ctx, func(tx *goredis.Tx) error {
		a, err := s.loadAccount(ctx, tx, id)
		if err != nil {
			return err
		}
		if a == nil {
			return store.ErrNotFound
		}

		oldFed := s.federatedKeyOf(a)
		u.Apply(a)
		a.UpdatedAt = s.now().UTC()
		newFed := s.federatedKeyOf(a)

		if newFed != "" && newFed != oldFed {
			if err := tx.Watch(ctx, newFed).Err(); err != nil {
				return unavailable(err)
			}
			owner, err := tx.Get(ctx, newFed).Result()
			switch {
			case err == nil && owner != id:
				return store.ErrDuplicateFederatedID
			case err != nil && !errors.Is(err, goredis.Nil):
				return unavailable(err)
			}
		}

		data, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("redis: encode account: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			if oldFed != "" && oldFed != newFed {
				pipe.Del(ctx, oldFed)
			}
			if newFed != "" {
				pipe.Set(ctx, newFed, id, 0)
			}
			return nil
		})
		if err != nil {
			return err
		}
		out = a
		return nil
	}, key)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) (*store.Account, error) {
	key, owned := s.accountKey(id), s.ownerKey(id)
	var out *store.Account

	err := s.watchRetry(ctx, func(tx *goredis.Tx) error {
		a, err := s.loadAccount(ctx, tx, id)
		if err != nil {
			return err
		}
		if a == nil {
			return store.ErrNotFound
		}
		hashes, err := tx.SMembers(ctx, owned).Result()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return unavailable(err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Del(ctx, key, s.emailKey(a.Email), owned)
			if fed := s.federatedKeyOf(a); fed != "" {
				pipe.Del(ctx, fed)
			}
			for _, h := range hashes {
				pipe.Del(ctx, s.tokenKey(h))
				pipe.ZRem(ctx, s.expiryKey(), h)
				pipe.SRem(ctx, s.revokedKey(), h)
			}
			return nil
		})
		if err != nil {
			return err
		}
		out = a
		return nil
	}, key, owned)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, tokenHash, accountID string, expiresAt time.Time) (*store.RefreshToken, error) {
	rt := store.RefreshToken{
		TokenHash: tokenHash,
		AccountID: accountID,
		ExpiresAt: time.UnixMilli(expiresAt.UnixMilli()).UTC(),
		CreatedAt: time.UnixMilli(s.now().UnixMilli()).UTC(),
	}
	res, err := createTokenLua.Run(ctx, s.rdb,
		[]string{s.accountKey(accountID), s.tokenKey(tokenHash), s.ownerKey(accountID), s.expiryKey()},
		tokenHash, accountID, rt.ExpiresAt.UnixMilli(), rt.CreatedAt.UnixMilli(),
	).Int64()
	if err != nil {
		return nil, unavailable(err)
	}
	switch res {
	case tokenAccountMissing:
		return nil, store.ErrNotFound
	case tokenDuplicateRecord:
		return nil, store.ErrDuplicateToken
	}
	return &rt, nil
}

// decodeToken builds a record from HGETALL output; ok is false for an empty map.
func decodeToken(hash string, fields map[string]string) (store.RefreshToken, bool, error) {
	if len(fields) == 0 {
		return store.RefreshToken{}, false, nil
	}
	exp, err := strconv.ParseInt(fields["exp"], 10, 64)
	if err != nil {
		return store.RefreshToken{}, false, fmt.Errorf("redis: decode token exp: %w", err)
	}
	created, err := strconv.ParseInt(fields["created"], 10, 64)
	if err != nil {
		return store.RefreshToken{}, false, fmt.Errorf("redis: decode token created: %w", err)
	}
	return store.RefreshToken{
		TokenHash: hash,
		AccountID: fields["account"],
		ExpiresAt: time.UnixMilli(exp).UTC(),
		Revoked:   fields["revoked"] == "1",
		CreatedAt: time.UnixMilli(created).UTC(),
	}, true, nil
}

func (s *Store) FindRefreshToken(ctx context.Context, tokenHash string) (*store.RefreshToken, error) {
	fields, err := s.rdb.HGetAll(ctx, s.tokenKey(tokenHash)).Result()
	if err != nil {
		return nil, unavailable(err)
	}
	rt, ok, err := decodeToken(tokenHash, fields)
	if err != nil || !ok {
		return nil, err
	}
	a, err := s.loadAccount(ctx, s.rdb, rt.AccountID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		// Account deleted between the two reads; the token went with it.
		return nil, nil
	}
	rt.Account = a
	return &rt, nil
}

func (s *Store) RevokeRefreshToken(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	n, err := revokeTokenLua.Run(ctx, s.rdb,
		[]string{s.tokenKey(tokenHash), s.revokedKey()},
		now.UnixMilli(), tokenHash,
	).Int64()
	if err != nil {
		return false, unavailable(err)
	}
	return n == 1, nil
}

func (s *Store) RevokeAllRefreshTokens(ctx context.Context, accountID string, now time.Time) (int64, error) {
	n, err := revokeAllLua.Run(ctx, s.rdb,
		[]string{s.ownerKey(accountID), s.revokedKey()},
		now.UnixMilli(), s.tokenPrefix(),
	).Int64()
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}

func (s *Store) ListRefreshTokens(ctx context.Context, accountID string) ([]store.RefreshToken, error) {
	hashes, err := s.rdb.SMembers(ctx, s.ownerKey(accountID)).Result()
	if err != nil {
		return nil, unavailable(err)
	}
	if len(hashes) == 0 {
		return nil, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*goredis.MapStringStringCmd, len(hashes))
	for i, h := range hashes {
		cmds[i] = pipe.HGetAll(ctx, s.tokenKey(h))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, unavailable(err)
	}

	out := make([]store.RefreshToken, 0, len(hashes))
	for i, cmd := range cmds {
		rt, ok, err := decodeToken(hashes[i], cmd.Val())
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].TokenHash < out[j].TokenHash
	})
	return out, nil
}

func (s *Store) PurgeExpiredOrRevoked(ctx context.Context, now time.Time) (int64, error) {
	n, err := purgeLua.Run(ctx, s.rdb,
		[]string{s.expiryKey(), s.revokedKey()},
		now.UnixMilli(), s.tokenPrefix(), s.ownerPrefix(),
	).Int64()
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}
