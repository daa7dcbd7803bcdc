// Package postgres implements store.CredentialStore on PostgreSQL using pgx.
//
// Refresh-token revocation is a single conditional UPDATE, so concurrent
// rotations of one token are serialised by the row lock Postgres takes for it.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrEthical07/authcore/store"
)

//go:embed schema.sql
var schemaSQL string

// Store is a pgx-backed credential store.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.CredentialStore = (*Store)(nil)

// New wraps an existing pool. The caller owns the pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect parses dsn, opens a pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

// Ping reports round-trip latency to the database.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.pool.Ping(ctx); err != nil {
		return 0, fmt.Errorf("postgres: ping: %w", err)
	}
	return time.Since(start), nil
}

// EnsureSchema creates the tables and indexes if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

func accountColumns(prefix string) string {
	cols := []string{
		"id", "email", "COALESCE(%spassword_hash, '')", "first_name", "last_name", "avatar_url",
		"auth_origin", "COALESCE(%sfederated_id, '')", "email_confirmed", "last_authenticated_at",
		"created_at", "updated_at",
	}
	for i, c := range cols {
		if strings.Contains(c, "%s") {
			cols[i] = fmt.Sprintf(c, prefix)
		} else {
			cols[i] = prefix + c
		}
	}
	return strings.Join(cols, ", ")
}

func accountDest(a *store.Account) []any {
	return []any{
		&a.ID, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.AvatarURL,
		&a.AuthOrigin, &a.FederatedID, &a.EmailConfirmed, &a.LastAuthenticatedAt,
		&a.CreatedAt, &a.UpdatedAt,
	}
}

func normalize(a *store.Account) *store.Account {
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	if a.LastAuthenticatedAt != nil {
		t := a.LastAuthenticatedAt.UTC()
		a.LastAuthenticatedAt = &t
	}
	return a
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *Store) queryAccount(ctx context.Context, op, where string, args ...any) (*store.Account, error) {
	var a store.Account
	err := s.pool.QueryRow(ctx, "SELECT "+accountColumns("")+" FROM accounts WHERE "+where, args...).Scan(accountDest(&a)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: %s: %w", op, err)
	}
	return normalize(&a), nil
}

func (s *Store) CreateAccount(ctx context.Context, in store.NewAccount) (*store.Account, error) {
	var a store.Account
	err := s.pool.QueryRow(ctx, `
		INSERT INTO accounts (
			id, email, password_hash, first_name, last_name, avatar_url,
			auth_origin, federated_id, email_confirmed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+accountColumns(""),
		in.ID, in.Email, nullIfEmpty(in.PasswordHash), in.FirstName, in.LastName, in.AvatarURL,
		in.AuthOrigin, nullIfEmpty(in.FederatedID), in.EmailConfirmed,
	).Scan(accountDest(&a)...)
	if err != nil {
		if mapped := constraintError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("postgres: create account: %w", err)
	}
	return normalize(&a), nil
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*store.Account, error) {
	return s.queryAccount(ctx, "find account by email", "lower(email) = lower($1)", email)
}

func (s *Store) FindAccountByID(ctx context.Context, id string) (*store.Account, error) {
	return s.queryAccount(ctx, "find account by id", "id = $1", id)
}

func (s *Store) FindAccountByFederatedID(ctx context.Context, origin, externalID string) (*store.Account, error) {
	if externalID == "" {
		return nil, nil
	}
	return s.queryAccount(ctx, "find account by federated id", "auth_origin = $1 AND federated_id = $2", origin, externalID)
}

func (s *Store) UpdateAccount(ctx context.Context, id string, u store.AccountUpdate) (*store.Account, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if u.PasswordHash != nil {
		add("password_hash", nullIfEmpty(*u.PasswordHash))
	}
	if u.FirstName != nil {
		add("first_name", *u.FirstName)
	}
	if u.LastName != nil {
		add("last_name", *u.LastName)
	}
	if u.AvatarURL != nil {
		add("avatar_url", *u.AvatarURL)
	}
	if u.AuthOrigin != nil {
		add("auth_origin", *u.AuthOrigin)
	}
	if u.FederatedID != nil {
		add("federated_id", nullIfEmpty(*u.FederatedID))
	}
	if u.EmailConfirmed != nil {
		add("email_confirmed", *u.EmailConfirmed)
	}
	if u.LastAuthenticatedAt != nil {
		add("last_authenticated_at", u.LastAuthenticatedAt.UTC())
	}

	var a store.Account
	err := s.pool.QueryRow(ctx,
		"UPDATE accounts SET "+strings.Join(sets, ", ")+" WHERE id = $1 RETURNING "+accountColumns(""),
		args...,
	).Scan(accountDest(&a)...)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, store.ErrNotFound
	case err != nil:
		if mapped := constraintError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("postgres: update account: %w", err)
	}
	return normalize(&a), nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) (*store.Account, error) {
	var a store.Account
	err := s.pool.QueryRow(ctx, "DELETE FROM accounts WHERE id = $1 RETURNING "+accountColumns(""), id).Scan(accountDest(&a)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: delete account: %w", err)
	}
	return normalize(&a), nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, tokenHash, accountID string, expiresAt time.Time) (*store.RefreshToken, error) {
	rt := store.RefreshToken{TokenHash: tokenHash, AccountID: accountID, ExpiresAt: expiresAt.UTC()}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO refresh_tokens (token_hash, account_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, tokenHash, accountID, rt.ExpiresAt).Scan(&rt.CreatedAt)
	if err != nil {
		if mapped := constraintError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("postgres: create refresh token: %w", err)
	}
	rt.CreatedAt = rt.CreatedAt.UTC()
	return &rt, nil
}

func (s *Store) FindRefreshToken(ctx context.Context, tokenHash string) (*store.RefreshToken, error) {
	var (
		rt store.RefreshToken
		a  store.Account
	)
	dest := append([]any{&rt.TokenHash, &rt.AccountID, &rt.ExpiresAt, &rt.Revoked, &rt.CreatedAt}, accountDest(&a)...)
	err := s.pool.QueryRow(ctx, `
		SELECT t.token_hash, t.account_id, t.expires_at, t.revoked, t.created_at, `+accountColumns("a.")+`
		FROM refresh_tokens t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.token_hash = $1
	`, tokenHash).Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find refresh token: %w", err)
	}
	rt.ExpiresAt = rt.ExpiresAt.UTC()
	rt.CreatedAt = rt.CreatedAt.UTC()
	rt.Account = normalize(&a)
	return &rt, nil
}

func (s *Store) RevokeRefreshToken(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked = TRUE
		WHERE token_hash = $1 AND NOT revoked AND expires_at > $2
	`, tokenHash, now.UTC())
	if err != nil {
		return false, fmt.Errorf("postgres: revoke refresh token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) RevokeAllRefreshTokens(ctx context.Context, accountID string, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked = TRUE
		WHERE account_id = $1 AND NOT revoked AND expires_at > $2
	`, accountID, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("postgres: revoke all refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) ListRefreshTokens(ctx context.Context, accountID string) ([]store.RefreshToken, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT token_hash, account_id, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE account_id = $1
		ORDER BY created_at, token_hash
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list refresh tokens: %w", err)
	}
	defer rows.Close()

	var out []store.RefreshToken
	for rows.Next() {
		var rt store.RefreshToken
		if err := rows.Scan(&rt.TokenHash, &rt.AccountID, &rt.ExpiresAt, &rt.Revoked, &rt.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan refresh token: %w", err)
		}
		rt.ExpiresAt = rt.ExpiresAt.UTC()
		rt.CreatedAt = rt.CreatedAt.UTC()
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list refresh tokens: %w", err)
	}
	return out, nil
}

func (s *Store) PurgeExpiredOrRevoked(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE revoked OR expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("postgres: purge refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
