// Package sqlite implements store.CredentialStore on a single SQLite file using
// the pure-Go modernc.org/sqlite driver.
//
// Timestamps are stored as UTC unix milliseconds.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrEthical07/authcore/store"
)

//go:embed schema.sql
var schemaSQL string

const accountColumns = `id, email, COALESCE(password_hash, ''), first_name, last_name, avatar_url,
	auth_origin, COALESCE(federated_id, ''), email_confirmed, last_authenticated_at, created_at, updated_at`

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Store is a SQLite-backed credential store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.CredentialStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite: storage path is required")
	}

	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// SQLite admits one writer at a time; a single connection keeps the
	// conditional updates free of SQLITE_BUSY retries.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ping checks that the database file is still reachable.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("sqlite: ping: %w", err)
	}
	return time.Since(start), nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner, extra ...any) (*store.Account, error) {
	var (
		a                    store.Account
		lastAuth             sql.NullInt64
		createdAt, updatedAt int64
	)
	dest := append(extra,
		&a.ID, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.AvatarURL,
		&a.AuthOrigin, &a.FederatedID, &a.EmailConfirmed, &lastAuth, &createdAt, &updatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if lastAuth.Valid {
		t := fromMillis(lastAuth.Int64)
		a.LastAuthenticatedAt = &t
	}
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updatedAt)
	return &a, nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func (s *Store) findAccount(ctx context.Context, op, where string, args ...any) (*store.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE "+where, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: %s: %w", op, err)
	}
	return a, nil
}

func (s *Store) CreateAccount(ctx context.Context, in store.NewAccount) (*store.Account, error) {
	now := toMillis(s.now())
	a, err := scanAccount(s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (
			id, email, password_hash, first_name, last_name, avatar_url,
			auth_origin, federated_id, email_confirmed, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+accountColumns,
		in.ID, in.Email, nullIfEmpty(in.PasswordHash), in.FirstName, in.LastName, in.AvatarURL,
		in.AuthOrigin, nullIfEmpty(in.FederatedID), in.EmailConfirmed, now, now,
	))
	if err != nil {
		if mapped := constraintError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("sqlite: create account: %w", err)
	}
	return a, nil
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*store.Account, error) {
	return s.findAccount(ctx, "find account by email", "lower(email) = lower(?)", email)
}

func (s *Store) FindAccountByID(ctx context.Context, id string) (*store.Account, error) {
	return s.findAccount(ctx, "find account by id", "id = ?", id)
}

func (s *Store) FindAccountByFederatedID(ctx context.Context, origin, externalID string) (*store.Account, error) {
	if externalID == "" {
		return nil, nil
	}
	return s.findAccount(ctx, "find account by federated id", "auth_origin = ? AND federated_id = ?", origin, externalID)
}

func (s *Store) UpdateAccount(ctx context.Context, id string, u store.AccountUpdate) (*store.Account, error) {
	sets := []string{"updated_at = ?"}
	args := []any{toMillis(s.now())}
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
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
		add("last_authenticated_at", toMillis(*u.LastAuthenticatedAt))
	}
	args = append(args, id)

	a, err := scanAccount(s.db.QueryRowContext(ctx,
		"UPDATE accounts SET "+strings.Join(sets, ", ")+" WHERE id = ? RETURNING "+accountColumns,
		args...,
	))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, store.ErrNotFound
	case err != nil:
		if mapped := constraintError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("sqlite: update account: %w", err)
	}
	return a, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) (*store.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx, "DELETE FROM accounts WHERE id = ? RETURNING "+accountColumns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: delete account: %w", err)
	}
	return a, nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, tokenHash, accountID string, expiresAt time.Time) (*store.RefreshToken, error) {
	rt := store.RefreshToken{
		TokenHash: tokenHash,
		AccountID: accountID,
		ExpiresAt: fromMillis(toMillis(expiresAt)),
		CreatedAt: fromMillis(toMillis(s.now())),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token_hash, account_id, expires_at, revoked, created_at)
		VALUES (?, ?, ?, 0, ?)
	`, tokenHash, accountID, toMillis(rt.ExpiresAt), toMillis(rt.CreatedAt))
	if err != nil {
		if mapped := constraintError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("sqlite: create refresh token: %w", err)
	}
	return &rt, nil
}

func (s *Store) FindRefreshToken(ctx context.Context, tokenHash string) (*store.RefreshToken, error) {
	var (
		rt                   store.RefreshToken
		expiresAt, createdAt int64
	)
	a, err := scanAccount(s.db.QueryRowContext(ctx, `
		SELECT t.token_hash, t.account_id, t.expires_at, t.revoked, t.created_at,
			a.id, a.email, COALESCE(a.password_hash, ''), a.first_name, a.last_name, a.avatar_url,
			a.auth_origin, COALESCE(a.federated_id, ''), a.email_confirmed, a.last_authenticated_at,
			a.created_at, a.updated_at
		FROM refresh_tokens t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.token_hash = ?
	`, tokenHash), &rt.TokenHash, &rt.AccountID, &expiresAt, &rt.Revoked, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find refresh token: %w", err)
	}
	rt.ExpiresAt = fromMillis(expiresAt)
	rt.CreatedAt = fromMillis(createdAt)
	rt.Account = a
	return &rt, nil
}

func (s *Store) RevokeRefreshToken(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET revoked = 1
		WHERE token_hash = ? AND revoked = 0 AND expires_at > ?
	`, tokenHash, toMillis(now))
	if err != nil {
		return false, fmt.Errorf("sqlite: revoke refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: revoke refresh token: %w", err)
	}
	return n == 1, nil
}

func (s *Store) RevokeAllRefreshTokens(ctx context.Context, accountID string, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET revoked = 1
		WHERE account_id = ? AND revoked = 0 AND expires_at > ?
	`, accountID, toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("sqlite: revoke all refresh tokens: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) ListRefreshTokens(ctx context.Context, accountID string) ([]store.RefreshToken, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token_hash, account_id, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE account_id = ?
		ORDER BY created_at, token_hash
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list refresh tokens: %w", err)
	}
	defer rows.Close()

	var out []store.RefreshToken
	for rows.Next() {
		var (
			rt                   store.RefreshToken
			expiresAt, createdAt int64
		)
		if err := rows.Scan(&rt.TokenHash, &rt.AccountID, &expiresAt, &rt.Revoked, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan refresh token: %w", err)
		}
		rt.ExpiresAt = fromMillis(expiresAt)
		rt.CreatedAt = fromMillis(createdAt)
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list refresh tokens: %w", err)
	}
	return out, nil
}

func (s *Store) PurgeExpiredOrRevoked(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE revoked = 1 OR expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("sqlite: purge refresh tokens: %w", err)
	}
	return res.RowsAffected()
}
