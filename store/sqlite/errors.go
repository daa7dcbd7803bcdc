package sqlite

import (
	"errors"
	"strings"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/MrEthical07/authcore/store"
)

// constraintError maps SQLite constraint failures onto store sentinels. SQLite
// names the violated columns or index only in the message text.
func constraintError(err error) error {
	var sqliteErr *sqlitedrv.Error
	if !errors.As(err, &sqliteErr) {
		return nil
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT,
		sqlite3.SQLITE_CONSTRAINT_UNIQUE,
		sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
		sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
	default:
		return nil
	}

	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY"):
		return store.ErrNotFound
	case strings.Contains(msg, "federated_id"):
		return store.ErrDuplicateFederatedID
	case strings.Contains(msg, "accounts_email_key"), strings.Contains(msg, "accounts.email"):
		return store.ErrDuplicateEmail
	case strings.Contains(msg, "refresh_tokens.token_hash"):
		return store.ErrDuplicateToken
	}
	return nil
}
