package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrEthical07/authcore/store"
)

const (
	constraintEmail     = "accounts_email_key"
	constraintFederated = "accounts_federated_key"
	constraintTokenPK   = "refresh_tokens_pkey"
)

// constraintError maps constraint violations onto store sentinels. It returns
// nil for errors it does not recognise.
func constraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		switch pgErr.ConstraintName {
		case constraintEmail:
			return store.ErrDuplicateEmail
		case constraintFederated:
			return store.ErrDuplicateFederatedID
		case constraintTokenPK:
			return store.ErrDuplicateToken
		}
	case pgerrcode.ForeignKeyViolation:
		return store.ErrNotFound
	}
	return nil
}
