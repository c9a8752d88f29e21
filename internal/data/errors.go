package data

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrInvalidRoleMapping is returned when a mapping write violates schema
// constraints (bad level value, missing role id).
var ErrInvalidRoleMapping = errors.New("invalid role mapping")

// mapWriteErr translates Postgres constraint violations into sentinel errors
// callers can match with errors.Is.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
			return fmt.Errorf("%w: %s", ErrInvalidRoleMapping, pgErr.ConstraintName)
		}
	}
	return err
}
