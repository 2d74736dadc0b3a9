package mysql

import (
	"context"
	"errors"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/koustreak/sqlgate/internal/errs"
)

// mapError translates go-sql-driver/mysql errors into *errs.Error.
// Cancellation and deadlines become ErrKindTimeout; everything else gets
// kind. The driver error is kept as Cause so its text can be classified.
func mapError(err error, kind errs.ErrKind, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	return errs.Wrap(kind, msg, err)
}

// connectError maps a failure to open a session.
func connectError(err error) error {
	return mapError(err, errs.ErrKindConnectionFailed, "connect failed")
}

// statementError maps a failure while running a statement or reading its rows.
// Errors the server sent back carry their MySQL error number.
func statementError(err error) error {
	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return errs.Wrap(errs.ErrKindQueryFailed, "server rejected statement", err)
	}
	return mapError(err, errs.ErrKindQueryFailed, "statement failed")
}

// scanError maps a failure to copy a row into Go values. database/sql raises
// these locally, so they are internal faults rather than statement failures.
func scanError(err error) error {
	return mapError(err, errs.ErrKindInternal, "reading row")
}
