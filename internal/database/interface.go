package database

import (
	"context"

	"github.com/koustreak/sqlgate/internal/config"
)

// Connector opens one session against a resolved configuration.
// Each call dials a fresh connection; nothing is pooled between calls.
type Connector interface {
	Connect(ctx context.Context, cfg config.Config) (Session, error)
}

// Session is an exclusive handle to one database connection.
// It is owned by a single operation call and must be closed before that
// call returns.
type Session interface {
	// Query runs a statement that returns rows.
	Query(ctx context.Context, stmt Statement) (Rows, error)

	// Exec runs a statement that does not return rows.
	Exec(ctx context.Context, stmt Statement) (Result, error)

	// Close releases the connection.
	Close() error
}

// Result is the outcome of Exec.
type Result struct {
	RowsAffected int64
	LastInsertID int64
}

// Rows is an abstraction over a database result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	// Next advances to the next row.
	// Returns false when no more rows exist or on error.
	Next() bool

	// Scan copies the current row's columns into the provided destinations.
	Scan(dest ...any) error

	// Columns returns the column names of the result set.
	Columns() ([]string, error)

	// Close releases resources held by the result set.
	Close()

	// Err returns any error encountered during iteration.
	Err() error
}
