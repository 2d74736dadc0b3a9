// Package mysql implements database.Connector and database.Session on top of
// github.com/go-sql-driver/mysql.
//
// Every Connect dials a dedicated connection: a *sql.DB capped at one open
// connection with a single *sql.Conn checked out of it. Closing the session
// closes both, so nothing outlives the operation call that opened it.
package mysql

import (
	"context"
	"database/sql"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/hashicorp/go-multierror"

	"github.com/koustreak/sqlgate/internal/config"
	"github.com/koustreak/sqlgate/internal/database"
	"github.com/koustreak/sqlgate/internal/logger"
)

// Connector opens MySQL sessions.
type Connector struct {
	log *logger.Logger
}

// NewConnector returns a Connector. A nil log discards debug output.
func NewConnector(log *logger.Logger) *Connector {
	if log == nil {
		log = logger.Nop()
	}
	return &Connector{log: log}
}

// Connect dials the server described by cfg and verifies the connection.
func (c *Connector) Connect(ctx context.Context, cfg config.Config) (database.Session, error) {
	connector, err := gomysql.NewConnector(driverConfig(cfg))
	if err != nil {
		return nil, connectError(err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s, err := open(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	c.log.With().Str("dsn", buildDSN(cfg)).Logger().Debug("session opened")
	return s, nil
}

// open checks a single connection out of db and pings it.
func open(ctx context.Context, db *sql.DB) (*Session, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, connectError(err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, connectError(err)
	}
	return &Session{db: db, conn: conn}, nil
}

// Session is one MySQL connection. It is not safe for concurrent use.
type Session struct {
	db   *sql.DB
	conn *sql.Conn
}

// Query runs a row-returning statement.
func (s *Session) Query(ctx context.Context, stmt database.Statement) (database.Rows, error) {
	rows, err := s.conn.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, statementError(err)
	}
	return &mysqlRows{rows: rows}, nil
}

// Exec runs a statement and reports affected rows and the last insert id.
func (s *Session) Exec(ctx context.Context, stmt database.Statement) (database.Result, error) {
	res, err := s.conn.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return database.Result{}, statementError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return database.Result{}, statementError(err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return database.Result{}, statementError(err)
	}
	return database.Result{RowsAffected: affected, LastInsertID: lastID}, nil
}

// Close returns the connection and closes its pool.
func (s *Session) Close() error {
	var result *multierror.Error
	if err := s.conn.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.db.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// --- sql.Rows wrapper ---

type mysqlRows struct {
	rows *sql.Rows
}

func (r *mysqlRows) Next() bool             { return r.rows.Next() }
func (r *mysqlRows) Scan(dest ...any) error { return scanError(r.rows.Scan(dest...)) }
func (r *mysqlRows) Close()                 { _ = r.rows.Close() }
func (r *mysqlRows) Err() error             { return statementError(r.rows.Err()) }

func (r *mysqlRows) Columns() ([]string, error) {
	cols, err := r.rows.Columns()
	return cols, statementError(err)
}
