// Package gateway runs the exposed database operations.
//
// Each operation follows the same shape: validate required input, resolve
// the connection configuration, acquire a session, run one statement, and
// close the session on every path out. Errors are returned as *errs.Error
// values; no operation panics out to its caller.
package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/koustreak/sqlgate/internal/config"
	"github.com/koustreak/sqlgate/internal/database"
	"github.com/koustreak/sqlgate/internal/errs"
	"github.com/koustreak/sqlgate/internal/logger"
)

// Executor runs operations. It is safe for concurrent use; the only state
// shared between calls is the resolver's process override.
type Executor struct {
	resolver *config.Resolver
	est      *database.Establisher
	log      *logger.Logger
}

// New returns an Executor.
func New(resolver *config.Resolver, est *database.Establisher, log *logger.Logger) *Executor {
	if log == nil {
		log = logger.Nop()
	}
	return &Executor{resolver: resolver, est: est, log: log}
}

// run acquires a session for cfg, calls fn with it and closes it. Errors
// from fn are classified; panics become internal errors.
func (e *Executor) run(ctx context.Context, op string, cfg config.Config, fn func(database.Session) error) (err error) {
	base := logger.FromContext(ctx)
	if base == nil {
		base = e.log
	}
	log := base.With().Str("operation", op).Logger()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = errs.Wrap(errs.ErrKindInternal, "unexpected error during "+op, fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			log.ErrorWith("operation failed", err, map[string]interface{}{
				"kind":     errs.KindOf(err).String(),
				"category": errs.CategoryOf(err).String(),
			})
			return
		}
		log.Debugf("operation completed in %s", time.Since(start))
	}()

	sess, err := e.est.Acquire(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.WarnWith("closing session", cerr, nil)
		}
	}()

	if err := fn(sess); err != nil {
		return database.ClassifyError(err, op)
	}
	return nil
}

func invalid(msg string) error {
	return errs.New(errs.ErrKindInvalidInput, msg)
}

// blank reports whether a required field is empty or only whitespace.
func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ExecuteQuery runs caller-supplied SQL with positional parameters.
// SELECT, SHOW, DESCRIBE and EXPLAIN return rows; anything else returns the
// affected row count and last insert id.
func (e *Executor) ExecuteQuery(ctx context.Context, in QueryInput) (*QueryResult, error) {
	if blank(in.Query) {
		return nil, invalid("query must not be empty")
	}

	var res *QueryResult
	err := e.run(ctx, OpExecuteQuery, e.resolver.Resolve(in.Config), func(s database.Session) error {
		stmt := database.Raw(in.Query, in.Params...)

		if database.IsReadStatement(in.Query) {
			rows, err := s.Query(ctx, stmt)
			if err != nil {
				return err
			}
			data, err := database.ScanRows(rows)
			if err != nil {
				return err
			}
			res = &QueryResult{Read: true, Rows: data, RowCount: len(data)}
			return nil
		}

		r, err := s.Exec(ctx, stmt)
		if err != nil {
			return err
		}
		res = &QueryResult{AffectedRows: r.RowsAffected, LastInsertID: r.LastInsertID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListTables lists the tables of in.Database, or of the configured database.
func (e *Executor) ListTables(ctx context.Context, in ListTablesInput) (*ListTablesResult, error) {
	cfg := e.resolver.Resolve(in.Config)

	var tables []string
	err := e.run(ctx, OpListTables, cfg, func(s database.Session) error {
		rows, err := s.Query(ctx, database.ShowTables(in.Database))
		if err != nil {
			return err
		}
		tables, err = database.ScanStrings(rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	db := string(in.Database)
	if db == "" {
		db = cfg.Database
	}
	return &ListTablesResult{Success: true, Database: db, Tables: tables, Count: len(tables)}, nil
}

// DescribeTable returns the column layout of a table.
func (e *Executor) DescribeTable(ctx context.Context, in DescribeTableInput) (*DescribeTableResult, error) {
	if blank(string(in.Table)) {
		return nil, invalid("table name must not be empty")
	}

	var cols []database.ColumnInfo
	err := e.run(ctx, OpDescribeTable, e.resolver.Resolve(in.Config), func(s database.Session) error {
		rows, err := s.Query(ctx, database.Describe(in.Table))
		if err != nil {
			return err
		}
		cols, err = database.ScanColumns(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &DescribeTableResult{Success: true, Table: string(in.Table), Columns: cols}, nil
}

// CreateTable creates a table unless it already exists.
func (e *Executor) CreateTable(ctx context.Context, in CreateTableInput) (*MessageResult, error) {
	if blank(string(in.Table)) || blank(string(in.Columns)) {
		return nil, invalid("table name and column definitions must not be empty")
	}

	err := e.run(ctx, OpCreateTable, e.resolver.Resolve(in.Config), func(s database.Session) error {
		_, err := s.Exec(ctx, database.CreateTable(in.Table, in.Columns))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &MessageResult{Success: true, Message: fmt.Sprintf("table %s created", in.Table)}, nil
}

// InsertData inserts one row.
func (e *Executor) InsertData(ctx context.Context, in InsertInput) (*InsertResult, error) {
	if blank(string(in.Table)) || len(in.Data) == 0 {
		return nil, invalid("table name and data must not be empty")
	}

	var r database.Result
	err := e.run(ctx, OpInsertData, e.resolver.Resolve(in.Config), func(s database.Session) error {
		var err error
		r, err = s.Exec(ctx, database.Insert(in.Table, in.Data))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &InsertResult{
		Success:    true,
		InsertedID: r.LastInsertID,
		Message:    fmt.Sprintf("row inserted into %s", in.Table),
	}, nil
}

// UpdateData updates the rows matching the condition.
func (e *Executor) UpdateData(ctx context.Context, in UpdateInput) (*AffectedResult, error) {
	if blank(string(in.Table)) || len(in.Data) == 0 || blank(string(in.Condition)) {
		return nil, invalid("table name, data and condition must not be empty")
	}

	var r database.Result
	err := e.run(ctx, OpUpdateData, e.resolver.Resolve(in.Config), func(s database.Session) error {
		var err error
		r, err = s.Exec(ctx, database.Update(in.Table, in.Data, in.Condition, in.Params...))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &AffectedResult{
		Success:      true,
		AffectedRows: r.RowsAffected,
		Message:      fmt.Sprintf("rows in %s updated", in.Table),
	}, nil
}

// DeleteData deletes the rows matching the condition.
func (e *Executor) DeleteData(ctx context.Context, in DeleteInput) (*AffectedResult, error) {
	if blank(string(in.Table)) || blank(string(in.Condition)) {
		return nil, invalid("table name and condition must not be empty")
	}

	var r database.Result
	err := e.run(ctx, OpDeleteData, e.resolver.Resolve(in.Config), func(s database.Session) error {
		var err error
		r, err = s.Exec(ctx, database.Delete(in.Table, in.Condition, in.Params...))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &AffectedResult{
		Success:      true,
		AffectedRows: r.RowsAffected,
		Message:      fmt.Sprintf("rows deleted from %s", in.Table),
	}, nil
}

// UseDatabase checks that a session can be opened against the database and
// then makes it the default for later calls that do not name their own.
func (e *Executor) UseDatabase(ctx context.Context, in UseDatabaseInput) (*UseDatabaseResult, error) {
	if blank(in.Database) {
		return nil, invalid("database name must not be empty")
	}

	cfg := e.resolver.Resolve(in.Config)
	cfg.Database = in.Database

	var current sql.NullString
	err := e.run(ctx, OpUseDatabase, cfg, func(s database.Session) error {
		rows, err := s.Query(ctx, database.CurrentDatabase())
		if err != nil {
			return err
		}
		defer rows.Close()
		if rows.Next() {
			if err := rows.Scan(&current); err != nil {
				return err
			}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	e.resolver.Process().SetDatabase(in.Database)

	return &UseDatabaseResult{
		Success:         true,
		Message:         fmt.Sprintf("switched to database %s", in.Database),
		CurrentDatabase: current.String,
	}, nil
}
