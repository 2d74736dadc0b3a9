package gateway

import (
	"encoding/json"

	"github.com/koustreak/sqlgate/internal/config"
	"github.com/koustreak/sqlgate/internal/database"
)

// Operation names, as used in logs and routes.
const (
	OpExecuteQuery  = "execute_query"
	OpListTables    = "list_tables"
	OpDescribeTable = "describe_table"
	OpCreateTable   = "create_table"
	OpInsertData    = "insert_data"
	OpUpdateData    = "update_data"
	OpDeleteData    = "delete_data"
	OpUseDatabase   = "use_database"
)

// QueryInput is the input of ExecuteQuery. Config, here and on every other
// input, overrides the connection settings for that call only.
type QueryInput struct {
	Query  string
	Params []any
	Config *config.Override
}

// ListTablesInput names the database to list; empty means the current one.
type ListTablesInput struct {
	Database database.Fragment // optional
	Config   *config.Override
}

// DescribeTableInput is the input of DescribeTable.
type DescribeTableInput struct {
	Table  database.Fragment
	Config *config.Override
}

// CreateTableInput carries the table name and its column definitions.
type CreateTableInput struct {
	Table   database.Fragment
	Columns database.Fragment // e.g. "id INT AUTO_INCREMENT PRIMARY KEY, name VARCHAR(100)"
	Config  *config.Override
}

// InsertInput is one row to insert, keyed by column.
type InsertInput struct {
	Table  database.Fragment
	Data   database.Values
	Config *config.Override
}

// UpdateInput sets Data on the rows matching Condition.
type UpdateInput struct {
	Table     database.Fragment
	Data      database.Values
	Condition database.Fragment
	Params    []any // bound after the Data values
	Config    *config.Override
}

// DeleteInput removes the rows matching Condition.
type DeleteInput struct {
	Table     database.Fragment
	Condition database.Fragment
	Params    []any
	Config    *config.Override
}

// UseDatabaseInput names the database later calls default to.
type UseDatabaseInput struct {
	Database string
	Config   *config.Override
}

// QueryResult holds either a result set (read statements) or the outcome of
// a write.
type QueryResult struct {
	Read         bool
	Rows         []map[string]any
	RowCount     int
	AffectedRows int64
	LastInsertID int64
}

// MarshalJSON emits only the fields that belong to the statement kind.
func (r *QueryResult) MarshalJSON() ([]byte, error) {
	if r.Read {
		return json.Marshal(struct {
			Success  bool             `json:"success"`
			Rows     []map[string]any `json:"rows"`
			RowCount int              `json:"row_count"`
		}{true, r.Rows, r.RowCount})
	}
	return json.Marshal(struct {
		Success      bool  `json:"success"`
		AffectedRows int64 `json:"affected_rows"`
		LastInsertID int64 `json:"last_insert_id"`
	}{true, r.AffectedRows, r.LastInsertID})
}

// ListTablesResult is the output of ListTables.
type ListTablesResult struct {
	Success  bool     `json:"success"`
	Database string   `json:"database"`
	Tables   []string `json:"tables"`
	Count    int      `json:"count"`
}

// DescribeTableResult lists the columns of one table.
type DescribeTableResult struct {
	Success bool                  `json:"success"`
	Table   string                `json:"table"`
	Columns []database.ColumnInfo `json:"columns"`
}

// MessageResult is returned by operations that report only a message.
type MessageResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// InsertResult carries the AUTO_INCREMENT id of the inserted row, or 0.
type InsertResult struct {
	Success    bool   `json:"success"`
	InsertedID int64  `json:"inserted_id"`
	Message    string `json:"message"`
}

// AffectedResult is the output of UpdateData and DeleteData.
type AffectedResult struct {
	Success      bool   `json:"success"`
	AffectedRows int64  `json:"affected_rows"`
	Message      string `json:"message"`
}

// UseDatabaseResult reports the database now in effect.
type UseDatabaseResult struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	CurrentDatabase string `json:"current_database"`
}
