package database

import (
	"database/sql"
	"fmt"
)

// ColumnInfo is one row of DESCRIBE <table>.
type ColumnInfo struct {
	Field   string  `json:"Field"`
	Type    string  `json:"Type"`
	Null    string  `json:"Null"`
	Key     string  `json:"Key"`
	Default *string `json:"Default"`
	Extra   string  `json:"Extra"`
}

// Nullable reports whether the column accepts NULL.
func (c ColumnInfo) Nullable() bool { return c.Null == "YES" }

// IsPrimary reports whether the column is part of the primary key.
func (c ColumnInfo) IsPrimary() bool { return c.Key == "PRI" }

// ScanColumns reads a DESCRIBE result set. It closes rows.
func ScanColumns(rows Rows) ([]ColumnInfo, error) {
	defer rows.Close()

	cols := make([]ColumnInfo, 0)
	for rows.Next() {
		var c ColumnInfo
		var def sql.NullString
		if err := rows.Scan(&c.Field, &c.Type, &c.Null, &c.Key, &def, &c.Extra); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		if def.Valid {
			c.Default = &def.String
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}
