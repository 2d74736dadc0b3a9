package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsReadStatement(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"SELECT 1", true},
		{"  select * from t", true},
		{"\nShow tables", true},
		{"describe users", true},
		{"EXPLAIN SELECT 1", true},
		{"UPDATE t SET x=1 WHERE id=1", false},
		{"INSERT INTO t VALUES (1)", false},
		{"with x as (select 1) select * from x", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, IsReadStatement(tt.query))
		})
	}
}

func TestStructuralStatements(t *testing.T) {
	assert.Equal(t, "SHOW TABLES", ShowTables("").SQL)
	assert.Equal(t, "SHOW TABLES FROM shop", ShowTables("shop").SQL)
	assert.Equal(t, "DESCRIBE users", Describe("users").SQL)
	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS users (id INT AUTO_INCREMENT PRIMARY KEY, name VARCHAR(100))",
		CreateTable("users", "id INT AUTO_INCREMENT PRIMARY KEY, name VARCHAR(100)").SQL)
	assert.Equal(t, "SELECT DATABASE()", CurrentDatabase().SQL)
	assert.Empty(t, ShowTables("").Args)
}

func TestRaw(t *testing.T) {
	stmt := Raw("SELECT * FROM t WHERE id = ?", 7)
	assert.Equal(t, "SELECT * FROM t WHERE id = ?", stmt.SQL)
	assert.Equal(t, []any{7}, stmt.Args)
}

// columnsAndMarks splits "INSERT INTO t (a, b) VALUES (?, ?)" into its lists.
func columnsAndMarks(t *testing.T, sql string) ([]string, []string) {
	t.Helper()
	open := strings.Index(sql, "(")
	mid := strings.Index(sql, ") VALUES (")
	require.Positive(t, open)
	require.Positive(t, mid)
	cols := strings.Split(sql[open+1:mid], ", ")
	marks := strings.Split(strings.TrimSuffix(sql[mid+len(") VALUES ("):], ")"), ", ")
	return cols, marks
}

func TestInsert_ColumnsMatchValues(t *testing.T) {
	values := Values{"name": "a", "age": 3}

	for i := 0; i < 50; i++ {
		stmt := Insert("t", values)
		cols, marks := columnsAndMarks(t, stmt.SQL)

		require.Len(t, cols, 2)
		require.Len(t, marks, 2)
		require.Len(t, stmt.Args, 2)
		assert.True(t, strings.HasPrefix(stmt.SQL, "INSERT INTO t ("))
		for j, c := range cols {
			assert.Equal(t, values[Fragment(c)], stmt.Args[j], "column %s bound to wrong value", c)
			assert.Equal(t, "?", marks[j])
		}
	}
}

func TestInsert_Shape(t *testing.T) {
	stmt := Insert("users", Values{"name": "a", "age": 3, "email": "a@x"})
	assert.Equal(t, "INSERT INTO users (age, email, name) VALUES (?, ?, ?)", stmt.SQL)
	assert.Equal(t, []any{3, "a@x", "a"}, stmt.Args)
}

func TestUpdate(t *testing.T) {
	stmt := Update("users", Values{"name": "b", "age": 4}, "id = ? AND org = ?", 10, "acme")

	assert.Equal(t, "UPDATE users SET age = ?, name = ? WHERE id = ? AND org = ?", stmt.SQL)
	assert.Equal(t, []any{4, "b", 10, "acme"}, stmt.Args)
}

func TestDelete(t *testing.T) {
	stmt := Delete("users", "id = ?", 10)
	assert.Equal(t, "DELETE FROM users WHERE id = ?", stmt.SQL)
	assert.Equal(t, []any{10}, stmt.Args)

	assert.Empty(t, Delete("users", "1=1").Args)
}

func TestFragmentsAreNotEscaped(t *testing.T) {
	stmt := Delete("users; DROP TABLE users", "1=1")
	assert.Equal(t, "DELETE FROM users; DROP TABLE users WHERE 1=1", stmt.SQL)
}
