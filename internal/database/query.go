package database

import (
	"sort"
	"strings"
)

// Fragment is caller-trusted SQL text: a table name, a column name, a column
// definition list or a WHERE condition. Fragments are embedded into the
// statement verbatim. They are never quoted, escaped or validated, so a
// malformed fragment surfaces as a driver syntax error and an untrusted one
// can change the statement. Only data values travel as bound arguments.
type Fragment string

// Statement is SQL text plus its bound arguments, using MySQL ? placeholders.
type Statement struct {
	SQL  string
	Args []any
}

// readPrefixes are the statement verbs that produce a result set.
var readPrefixes = []string{"SELECT", "SHOW", "DESCRIBE", "EXPLAIN"}

// IsReadStatement reports whether query starts with a row-returning verb,
// ignoring case and leading whitespace.
func IsReadStatement(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	for _, p := range readPrefixes {
		if strings.HasPrefix(q, p) {
			return true
		}
	}
	return false
}

// Raw wraps caller-supplied statement text and its positional arguments.
func Raw(query string, args ...any) Statement {
	return Statement{SQL: query, Args: args}
}

// ShowTables lists tables of db, or of the session's database when db is empty.
func ShowTables(db Fragment) Statement {
	if db == "" {
		return Statement{SQL: "SHOW TABLES"}
	}
	return Statement{SQL: "SHOW TABLES FROM " + string(db)}
}

// Describe returns the column layout of table.
func Describe(table Fragment) Statement {
	return Statement{SQL: "DESCRIBE " + string(table)}
}

// CreateTable creates table with the given column definitions unless it exists.
func CreateTable(table, columns Fragment) Statement {
	return Statement{SQL: "CREATE TABLE IF NOT EXISTS " + string(table) + " (" + string(columns) + ")"}
}

// CurrentDatabase asks the server which database the session is using.
func CurrentDatabase() Statement {
	return Statement{SQL: "SELECT DATABASE()"}
}

// Values maps column names (trusted fragments) to data values (bound).
type Values map[Fragment]any

// sortedColumns returns the keys of v in a stable order so that column lists
// and argument lists built from the same map always line up.
func (v Values) sortedColumns() []Fragment {
	cols := make([]Fragment, 0, len(v))
	for c := range v {
		cols = append(cols, c)
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i] < cols[j] })
	return cols
}

// Insert builds
//
//	INSERT INTO <table> (<c1>, <c2>) VALUES (?, ?)
//
// with one argument per column, in column order.
func Insert(table Fragment, values Values) Statement {
	cols := values.sortedColumns()

	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		names[i] = string(c)
		marks[i] = "?"
		args[i] = values[c]
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(string(table))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString(") VALUES (")
	sb.WriteString(strings.Join(marks, ", "))
	sb.WriteString(")")

	return Statement{SQL: sb.String(), Args: args}
}

// Update builds
//
//	UPDATE <table> SET <c1> = ?, <c2> = ? WHERE <condition>
//
// Arguments are the set values in column order followed by conditionArgs.
func Update(table Fragment, values Values, condition Fragment, conditionArgs ...any) Statement {
	cols := values.sortedColumns()

	set := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(conditionArgs))
	for i, c := range cols {
		set[i] = string(c) + " = ?"
		args = append(args, values[c])
	}
	args = append(args, conditionArgs...)

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(string(table))
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(set, ", "))
	sb.WriteString(" WHERE ")
	sb.WriteString(string(condition))

	return Statement{SQL: sb.String(), Args: args}
}

// Delete builds DELETE FROM <table> WHERE <condition>.
func Delete(table, condition Fragment, conditionArgs ...any) Statement {
	return Statement{
		SQL:  "DELETE FROM " + string(table) + " WHERE " + string(condition),
		Args: conditionArgs,
	}
}
