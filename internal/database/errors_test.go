package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/sqlgate/internal/config"
	"github.com/koustreak/sqlgate/internal/errs"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want errs.Category
	}{
		{"missing table", "Error 1146 (42S02): Table 'shop.t' doesn't exist", errs.CategoryUnknownTable},
		{"unknown table", "Error 1051 (42S02): Unknown table 'shop.t'", errs.CategoryUnknownTable},
		{"unknown column", "Error 1054 (42S22): Unknown column 'nme' in 'field list'", errs.CategoryUnknownColumn},
		{"null", "Error 1048 (23000): Column 'name' cannot be null", errs.CategoryConstraintViolation},
		{"duplicate", "Error 1062 (23000): Duplicate entry 'a' for key 'name'", errs.CategoryConstraintViolation},
		{"too long", "Error 1406 (22001): Data too long for column 'name' at row 1", errs.CategoryConstraintViolation},
		{"foreign key", "Error 1451 (23000): Cannot delete or update a parent row: a foreign key constraint fails", errs.CategoryConstraintViolation},
		{"syntax", "Error 1064 (42000): You have an error in your SQL syntax; check the manual", errs.CategorySyntaxError},
		{"syntax lower", "You have a syntax error near 'WHERE'", errs.CategorySyntaxError},
		{"syntax upper", "SYNTAX ERROR at line 1", errs.CategorySyntaxError},
		{"access denied", "Error 1142 (42000): SELECT command denied... Access denied for user", errs.CategoryAccessDenied},
		{"unknown database", "Error 1049 (42000): Unknown database 'nope'", errs.CategoryUnknownDatabase},
		{"unmatched", "Error 1205 (HY000): Lock wait timeout exceeded", errs.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Classify(tt.msg)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_UnknownDatabaseRegardlessOfSurroundings(t *testing.T) {
	for _, msg := range []string{
		"Unknown database",
		"prefix: Unknown database 'x' suffix",
		"Unknown database 'x' and also a syntax error",
		"syntax error right before Unknown database",
	} {
		cat, hint := Classify(msg)
		assert.Equal(t, errs.CategoryUnknownDatabase, cat, msg)
		assert.NotEmpty(t, hint)
	}
}

func TestClassify_ExistenceBeforeSyntax(t *testing.T) {
	cat, _ := Classify("syntax error: Table 't' doesn't exist")
	assert.Equal(t, errs.CategoryUnknownTable, cat)
}

func TestClassify_UnmatchedHasNoHint(t *testing.T) {
	cat, hint := Classify("something odd happened")
	assert.Equal(t, errs.CategoryOther, cat)
	assert.Empty(t, hint)
}

func TestClassifyConnect(t *testing.T) {
	cfg := config.Config{Host: "db.internal", Port: 3307, User: "app", Database: "shop", ConnectTimeout: 5}

	tests := []struct {
		name     string
		msg      string
		want     errs.Category
		contains []string
	}{
		{"refused", "dial tcp 10.0.0.1:3307: connect: connection refused", errs.CategoryConnectionUnreachable,
			[]string{"db.internal", "3307", "5s"}},
		{"legacy wording", "Can't connect to MySQL server on 'db.internal'", errs.CategoryConnectionUnreachable,
			[]string{"db.internal"}},
		{"dns", "dial tcp: lookup db.internal: no such host", errs.CategoryConnectionUnreachable, nil},
		{"handshake timeout", "[timeout] connect failed: context deadline exceeded", errs.CategoryConnectionUnreachable,
			[]string{"5s"}},
		{"auth", "Error 1045 (28000): Access denied for user 'app'@'10.0.0.2'", errs.CategoryAccessDenied,
			[]string{"app"}},
		{"database", "Error 1049 (42000): Unknown database 'shop'", errs.CategoryUnknownDatabase,
			[]string{"shop"}},
		{"other", "packets.go:58 unexpected EOF", errs.CategoryOther,
			[]string{"connection settings"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, hint := ClassifyConnect(tt.msg, cfg)
			assert.Equal(t, tt.want, cat)
			for _, s := range tt.contains {
				assert.Contains(t, hint, s)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	t.Run("driver statement error", func(t *testing.T) {
		driverErr := errors.New("Error 1146 (42S02): Table 'shop.t' doesn't exist")
		err := fmt.Errorf("scanning row: %w", errs.Wrap(errs.ErrKindQueryFailed, "statement failed", driverErr))

		got := ClassifyError(err, "describe_table")
		require.NotNil(t, got)
		assert.Equal(t, errs.ErrKindQueryFailed, got.Kind)
		assert.Equal(t, errs.CategoryUnknownTable, got.Category)
		assert.Equal(t, "describe_table failed", got.Message)
		assert.ErrorIs(t, got, driverErr)
		assert.NotEmpty(t, got.Hint)
	})

	t.Run("unmatched driver error keeps raw message only", func(t *testing.T) {
		got := ClassifyError(errs.Wrap(errs.ErrKindQueryFailed, "statement failed", errors.New("weird")), "execute_query")
		assert.Equal(t, errs.CategoryOther, got.Category)
		assert.Empty(t, got.Hint)
		assert.Contains(t, got.Detail(), "weird")
	})

	t.Run("non-driver error is internal", func(t *testing.T) {
		got := ClassifyError(errors.New("nil map write"), "insert_data")
		assert.Equal(t, errs.ErrKindInternal, got.Kind)
		assert.Equal(t, errs.CategoryOther, got.Category)
		assert.Contains(t, got.Message, "unexpected error")
	})

	t.Run("non-driver error mentioning syntax stays internal", func(t *testing.T) {
		got := ClassifyError(errors.New("syntax error in template"), "insert_data")
		assert.Equal(t, errs.ErrKindInternal, got.Kind)
		assert.Equal(t, errs.CategoryOther, got.Category)
	})

	t.Run("connection error passes through", func(t *testing.T) {
		in := errs.New(errs.ErrKindConnectionFailed, "failed").Classified(errs.CategoryAccessDenied, "hint")
		assert.Same(t, in, ClassifyError(in, "list_tables"))
	})

	t.Run("timeout passes through", func(t *testing.T) {
		in := errs.New(errs.ErrKindTimeout, "deadline")
		assert.Same(t, in, ClassifyError(in, "list_tables"))
	})
}
