package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/koustreak/sqlgate/internal/config"
	"github.com/koustreak/sqlgate/internal/errs"
)

// Rule maps a substring of driver error text to a category and hint.
type Rule struct {
	Match    string
	Fold     bool // case-insensitive match
	Category errs.Category
	Hint     string
}

func (r Rule) matches(msg string) bool {
	if r.Fold {
		return strings.Contains(strings.ToLower(msg), strings.ToLower(r.Match))
	}
	return strings.Contains(msg, r.Match)
}

// StatementRules is the ordered rule table for statement failures. The first
// matching rule wins, so existence checks sit above the generic syntax rule.
//
// The substrings are MySQL server wording. A different server or driver
// needs its own table; nothing outside Classify depends on the wording.
var StatementRules = []Rule{
	{Match: "Access denied", Category: errs.CategoryAccessDenied,
		Hint: "the current user lacks the privilege for this statement"},
	{Match: "Unknown database", Category: errs.CategoryUnknownDatabase,
		Hint: "the database does not exist"},
	{Match: "doesn't exist", Category: errs.CategoryUnknownTable,
		Hint: "the table does not exist"},
	{Match: "Unknown table", Category: errs.CategoryUnknownTable,
		Hint: "the table does not exist"},
	{Match: "Unknown column", Category: errs.CategoryUnknownColumn,
		Hint: "the statement references a column the table does not have"},
	{Match: "cannot be null", Category: errs.CategoryConstraintViolation,
		Hint: "a NOT NULL column was given a NULL value"},
	{Match: "Duplicate entry", Category: errs.CategoryConstraintViolation,
		Hint: "the row violates a unique key"},
	{Match: "Data too long", Category: errs.CategoryConstraintViolation,
		Hint: "a value exceeds the column length"},
	{Match: "foreign key constraint fails", Category: errs.CategoryConstraintViolation,
		Hint: "the change violates a foreign key constraint"},
	{Match: "already exists", Category: errs.CategoryOther,
		Hint: "the table already exists"},
	{Match: "syntax error", Fold: true, Category: errs.CategorySyntaxError,
		Hint: syntaxHint},
	{Match: "error in your SQL syntax", Fold: true, Category: errs.CategorySyntaxError,
		Hint: syntaxHint},
}

const syntaxHint = "check the table name, column definitions and condition for SQL syntax errors"

// Classify matches msg against StatementRules. Unmatched text returns
// CategoryOther and an empty hint.
func Classify(msg string) (errs.Category, string) {
	return classifyWith(StatementRules, msg)
}

func classifyWith(rules []Rule, msg string) (errs.Category, string) {
	for _, r := range rules {
		if r.matches(msg) {
			return r.Category, r.Hint
		}
	}
	return errs.CategoryOther, ""
}

// connectRules cover the failures seen while dialing and authenticating.
// Hints are completed with the configuration by ClassifyConnect.
var connectRules = []Rule{
	{Match: "Can't connect to MySQL server", Category: errs.CategoryConnectionUnreachable},
	{Match: "connection refused", Fold: true, Category: errs.CategoryConnectionUnreachable},
	{Match: "no such host", Fold: true, Category: errs.CategoryConnectionUnreachable},
	{Match: "i/o timeout", Fold: true, Category: errs.CategoryConnectionUnreachable},
	{Match: "network is unreachable", Fold: true, Category: errs.CategoryConnectionUnreachable},
	{Match: "deadline exceeded", Fold: true, Category: errs.CategoryConnectionUnreachable},
	{Match: "Access denied", Category: errs.CategoryAccessDenied},
	{Match: "Unknown database", Category: errs.CategoryUnknownDatabase},
}

// ClassifyConnect classifies a connection failure and builds a hint naming
// the configuration values worth checking.
func ClassifyConnect(msg string, cfg config.Config) (errs.Category, string) {
	cat, _ := classifyWith(connectRules, msg)
	switch cat {
	case errs.CategoryConnectionUnreachable:
		return cat, fmt.Sprintf(
			"cannot reach the MySQL server; check host %s and port %d (connect timeout %ds)",
			cfg.Host, cfg.Port, cfg.ConnectTimeout)
	case errs.CategoryAccessDenied:
		return cat, fmt.Sprintf("access denied; check the password for user %s", cfg.User)
	case errs.CategoryUnknownDatabase:
		return cat, fmt.Sprintf("unknown database %s; check the database name", cfg.Database)
	default:
		return errs.CategoryOther, "check the connection settings and that the server is running"
	}
}

// ClassifyError turns an error raised while running op into the error
// returned to the caller. Driver statement failures get a category and hint;
// connection, timeout and input errors pass through unchanged; anything that
// did not come from the driver is an internal fault.
func ClassifyError(err error, op string) *errs.Error {
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind == errs.ErrKindInternal {
		return errs.Wrap(errs.ErrKindInternal, "unexpected error during "+op, err)
	}
	if e.Kind != errs.ErrKindQueryFailed {
		return e
	}

	cause := e.Cause
	if cause == nil {
		cause = errors.New(e.Message)
	}
	cat, hint := Classify(e.Error())
	return errs.Wrap(errs.ErrKindQueryFailed, op+" failed", cause).Classified(cat, hint)
}
