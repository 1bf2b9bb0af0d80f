package db

// errors.go maps driver errors to short explanations with a stable code.
//
// Codes:
//
//	DB001 - Duplicate key
//	DB002 - Unique constraint
//	DB003 - Foreign key
//	DB004 - Connection refused
//	DB005 - Connection reset
//	DB006 - Timeout
//	DB007 - Deadlock
//	DB008 - Unknown table or column
//	DB009 - Syntax error
//	DB010 - Authentication failed
//	DB000 - Anything else

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Hint explains a failed query.
type Hint struct {
	Code    string
	Message string
	Action  string
}

func (h Hint) String() string {
	if h.Code == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", h.Message, h.Code, h.Action)
}

type errorPattern struct {
	pattern string
	hint    Hint
}

// Patterns are matched in order against the lower-cased error text, so the
// more specific ones come first.
var errorPatterns = []errorPattern{
	{"duplicate key", Hint{"DB001", "A record with this key already exists", "Clean up test data left by an earlier run"}},
	{"unique constraint", Hint{"DB002", "This value must be unique but already exists", "Use a generated value such as common.RandomUUID"}},
	{"violates unique", Hint{"DB002", "A duplicate value was found", "Use a generated value such as common.RandomUUID"}},
	{"foreign key constraint", Hint{"DB003", "Referenced record does not exist", "Insert parent records first"}},
	{"violates foreign key", Hint{"DB003", "Referenced record does not exist", "Insert parent records first"}},
	{"connection refused", Hint{"DB004", "Unable to connect to database", "Check DATABASE_URL and that the server is running"}},
	{"connection reset", Hint{"DB005", "Database connection was interrupted", "Please try again"}},
	{"timeout", Hint{"DB006", "Operation timed out", "Raise DB_CONNECT_TIMEOUT or narrow the query"}},
	{"deadline exceeded", Hint{"DB006", "Operation timed out", "Raise DB_CONNECT_TIMEOUT or narrow the query"}},
	{"deadlock", Hint{"DB007", "Database was busy with conflicting operations", "Please try again"}},
	{"no such table", Hint{"DB008", "Table or column does not exist", "Check the schema the query runs against"}},
	{"does not exist", Hint{"DB008", "Table or column does not exist", "Check the schema the query runs against"}},
	{"doesn't exist", Hint{"DB008", "Table or column does not exist", "Check the schema the query runs against"}},
	{"invalid object name", Hint{"DB008", "Table or column does not exist", "Check the schema the query runs against"}},
	{"no such column", Hint{"DB008", "Table or column does not exist", "Check the schema the query runs against"}},
	{"syntax error", Hint{"DB009", "The SQL statement is not valid", "Check the statement for typos"}},
	{"authentication failed", Hint{"DB010", "The database rejected the credentials", "Check the user and password in DATABASE_URL"}},
	{"access denied", Hint{"DB010", "The database rejected the credentials", "Check the user and password in DATABASE_URL"}},
	{"login failed", Hint{"DB010", "The database rejected the credentials", "Check the user and password in DATABASE_URL"}},
}

// pgCodes maps PostgreSQL SQLSTATE values, which are more reliable than text.
var pgCodes = map[string]string{
	"23505": "duplicate key",
	"23503": "foreign key constraint",
	"40P01": "deadlock",
	"42P01": "does not exist",
	"42703": "does not exist",
	"42601": "syntax error",
	"28P01": "authentication failed",
}

var defaultHint = Hint{"DB000", "The query failed", "See the error for details"}

// Explain maps err to a Hint. A nil err gives the zero Hint.
func Explain(err error) Hint {
	if err == nil {
		return Hint{}
	}

	text := strings.ToLower(err.Error())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if p, ok := pgCodes[pgErr.Code]; ok {
			text = p
		}
	}

	for _, ep := range errorPatterns {
		if strings.Contains(text, ep.pattern) {
			return ep.hint
		}
	}
	return defaultHint
}

// QueryError is a failed query or statement together with its Hint.
type QueryError struct {
	Query string
	Hint  Hint
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Hint.Code, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func newQueryError(q string, err error) *QueryError {
	return &QueryError{Query: q, Hint: Explain(err), Err: err}
}
