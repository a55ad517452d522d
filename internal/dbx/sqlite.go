package dbx

import (
	"database/sql/driver"
	"strings"

	"modernc.org/sqlite"
)

// SQLiteDriver is the database/sql name of the embedded SQLite driver.
const SQLiteDriver = "sqlite"

// SQLite's built-in lower() folds ASCII only. Replacing it keeps
// LOWER(col) LIKE LOWER(?) case-insensitive for all of Unicode, matching
// Postgres.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("lower", 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
