package dbreset

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrUnknownDialect is returned for dialects without identity reset support.
var ErrUnknownDialect = errors.New("unknown SQL dialect")

// Dialect holds the statements that differ between databases.
type Dialect struct {
	Name string
	// ResetIdentity returns the statement that restarts the id counter of table
	// so the next inserted row gets id 1.
	ResetIdentity func(table string) string
	// IdentityCommits is set when ResetIdentity is DDL that implicitly commits
	// an open transaction. The reset then runs it between two transactions.
	IdentityCommits bool
	// Placeholder returns the bind parameter for the n-th argument (1-based).
	Placeholder func(n int) string
}

var dialects = map[string]Dialect{
	"sqlite": {
		Name: "sqlite",
		ResetIdentity: func(table string) string {
			return fmt.Sprintf("DELETE FROM sqlite_sequence WHERE name = '%s'", table)
		},
		Placeholder: questionMark,
	},
	"mysql": {
		Name: "mysql",
		ResetIdentity: func(table string) string {
			return fmt.Sprintf("ALTER TABLE %s AUTO_INCREMENT = 1", table)
		},
		IdentityCommits: true,
		Placeholder:     questionMark,
	},
	"postgres": {
		Name: "postgres",
		ResetIdentity: func(table string) string {
			return fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), 1, false)", table)
		},
		Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	},
	"sqlserver": {
		Name: "sqlserver",
		ResetIdentity: func(table string) string {
			// RESEED n makes the next id n on a table that never held a row
			// and n+1 otherwise.
			return fmt.Sprintf("IF EXISTS (SELECT 1 FROM sys.identity_columns WHERE object_id = OBJECT_ID('%[1]s') AND last_value IS NOT NULL) "+
				"DBCC CHECKIDENT ('%[1]s', RESEED, 0) ELSE DBCC CHECKIDENT ('%[1]s', RESEED, 1)", table)
		},
		Placeholder: func(n int) string { return fmt.Sprintf("@p%d", n) },
	},
}

// LookupDialect returns the dialect registered under name.
func LookupDialect(name string) (Dialect, error) {
	d, ok := dialects[name]
	if !ok {
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
	return d, nil
}

func questionMark(int) string { return "?" }

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}
