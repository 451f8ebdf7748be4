package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Dialect abstracts the SQL syntax differences between the Redshift and
// SQLite backends. Queries are written once with ? placeholders and
// converted at runtime for backends that number their parameters.
type Dialect interface {
	// Name returns the dialect name (e.g., "sqlite", "redshift")
	Name() string

	// IdentityColumn returns the column definition for a backend-assigned
	// auto-incrementing integer primary key.
	IdentityColumn() string

	// SortKeyTimestamp returns the column definition for the timestamp
	// column, including the physical sort/cluster hint where the backend
	// has one.
	SortKeyTimestamp() string

	// ReturningClause returns "RETURNING col" for backends that can hand
	// back generated keys, or "" where the caller must re-select the id.
	ReturningClause(columns ...string) string

	// CastToFloat wraps an expression in a cast to the backend's floating
	// point type.
	CastToFloat(expr string) string

	// PatternMatch returns a case-insensitive pattern predicate over the
	// column with a single ? parameter. Redshift uses its native regex
	// operator; SQLite builds lack one, so the fallback is a substring
	// match.
	PatternMatch(column string) string

	// LimitOffset returns the pagination clause. Values <= 0 mean "not
	// requested" and never produce a negative literal.
	LimitOffset(count, skip int) string

	// IsUndefinedTable reports whether err indicates a statement against a
	// table that does not exist.
	IsUndefinedTable(err error) bool
}

// SQLiteDialect implements Dialect for SQLite.
type SQLiteDialect struct{}

var _ Dialect = (*SQLiteDialect)(nil)

func (d *SQLiteDialect) Name() string { return "sqlite" }

func (d *SQLiteDialect) IdentityColumn() string {
	return "INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL"
}

func (d *SQLiteDialect) SortKeyTimestamp() string {
	return "TIMESTAMP NOT NULL"
}

func (d *SQLiteDialect) ReturningClause(columns ...string) string {
	if len(columns) == 0 {
		return ""
	}
	return "RETURNING " + strings.Join(columns, ", ")
}

func (d *SQLiteDialect) CastToFloat(expr string) string {
	return fmt.Sprintf("CAST(%s AS REAL)", expr)
}

func (d *SQLiteDialect) PatternMatch(column string) string {
	// No regex operator without a loadable extension; substring match is
	// the closest case-insensitive equivalent.
	return fmt.Sprintf("instr(lower(%s), lower(?)) > 0", column)
}

func (d *SQLiteDialect) LimitOffset(count, skip int) string {
	switch {
	case count > 0 && skip > 0:
		return fmt.Sprintf("LIMIT %d OFFSET %d", count, skip)
	case count > 0:
		return fmt.Sprintf("LIMIT %d", count)
	case skip > 0:
		// SQLite requires a LIMIT before OFFSET; -1 means unbounded.
		return fmt.Sprintf("LIMIT -1 OFFSET %d", skip)
	}
	return ""
}

func (d *SQLiteDialect) IsUndefinedTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

// RedshiftDialect implements Dialect for Redshift over the Postgres wire
// protocol.
type RedshiftDialect struct{}

var _ Dialect = (*RedshiftDialect)(nil)

func (d *RedshiftDialect) Name() string { return "redshift" }

func (d *RedshiftDialect) IdentityColumn() string {
	return "INTEGER IDENTITY (1, 1) PRIMARY KEY NOT NULL"
}

func (d *RedshiftDialect) SortKeyTimestamp() string {
	return "TIMESTAMP SORTKEY NOT NULL"
}

// ReturningClause always returns "": Redshift does not implement RETURNING,
// so generated ids are recovered by re-selecting after the insert.
func (d *RedshiftDialect) ReturningClause(columns ...string) string {
	return ""
}

func (d *RedshiftDialect) CastToFloat(expr string) string {
	return fmt.Sprintf("CAST(%s AS float)", expr)
}

func (d *RedshiftDialect) PatternMatch(column string) string {
	return fmt.Sprintf("%s ~* ?", column)
}

func (d *RedshiftDialect) LimitOffset(count, skip int) string {
	switch {
	case count > 0 && skip > 0:
		return fmt.Sprintf("LIMIT %d OFFSET %d", count, skip)
	case count > 0:
		return fmt.Sprintf("LIMIT %d", count)
	case skip > 0:
		return fmt.Sprintf("OFFSET %d", skip)
	}
	return ""
}

// undefinedTableCode is the Postgres error code for "relation does not
// exist" (42P01).
const undefinedTableCode = "42P01"

func (d *RedshiftDialect) IsUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == undefinedTableCode
	}
	return false
}

// ConvertPlaceholders converts SQLite-style ? placeholders to the numbered
// $n form used on the Postgres wire. This lets every query be written once.
func ConvertPlaceholders(query string) string {
	var result strings.Builder
	result.Grow(len(query) + 10)
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result.WriteString(fmt.Sprintf("$%d", n))
			n++
		} else {
			result.WriteByte(query[i])
		}
	}
	return result.String()
}

// PlaceholderSet generates a comma-separated list of ? placeholders for IN
// clauses and multi-row inserts.
func PlaceholderSet(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]string, count)
	for i := range placeholders {
		placeholders[i] = "?"
	}
	return strings.Join(placeholders, ", ")
}
