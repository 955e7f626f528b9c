package database

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects the driver and the few SQL spellings that differ between
// the supported engines. Queries are written once with "?" placeholders and
// rebound per dialect.
type Dialect int

const (
	SQLite Dialect = iota + 1
	Postgres
)

// ParseDialect maps a configured driver name onto a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	default:
		return 0, fmt.Errorf("database: unsupported driver %q", name)
	}
}

func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	default:
		return "unknown"
	}
}

// DriverName is the database/sql driver registered for this dialect.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

// Rebind rewrites "?" placeholders into the dialect's positional form.
// Question marks inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if d != Postgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// StringAgg returns an aggregate that joins expr with commas.
func (d Dialect) StringAgg(expr string) string {
	if d == Postgres {
		return "STRING_AGG(" + expr + ", ',')"
	}
	return "GROUP_CONCAT(" + expr + ", ',')"
}

// TimeParam returns a placeholder for a timestamp argument. PostgreSQL cannot
// infer a parameter's type from an INSERT target when the value comes
// through a SELECT list, so it gets an explicit cast there.
func (d Dialect) TimeParam() string {
	if d == Postgres {
		return "CAST(? AS TIMESTAMPTZ)"
	}
	return "?"
}

// timestampType is the column type used for timestamps in migrations.
func (d Dialect) timestampType() string {
	if d == Postgres {
		return "TIMESTAMPTZ"
	}
	return "DATETIME"
}
