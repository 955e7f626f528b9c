// Package database owns the connection pool and the query executor that every
// store goes through.
//
// Two engines are supported through database/sql:
//   - SQLite via modernc.org/sqlite (pure Go, no cgo), the default and the
//     engine used by tests with ":memory:".
//   - PostgreSQL via the pgx stdlib driver.
//
// Store code never talks to *sql.DB directly. It hands an Executor a group of
// statements plus a row mapper; see executor.go.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Driver registration: "pgx" and "sqlite".
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Options configures Open.
type Options struct {
	Driver          string // "sqlite" or "postgres"
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DB is a connection pool bound to one dialect.
type DB struct {
	conn    *sql.DB
	dialect Dialect
}

// Open creates the pool, applies per-engine connection settings and pings.
//
// For SQLite the DSN gains _pragma parameters so that every pooled connection
// enforces foreign keys and waits on a busy database instead of failing. An
// in-memory database exists per connection, so ":memory:" pools are pinned to
// a single connection that is never recycled.
func Open(ctx context.Context, opts Options) (*DB, error) {
	dialect, err := ParseDialect(opts.Driver)
	if err != nil {
		return nil, err
	}
	if opts.DSN == "" {
		return nil, fmt.Errorf("database: empty DSN")
	}

	dsn := opts.DSN
	if dialect == SQLite {
		dsn = sqliteDSN(dsn)
	}

	conn, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("database: opening %s: %w", dialect, err)
	}

	if dialect == SQLite && isMemoryDSN(opts.DSN) {
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
		conn.SetConnMaxIdleTime(0)
	} else {
		if opts.MaxOpenConns > 0 {
			conn.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			conn.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLifetime > 0 {
			conn.SetConnMaxLifetime(opts.ConnMaxLifetime)
		}
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database: pinging %s: %w", dialect, err)
	}

	return &DB{conn: conn, dialect: dialect}, nil
}

// Dialect reports which engine the pool talks to.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Ping checks that the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// sqliteDSN appends the pragmas every connection needs unless the caller set
// them explicitly.
func sqliteDSN(dsn string) string {
	var pragmas []string
	if !strings.Contains(dsn, "foreign_keys") {
		pragmas = append(pragmas, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dsn, "busy_timeout") {
		pragmas = append(pragmas, "_pragma=busy_timeout(5000)")
	}
	if !isMemoryDSN(dsn) && !strings.Contains(dsn, "journal_mode") {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
	}
	if len(pragmas) == 0 {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(pragmas, "&")
}
