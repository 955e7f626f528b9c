package database

// QUERY EXECUTOR:
// Every store operation is one call into the executor:
//
//	steps  → zero or more writes, run in order inside one transaction
//	query  → an optional read that sees the writes above
//	mapRow → converts each result row into a typed value
//
// Bundling the writes and the read-back into one transaction is what makes
// "mutate and return the resulting resource" atomic. Ownership checks live
// in the SQL itself (WHERE id = ? AND author_id = ?) and a Guard step that
// touches zero rows aborts the whole group with ErrNoRows.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/conduit/internal/metrics"
)

// Statement is one parameterised SQL statement written with "?" placeholders.
type Statement struct {
	SQL  string
	Args []any
	// Guard makes the group fail with ErrNoRows if this statement affects
	// no rows. Used for ownership- and existence-scoped writes.
	Guard bool
}

// Scanner is the part of *sql.Rows a row mapper needs.
type Scanner interface {
	Scan(dest ...any) error
}

// RowMapper converts the current row into a T.
type RowMapper[T any] func(Scanner) (T, error)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Executor runs statement groups against a DB.
type Executor struct {
	db     *DB
	logger *slog.Logger
}

// NewExecutor creates an Executor over db.
func NewExecutor(db *DB, logger *slog.Logger) *Executor {
	return &Executor{db: db, logger: logger}
}

// Dialect reports the dialect of the underlying pool.
func (ex *Executor) Dialect() Dialect {
	return ex.db.dialect
}

// Exec runs steps in one transaction and returns nothing.
func (ex *Executor) Exec(ctx context.Context, op string, steps ...Statement) error {
	return ex.run(ctx, op, steps, nil)
}

// Process runs steps, then query, and returns the last mapped row.
// A query that yields no row returns ErrNoRows and rolls the steps back.
func Process[T any](ctx context.Context, ex *Executor, op string, steps []Statement, query Statement, mapRow RowMapper[T]) (T, error) {
	var (
		last  T
		found bool
	)
	err := ex.run(ctx, op, steps, func(q querier) error {
		err := collect(ctx, q, ex.db.dialect, op, query, mapRow, func(v T) {
			last = v
			found = true
		})
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%s: %w", op, ErrNoRows)
		}
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return last, nil
}

// ProcessContainer runs the prelude steps, then query, and returns every
// mapped row. The result is never nil.
func ProcessContainer[T any](ctx context.Context, ex *Executor, op string, prelude []Statement, query Statement, mapRow RowMapper[T]) ([]T, error) {
	out := make([]T, 0)
	err := ex.run(ctx, op, prelude, func(q querier) error {
		return collect(ctx, q, ex.db.dialect, op, query, mapRow, func(v T) {
			out = append(out, v)
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// run executes steps and then read in one transaction. Reads with no
// preceding writes skip the transaction.
func (ex *Executor) run(ctx context.Context, op string, steps []Statement, read func(querier) error) (err error) {
	start := time.Now()
	defer func() { ex.observe(op, start, err) }()

	if len(steps) == 0 {
		if read == nil {
			return nil
		}
		return read(ex.db.conn)
	}

	tx, err := ex.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return &QueryError{Op: op, Err: fmt.Errorf("begin: %w", err)}
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, st := range steps {
		res, execErr := tx.ExecContext(ctx, ex.db.dialect.Rebind(st.SQL), st.Args...)
		if execErr != nil {
			return &QueryError{Op: op, Err: fmt.Errorf("step %d: %w", i, execErr)}
		}
		if !st.Guard {
			continue
		}
		n, raErr := res.RowsAffected()
		if raErr != nil {
			return &QueryError{Op: op, Err: fmt.Errorf("step %d: rows affected: %w", i, raErr)}
		}
		if n == 0 {
			return fmt.Errorf("%s: step %d: %w", op, i, ErrNoRows)
		}
	}

	if read != nil {
		if err = read(tx); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return &QueryError{Op: op, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

// collect runs query and feeds every mapped row to fn.
func collect[T any](ctx context.Context, q querier, d Dialect, op string, query Statement, mapRow RowMapper[T], fn func(T)) error {
	rows, err := q.QueryContext(ctx, d.Rebind(query.SQL), query.Args...)
	if err != nil {
		return &QueryError{Op: op, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		v, err := mapRow(rows)
		if err != nil {
			return &QueryError{Op: op, Err: fmt.Errorf("mapping row: %w", err)}
		}
		fn(v)
	}
	if err := rows.Err(); err != nil {
		return &QueryError{Op: op, Err: err}
	}
	return nil
}

// observe records metrics and logs backing-store failures.
func (ex *Executor) observe(op string, start time.Time, err error) {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNoRows):
		status = "no_rows"
	default:
		status = "error"
	}
	metrics.RecordQuery(op, status, time.Since(start).Seconds())

	if status != "error" {
		return
	}
	if IsUniqueViolation(err) {
		ex.logger.Warn("query rejected by unique constraint", slog.String("op", op), slog.String("error", err.Error()))
		return
	}
	ex.logger.Error("query failed", slog.String("op", op), slog.String("error", err.Error()))
}
