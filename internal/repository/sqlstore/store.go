// Package sqlstore implements the repository interfaces with hand-written,
// parameterised SQL run through database.Executor.
//
// Each repository method is a single executor call: the writes it needs and
// the read-back of the resulting resource happen in one transaction. The
// statements themselves are the named templates in queries.go; row mapping
// is in mappers.go.
package sqlstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/database"
	"github.com/sakif/conduit/internal/repository"
)

// compile-time checks that *Store implements every repository contract
var (
	_ repository.UserRepository    = (*Store)(nil)
	_ repository.ProfileRepository = (*Store)(nil)
	_ repository.ArticleRepository = (*Store)(nil)
	_ repository.CommentRepository = (*Store)(nil)
	_ repository.TagRepository     = (*Store)(nil)
)

// Store is the SQL-backed repository.
type Store struct {
	ex  *database.Executor
	q   queries
	now func() time.Time
}

// New creates a Store whose templates are built for the executor's dialect.
func New(ex *database.Executor) *Store {
	return &Store{
		ex:  ex,
		q:   buildQueries(ex.Dialect()),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func stmt(sql string, args ...any) database.Statement {
	return database.Statement{SQL: sql, Args: args}
}

func guarded(sql string, args ...any) database.Statement {
	return database.Statement{SQL: sql, Args: args, Guard: true}
}

// translate maps executor errors onto the application taxonomy: no rows
// becomes notFound, a unique violation becomes a conflict on the field named
// in the constraint, anything else is wrapped as a storage failure.
func translate(err error, op string, notFound *apperror.AppError) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrNoRows) && notFound != nil:
		return notFound
	case database.IsUniqueViolation(err):
		return conflict(err)
	default:
		return fmt.Errorf("sqlstore: %s: %w", op, err)
	}
}

// conflict names the offending column when the driver message reveals it.
// SQLite reports "UNIQUE constraint failed: users.email"; PostgreSQL names the
// constraint, e.g. "users_email_key".
func conflict(err error) error {
	msg := err.Error()
	for _, field := range []string{"email", "username", "slug"} {
		if strings.Contains(msg, "."+field) || strings.Contains(msg, "_"+field+"_") {
			e := apperror.Conflict(field, field+" is already taken")
			e.Field = field
			return e
		}
	}
	return apperror.Conflict("resource", "already exists")
}
