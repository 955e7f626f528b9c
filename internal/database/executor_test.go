package database

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestExecutor opens a fresh in-memory database with the real schema plus
// a scratch table for executor-level tests.
func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, Options{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(ctx))
	_, err = db.conn.ExecContext(ctx, `CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE)`)
	require.NoError(t, err)

	return NewExecutor(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type item struct {
	ID   int64
	Name string
}

func mapItem(s Scanner) (item, error) {
	var it item
	err := s.Scan(&it.ID, &it.Name)
	return it, err
}

func insertItem(id int64, name string) Statement {
	return Statement{SQL: `INSERT INTO items (id, name) VALUES (?, ?)`, Args: []any{id, name}}
}

var selectItems = Statement{SQL: `SELECT id, name FROM items ORDER BY id`}

func TestOpen_RejectsBadOptions(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)

	_, err = Open(context.Background(), Options{Driver: "sqlite"})
	assert.Error(t, err)
}

func TestMigrate_IsIdempotent(t *testing.T) {
	ex := newTestExecutor(t)
	assert.NoError(t, ex.db.Migrate(context.Background()))
}

func TestProcess_LastValueWins(t *testing.T) {
	ex := newTestExecutor(t)
	ctx := context.Background()

	got, err := Process(ctx, ex, "items.create",
		[]Statement{insertItem(1, "a"), insertItem(2, "b")},
		selectItems, mapItem)
	require.NoError(t, err)
	assert.Equal(t, item{ID: 2, Name: "b"}, got)
}

func TestProcess_NoRow(t *testing.T) {
	ex := newTestExecutor(t)

	_, err := Process(context.Background(), ex, "items.get", nil,
		Statement{SQL: `SELECT id, name FROM items WHERE id = ?`, Args: []any{42}}, mapItem)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestProcess_NoRowRollsBackSteps(t *testing.T) {
	ex := newTestExecutor(t)
	ctx := context.Background()

	_, err := Process(ctx, ex, "items.create",
		[]Statement{insertItem(1, "a")},
		Statement{SQL: `SELECT id, name FROM items WHERE id = ?`, Args: []any{99}}, mapItem)
	require.ErrorIs(t, err, ErrNoRows)

	all, err := ProcessContainer(ctx, ex, "items.list", nil, selectItems, mapItem)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProcessContainer_PreludeAndCollection(t *testing.T) {
	ex := newTestExecutor(t)
	ctx := context.Background()

	empty, err := ProcessContainer(ctx, ex, "items.list", nil, selectItems, mapItem)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Len(t, empty, 0)

	all, err := ProcessContainer(ctx, ex, "items.seed",
		[]Statement{insertItem(1, "a"), insertItem(2, "b"), insertItem(3, "c")},
		selectItems, mapItem)
	require.NoError(t, err)
	assert.Equal(t, []item{{1, "a"}, {2, "b"}, {3, "c"}}, all)
}

func TestExec_GuardAbortsGroup(t *testing.T) {
	ex := newTestExecutor(t)
	ctx := context.Background()
	require.NoError(t, ex.Exec(ctx, "items.seed", insertItem(1, "a")))

	err := ex.Exec(ctx, "items.rename",
		Statement{SQL: `UPDATE items SET name = ? WHERE id = ?`, Args: []any{"renamed", 1}},
		Statement{SQL: `DELETE FROM items WHERE id = ?`, Args: []any{404}, Guard: true},
	)
	require.ErrorIs(t, err, ErrNoRows)

	// The first statement was rolled back with the group.
	all, err := ProcessContainer(ctx, ex, "items.list", nil, selectItems, mapItem)
	require.NoError(t, err)
	assert.Equal(t, []item{{1, "a"}}, all)
}

func TestExec_UniqueViolation(t *testing.T) {
	ex := newTestExecutor(t)
	ctx := context.Background()

	err := ex.Exec(ctx, "items.seed", insertItem(1, "a"), insertItem(2, "a"))
	require.Error(t, err)

	var qe *QueryError
	assert.True(t, errors.As(err, &qe))
	assert.Equal(t, "items.seed", qe.Op)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, errors.Is(err, ErrNoRows))
}

func TestIsUniqueViolation_OtherErrors(t *testing.T) {
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestProcess_MapperErrorIsQueryError(t *testing.T) {
	ex := newTestExecutor(t)
	ctx := context.Background()
	require.NoError(t, ex.Exec(ctx, "items.seed", insertItem(1, "a")))

	failing := func(Scanner) (item, error) { return item{}, errors.New("type mismatch") }
	_, err := Process(ctx, ex, "items.get", nil, selectItems, failing)

	var qe *QueryError
	assert.True(t, errors.As(err, &qe))
}
