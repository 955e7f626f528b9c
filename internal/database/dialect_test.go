package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{in: "sqlite", want: SQLite},
		{in: "SQLite3", want: SQLite},
		{in: "postgres", want: Postgres},
		{in: " pgx ", want: Postgres},
		{in: "mysql", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM users WHERE id = ? AND name = '?' AND email = ?"

	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, "SELECT * FROM users WHERE id = $1 AND name = '?' AND email = $2", Postgres.Rebind(q))
	assert.Equal(t, "SELECT 1", Postgres.Rebind("SELECT 1"))
}

func TestDialectSpellings(t *testing.T) {
	assert.Equal(t, "GROUP_CONCAT(t.name, ',')", SQLite.StringAgg("t.name"))
	assert.Equal(t, "STRING_AGG(t.name, ',')", Postgres.StringAgg("t.name"))
	assert.Equal(t, "?", SQLite.TimeParam())
	assert.Equal(t, "CAST(? AS TIMESTAMPTZ)", Postgres.TimeParam())
	assert.Equal(t, "sqlite", SQLite.DriverName())
	assert.Equal(t, "pgx", Postgres.DriverName())
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN(":memory:"))
	assert.Equal(t,
		"data/conduit.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		sqliteDSN("data/conduit.db"))
	assert.Equal(t,
		"file:x.db?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		sqliteDSN("file:x.db?cache=shared&_pragma=foreign_keys(1)"))
}
