package database

import (
	"context"
	"fmt"
	"strings"
)

// schema is written once in a portable subset; timestamp columns use the
// placeholder TIMESTAMP_T, which Migrate replaces with the dialect's type.
//
// Every statement is idempotent, so Migrate is safe to run on every start.
var schema = []struct {
	name string
	sql  string
}{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			bio           TEXT,
			image         TEXT,
			created_at    TIMESTAMP_T NOT NULL,
			updated_at    TIMESTAMP_T NOT NULL
		)`},
	{"follows", `
		CREATE TABLE IF NOT EXISTS follows (
			follower_id TEXT NOT NULL REFERENCES users(id),
			followee_id TEXT NOT NULL REFERENCES users(id),
			created_at  TIMESTAMP_T NOT NULL,
			PRIMARY KEY (follower_id, followee_id)
		)`},
	{"articles", `
		CREATE TABLE IF NOT EXISTS articles (
			id          TEXT PRIMARY KEY,
			slug        TEXT NOT NULL UNIQUE,
			title       TEXT NOT NULL,
			description TEXT NOT NULL,
			body        TEXT NOT NULL,
			author_id   TEXT NOT NULL REFERENCES users(id),
			created_at  TIMESTAMP_T NOT NULL,
			updated_at  TIMESTAMP_T
		)`},
	{"articles author index", `CREATE INDEX IF NOT EXISTS idx_articles_author_id ON articles(author_id)`},
	{"articles created index", `CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at)`},
	{"tags", `
		CREATE TABLE IF NOT EXISTS tags (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`},
	{"article_tags", `
		CREATE TABLE IF NOT EXISTS article_tags (
			article_id TEXT NOT NULL REFERENCES articles(id),
			tag_id     TEXT NOT NULL REFERENCES tags(id),
			PRIMARY KEY (article_id, tag_id)
		)`},
	{"favorites", `
		CREATE TABLE IF NOT EXISTS favorites (
			user_id    TEXT NOT NULL REFERENCES users(id),
			article_id TEXT NOT NULL REFERENCES articles(id),
			created_at TIMESTAMP_T NOT NULL,
			PRIMARY KEY (user_id, article_id)
		)`},
	{"favorites article index", `CREATE INDEX IF NOT EXISTS idx_favorites_article_id ON favorites(article_id)`},
	{"comments", `
		CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			article_id TEXT NOT NULL REFERENCES articles(id),
			author_id  TEXT NOT NULL REFERENCES users(id),
			body       TEXT NOT NULL,
			created_at TIMESTAMP_T NOT NULL,
			updated_at TIMESTAMP_T NOT NULL
		)`},
	{"comments article index", `CREATE INDEX IF NOT EXISTS idx_comments_article_id ON comments(article_id)`},
}

// Migrate creates every table and index that does not exist yet. All
// statements run in one transaction.
func (db *DB) Migrate(ctx context.Context) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("database: migrate: begin: %w", err)
	}
	defer tx.Rollback()

	for _, m := range schema {
		ddl := strings.ReplaceAll(m.sql, "TIMESTAMP_T", db.dialect.timestampType())
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("database: migrate %s: %w", m.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("database: migrate: commit: %w", err)
	}
	return nil
}
