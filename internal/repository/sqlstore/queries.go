package sqlstore

// NAMED QUERY TEMPLATES:
// The business rules that must hold atomically live in these statements,
// not in Go branches:
//
//   - partial update: COALESCE(NULLIF(?, ''), column) keeps a column when
//     the supplied value is empty
//   - idempotent follow/favorite: INSERT … SELECT … WHERE NOT EXISTS, so a
//     repeated call inserts nothing instead of violating the primary key
//   - ownership: the caller's id is an equality predicate of the mutation;
//     a non-owner affects zero rows and the Guard turns that into NotFound
//   - derived fields: following, favorited, favoritesCount and tagList are
//     computed per row by correlated subqueries
//
// Every template documents its positional parameters. "viewer" is
// model.Viewer.Arg(): a user id or NULL, and NULL never matches. Parameters
// that only appear in a SELECT list are cast so PostgreSQL can type them.

import (
	"fmt"
	"strings"

	"github.com/sakif/conduit/internal/database"
)

type queries struct {
	// users
	insertUser        string // id, email, username, password_hash, created_at, updated_at
	updateUser        string // email, username, password_hash, bio, image, updated_at, id
	selectUserByID    string // id
	selectUserByEmail string // email

	// profiles
	selectProfile string // viewer, username
	follow        string // follower_id, created_at, username, follower_id, follower_id
	unfollow      string // follower_id, username

	// articles
	insertArticle   string // id, slug, title, description, body, author_id, created_at
	insertTag       string // id, name
	updateArticle   string // slug, title, description, body, updated_at, slug, author_id
	articleColumns  string // viewer, viewer
	articleFrom     string
	selectArticleBy string // viewer, viewer, slug
	selectArticleID string // viewer, viewer, id
	favorite        string // user_id, created_at, slug, user_id
	unfavorite      string // user_id, slug
	slugsLike       string // base, base-%
	articleExists   string // slug

	deleteArticleComments  string // slug, author_id
	deleteArticleFavorites string // slug, author_id
	deleteArticleTags      string // slug, author_id
	deleteArticle          string // slug, author_id

	// comments
	insertComment  string // id, author_id, body, created_at, updated_at, slug
	selectComments string // viewer, slug
	selectComment  string // viewer, id
	deleteComment  string // id, author_id, slug

	// tags
	selectTags string
}

func buildQueries(d database.Dialect) queries {
	ts := d.TimeParam()

	q := queries{
		insertUser: `
			INSERT INTO users (id, email, username, password_hash, bio, image, created_at, updated_at)
			VALUES (?, ?, ?, ?, NULL, NULL, ?, ?)`,
		updateUser: `
			UPDATE users SET
				email         = COALESCE(NULLIF(?, ''), email),
				username      = COALESCE(NULLIF(?, ''), username),
				password_hash = COALESCE(NULLIF(?, ''), password_hash),
				bio           = COALESCE(NULLIF(?, ''), bio),
				image         = COALESCE(NULLIF(?, ''), image),
				updated_at    = ?
			WHERE id = ?`,
		selectUserByID: `
			SELECT id, email, username, password_hash, bio, image, created_at, updated_at
			FROM users WHERE id = ?`,
		selectUserByEmail: `
			SELECT id, email, username, password_hash, bio, image, created_at, updated_at
			FROM users WHERE email = ?`,

		selectProfile: `
			SELECT u.username, u.bio, u.image,
				(SELECT COUNT(*) FROM follows f WHERE f.follower_id = ? AND f.followee_id = u.id)
			FROM users u WHERE u.username = ?`,
		follow: fmt.Sprintf(`
			INSERT INTO follows (follower_id, followee_id, created_at)
			SELECT CAST(? AS TEXT), u.id, %s FROM users u
			WHERE u.username = ? AND u.id <> ?
				AND NOT EXISTS (SELECT 1 FROM follows f WHERE f.follower_id = ? AND f.followee_id = u.id)
			ON CONFLICT DO NOTHING`, ts),
		unfollow: `
			DELETE FROM follows
			WHERE follower_id = ? AND followee_id IN (SELECT id FROM users WHERE username = ?)`,

		insertArticle: `
			INSERT INTO articles (id, slug, title, description, body, author_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, NULL)`,
		insertTag: `INSERT INTO tags (id, name) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`,
		updateArticle: `
			UPDATE articles SET
				slug        = COALESCE(NULLIF(?, ''), slug),
				title       = COALESCE(NULLIF(?, ''), title),
				description = COALESCE(NULLIF(?, ''), description),
				body        = COALESCE(NULLIF(?, ''), body),
				updated_at  = ?
			WHERE slug = ? AND author_id = ?`,
		articleColumns: fmt.Sprintf(`
			a.id, a.slug, a.title, a.description, a.body, a.created_at, a.updated_at,
			u.username, u.bio, u.image,
			(SELECT COUNT(*) FROM follows f WHERE f.follower_id = ? AND f.followee_id = a.author_id),
			(SELECT COUNT(*) FROM favorites fv WHERE fv.article_id = a.id),
			(SELECT COUNT(*) FROM favorites fv WHERE fv.article_id = a.id AND fv.user_id = ?),
			(SELECT %s FROM article_tags atg JOIN tags t ON t.id = atg.tag_id WHERE atg.article_id = a.id)`,
			d.StringAgg("t.name")),
		articleFrom: `FROM articles a JOIN users u ON u.id = a.author_id`,
		favorite: fmt.Sprintf(`
			INSERT INTO favorites (user_id, article_id, created_at)
			SELECT CAST(? AS TEXT), a.id, %s FROM articles a
			WHERE a.slug = ?
				AND NOT EXISTS (SELECT 1 FROM favorites fv WHERE fv.user_id = ? AND fv.article_id = a.id)
			ON CONFLICT DO NOTHING`, ts),
		unfavorite: `
			DELETE FROM favorites
			WHERE user_id = ? AND article_id IN (SELECT id FROM articles WHERE slug = ?)`,
		slugsLike:     `SELECT slug FROM articles WHERE slug = ? OR slug LIKE ?`,
		articleExists: `SELECT id FROM articles WHERE slug = ?`,

		deleteArticleComments: `
			DELETE FROM comments
			WHERE article_id IN (SELECT id FROM articles WHERE slug = ? AND author_id = ?)`,
		deleteArticleFavorites: `
			DELETE FROM favorites
			WHERE article_id IN (SELECT id FROM articles WHERE slug = ? AND author_id = ?)`,
		deleteArticleTags: `
			DELETE FROM article_tags
			WHERE article_id IN (SELECT id FROM articles WHERE slug = ? AND author_id = ?)`,
		deleteArticle: `DELETE FROM articles WHERE slug = ? AND author_id = ?`,

		insertComment: fmt.Sprintf(`
			INSERT INTO comments (id, article_id, author_id, body, created_at, updated_at)
			SELECT CAST(? AS TEXT), a.id, CAST(? AS TEXT), CAST(? AS TEXT), %[1]s, %[1]s
			FROM articles a WHERE a.slug = ?`, ts),
		deleteComment: `
			DELETE FROM comments
			WHERE id = ? AND author_id = ?
				AND article_id IN (SELECT id FROM articles WHERE slug = ?)`,

		selectTags: `
			SELECT t.name FROM tags t
			WHERE EXISTS (SELECT 1 FROM article_tags atg WHERE atg.tag_id = t.id)
			ORDER BY t.name`,
	}

	q.selectArticleBy = "SELECT " + q.articleColumns + " " + q.articleFrom + " WHERE a.slug = ?"
	q.selectArticleID = "SELECT " + q.articleColumns + " " + q.articleFrom + " WHERE a.id = ?"

	commentSelect := `
		SELECT c.id, c.body, c.created_at, u.username, u.bio, u.image,
			(SELECT COUNT(*) FROM follows f WHERE f.follower_id = ? AND f.followee_id = u.id)
		FROM comments c JOIN users u ON u.id = c.author_id`
	q.selectComments = commentSelect + `
		JOIN articles a ON a.id = c.article_id
		WHERE a.slug = ?
		ORDER BY c.created_at DESC, c.id DESC`
	q.selectComment = commentSelect + ` WHERE c.id = ?`

	return q
}

// articleListing describes a filtered article listing.
type articleListing struct {
	tag        string
	author     string
	favorited  string
	followedBy string // feed: only authors this user follows
}

// clauses returns the extra joins, the WHERE clause and their arguments, in
// the order they appear in the statement.
func (l articleListing) clauses() (joins, where string, args []any) {
	var j, w []string

	if l.tag != "" {
		j = append(j, `JOIN article_tags fat ON fat.article_id = a.id
			JOIN tags ft ON ft.id = fat.tag_id AND ft.name = ?`)
		args = append(args, l.tag)
	}
	if l.favorited != "" {
		j = append(j, `JOIN favorites ffv ON ffv.article_id = a.id
			JOIN users fu ON fu.id = ffv.user_id AND fu.username = ?`)
		args = append(args, l.favorited)
	}
	if l.author != "" {
		w = append(w, `u.username = ?`)
		args = append(args, l.author)
	}
	if l.followedBy != "" {
		w = append(w, `a.author_id IN (SELECT followee_id FROM follows WHERE follower_id = ?)`)
		args = append(args, l.followedBy)
	}

	joins = strings.Join(j, "\n")
	if len(w) > 0 {
		where = "WHERE " + strings.Join(w, " AND ")
	}
	return joins, where, args
}

// listStatement selects one page of the listing plus a total-count column.
// Parameters: viewer, viewer, filter args…, limit, offset.
func (q queries) listStatement(l articleListing) string {
	joins, where, _ := l.clauses()
	return fmt.Sprintf(`SELECT %s, COUNT(*) OVER () %s %s %s
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT ? OFFSET ?`, q.articleColumns, q.articleFrom, joins, where)
}

// countStatement counts the listing without paging. Parameters: filter args….
func (q queries) countStatement(l articleListing) string {
	joins, where, _ := l.clauses()
	return fmt.Sprintf(`SELECT COUNT(*) %s %s %s`, q.articleFrom, joins, where)
}
