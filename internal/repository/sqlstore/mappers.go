package sqlstore

// ROW MAPPERS:
// One mapper per DTO shape. Each takes a database.Scanner, so it can be
// exercised with a stub row in tests without a live database.

import (
	"database/sql"
	"sort"
	"strings"

	"github.com/sakif/conduit/internal/database"
	"github.com/sakif/conduit/internal/model"
)

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// splitTags turns an aggregated "a,b,c" column into a sorted list. A NULL
// aggregate (no tags) becomes an empty, non-nil list.
func splitTags(agg sql.NullString) []string {
	if !agg.Valid || agg.String == "" {
		return []string{}
	}
	tags := strings.Split(agg.String, ",")
	sort.Strings(tags)
	return tags
}

// mapUser maps: id, email, username, password_hash, bio, image, created_at, updated_at.
func mapUser(s database.Scanner) (*model.User, error) {
	var (
		u          model.User
		bio, image sql.NullString
	)
	if err := s.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &bio, &image, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Bio = nullableString(bio)
	u.Image = nullableString(image)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

// mapProfile maps: username, bio, image, following count.
func mapProfile(s database.Scanner) (*model.Profile, error) {
	var (
		p          model.Profile
		bio, image sql.NullString
		following  int64
	)
	if err := s.Scan(&p.Username, &bio, &image, &following); err != nil {
		return nil, err
	}
	p.Bio = nullableString(bio)
	p.Image = nullableString(image)
	p.Following = following > 0
	return &p, nil
}

// scanArticle reads the articleColumns projection, followed by any extra
// destinations the caller appends (for example a window-function total).
func scanArticle(s database.Scanner, extra ...any) (*model.Article, error) {
	var (
		a                               model.Article
		updated                         sql.NullTime
		bio, image, tags                sql.NullString
		following, favorites, favorited int64
	)
	dest := []any{
		&a.ID, &a.Slug, &a.Title, &a.Description, &a.Body, &a.CreatedAt, &updated,
		&a.Author.Username, &bio, &image,
		&following, &favorites, &favorited, &tags,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.CreatedAt
	if updated.Valid {
		a.UpdatedAt = updated.Time.UTC()
	}
	a.Author.Bio = nullableString(bio)
	a.Author.Image = nullableString(image)
	a.Author.Following = following > 0
	a.FavoritesCount = int(favorites)
	a.Favorited = favorited > 0
	a.TagList = splitTags(tags)
	return &a, nil
}

func mapArticle(s database.Scanner) (*model.Article, error) {
	return scanArticle(s)
}

// listedArticle is one row of a paged listing: the article and the total
// number of rows matching the listing.
type listedArticle struct {
	article *model.Article
	total   int64
}

func mapListedArticle(s database.Scanner) (listedArticle, error) {
	var total int64
	a, err := scanArticle(s, &total)
	if err != nil {
		return listedArticle{}, err
	}
	return listedArticle{article: a, total: total}, nil
}

// mapComment maps: id, body, created_at, username, bio, image, following count.
func mapComment(s database.Scanner) (model.Comment, error) {
	var (
		c          model.Comment
		bio, image sql.NullString
		following  int64
	)
	if err := s.Scan(&c.ID, &c.Body, &c.CreatedAt, &c.Author.Username, &bio, &image, &following); err != nil {
		return model.Comment{}, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.CreatedAt
	c.Author.Bio = nullableString(bio)
	c.Author.Image = nullableString(image)
	c.Author.Following = following > 0
	return c, nil
}

func mapString(s database.Scanner) (string, error) {
	var v string
	err := s.Scan(&v)
	return v, err
}

func mapInt(s database.Scanner) (int64, error) {
	var v int64
	err := s.Scan(&v)
	return v, err
}
