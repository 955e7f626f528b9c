package sqlstore

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/database"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/repository"
)

// CreateArticle inserts the article, creates any tag names that do not exist
// yet, links all of the article's tags, and reads the article back. All of it
// is one transaction.
func (s *Store) CreateArticle(ctx context.Context, d model.ArticleDraft) (*model.Article, error) {
	steps := []database.Statement{
		stmt(s.q.insertArticle, d.ID, d.Slug, d.Title, d.Description, d.Body, d.AuthorID, d.CreatedAt),
	}
	for _, name := range d.TagList {
		steps = append(steps, stmt(s.q.insertTag, xid.New().String(), name))
	}
	if len(d.TagList) > 0 {
		steps = append(steps, linkTags(d.ID, d.TagList))
	}

	a, err := database.Process(ctx, s.ex, "articles.create", steps,
		stmt(s.q.selectArticleID, d.AuthorID, d.AuthorID, d.ID), mapArticle)
	if err != nil {
		return nil, translate(err, "creating article", nil)
	}
	return a, nil
}

// linkTags links article id to every named tag in a single statement.
func linkTags(articleID string, names []string) database.Statement {
	args := make([]any, 0, len(names)+1)
	args = append(args, articleID)
	for _, n := range names {
		args = append(args, n)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	return stmt(`
		INSERT INTO article_tags (article_id, tag_id)
		SELECT CAST(? AS TEXT), t.id FROM tags t WHERE t.name IN (`+placeholders+`)`, args...)
}

// GetArticle returns the article with slug as seen by viewer.
func (s *Store) GetArticle(ctx context.Context, slug string, viewer model.Viewer) (*model.Article, error) {
	a, err := database.Process(ctx, s.ex, "articles.get", nil,
		stmt(s.q.selectArticleBy, viewer.Arg(), viewer.Arg(), slug), mapArticle)
	if err != nil {
		return nil, translate(err, "getting article", apperror.NotFound("article", slug))
	}
	return a, nil
}

// UpdateArticle applies a partial update if authorID owns the article. A
// non-owner or an unknown slug both yield NotFoundOrForbidden and change
// nothing.
func (s *Store) UpdateArticle(ctx context.Context, slug, authorID string, c model.ArticleChanges) (*model.Article, error) {
	finalSlug := slug
	if c.Slug != "" {
		finalSlug = c.Slug
	}

	a, err := database.Process(ctx, s.ex, "articles.update",
		[]database.Statement{
			guarded(s.q.updateArticle, c.Slug, c.Title, c.Description, c.Body, c.UpdatedAt, slug, authorID),
		},
		stmt(s.q.selectArticleBy, authorID, authorID, finalSlug),
		mapArticle,
	)
	if err != nil {
		return nil, translate(err, "updating article", apperror.NotFoundOrForbidden("article", slug))
	}
	return a, nil
}

// DeleteArticle removes the article with its comments, favorites and tag
// links. Every statement carries the ownership predicate; the final one is
// guarded, so a non-owner's delete rolls back and reports NotFoundOrForbidden.
func (s *Store) DeleteArticle(ctx context.Context, slug, authorID string) error {
	err := s.ex.Exec(ctx, "articles.delete",
		stmt(s.q.deleteArticleComments, slug, authorID),
		stmt(s.q.deleteArticleFavorites, slug, authorID),
		stmt(s.q.deleteArticleTags, slug, authorID),
		guarded(s.q.deleteArticle, slug, authorID),
	)
	return translate(err, "deleting article", apperror.NotFoundOrForbidden("article", slug))
}

// ListArticles returns one page of articles matching filter, newest first.
func (s *Store) ListArticles(ctx context.Context, f repository.ArticleFilter, viewer model.Viewer) (*repository.ArticlePage, error) {
	listing := articleListing{tag: f.Tag, author: f.Author, favorited: f.Favorited}
	return s.page(ctx, "articles.list", listing, viewer, f.ListOptions)
}

// Feed returns articles by authors userID follows, newest first. Someone who
// follows nobody gets an empty page.
func (s *Store) Feed(ctx context.Context, userID string, opts repository.ListOptions) (*repository.ArticlePage, error) {
	listing := articleListing{followedBy: userID}
	return s.page(ctx, "articles.feed", listing, model.Authenticated(userID), opts)
}

func (s *Store) page(ctx context.Context, op string, l articleListing, viewer model.Viewer, opts repository.ListOptions) (*repository.ArticlePage, error) {
	opts = opts.Normalize()
	_, _, filterArgs := l.clauses()

	args := make([]any, 0, len(filterArgs)+4)
	args = append(args, viewer.Arg(), viewer.Arg())
	args = append(args, filterArgs...)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := database.ProcessContainer(ctx, s.ex, op, nil, stmt(s.q.listStatement(l), args...), mapListedArticle)
	if err != nil {
		return nil, translate(err, "listing articles", nil)
	}

	page := &repository.ArticlePage{Articles: make([]model.Article, 0, len(rows))}
	for _, r := range rows {
		page.Articles = append(page.Articles, *r.article)
		page.Count = int(r.total)
	}

	// Past the last page the window total is unavailable; count separately.
	if len(rows) == 0 && opts.Offset > 0 {
		total, err := database.Process(ctx, s.ex, op+".count", nil, stmt(s.q.countStatement(l), filterArgs...), mapInt)
		if err != nil {
			return nil, translate(err, "counting articles", nil)
		}
		page.Count = int(total)
	}
	return page, nil
}

// Favorite adds the favorite edge unless it already exists and returns the
// article as seen by userID.
func (s *Store) Favorite(ctx context.Context, slug, userID string) (*model.Article, error) {
	a, err := database.Process(ctx, s.ex, "articles.favorite",
		[]database.Statement{
			stmt(s.q.favorite, userID, s.now(), slug, userID),
		},
		stmt(s.q.selectArticleBy, userID, userID, slug),
		mapArticle,
	)
	if err != nil {
		return nil, translate(err, "favoriting article", apperror.NotFound("article", slug))
	}
	return a, nil
}

// Unfavorite removes the favorite edge if present.
func (s *Store) Unfavorite(ctx context.Context, slug, userID string) (*model.Article, error) {
	a, err := database.Process(ctx, s.ex, "articles.unfavorite",
		[]database.Statement{
			stmt(s.q.unfavorite, userID, slug),
		},
		stmt(s.q.selectArticleBy, userID, userID, slug),
		mapArticle,
	)
	if err != nil {
		return nil, translate(err, "unfavoriting article", apperror.NotFound("article", slug))
	}
	return a, nil
}

// SlugsLike returns stored slugs equal to base or starting with "base-".
func (s *Store) SlugsLike(ctx context.Context, base string) ([]string, error) {
	slugs, err := database.ProcessContainer(ctx, s.ex, "articles.slugs_like", nil,
		stmt(s.q.slugsLike, base, base+"-%"), mapString)
	if err != nil {
		return nil, translate(err, "looking up slugs", nil)
	}
	return slugs, nil
}

// articleExists reports whether an article with slug exists.
func (s *Store) articleExists(ctx context.Context, slug string) (bool, error) {
	_, err := database.Process(ctx, s.ex, "articles.exists", nil, stmt(s.q.articleExists, slug), mapString)
	if errors.Is(err, database.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, translate(err, "checking article", nil)
	}
	return true, nil
}
