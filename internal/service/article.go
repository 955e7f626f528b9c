package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/repository"
)

// ArticleInput is the payload of POST /api/articles.
type ArticleInput struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"required,max=1000"`
	Body        string   `json:"body" validate:"required,max=100000"`
	TagList     []string `json:"tagList" validate:"max=20,dive,required,max=64,excludes=0x2C"`
}

// ArticleUpdateInput is the payload of PUT /api/articles/:slug. Empty fields
// are left unchanged.
type ArticleUpdateInput struct {
	Title       string `json:"title" validate:"max=255"`
	Description string `json:"description" validate:"max=1000"`
	Body        string `json:"body" validate:"max=100000"`
}

// ArticleService handles articles, their tags and favorites.
type ArticleService struct {
	articles repository.ArticleRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewArticleService(articles repository.ArticleRepository, logger *slog.Logger) *ArticleService {
	return &ArticleService{articles: articles, logger: logger, now: utcNow}
}

// Create publishes an article by authorID. The slug is derived from the
// title and suffixed with -2, -3, ... when an earlier article holds it.
func (s *ArticleService) Create(ctx context.Context, authorID string, in ArticleInput) (*model.Article, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.TagList = normalizeTags(in.TagList)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	slug, err := s.freeSlug(ctx, in.Title, "")
	if err != nil {
		return nil, err
	}

	a, err := s.articles.CreateArticle(ctx, model.ArticleDraft{
		ID:          xid.New().String(),
		Slug:        slug,
		Title:       in.Title,
		Description: in.Description,
		Body:        in.Body,
		AuthorID:    authorID,
		TagList:     in.TagList,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("service/article: creating %q: %w", slug, err)
	}

	s.logger.Info("article created",
		slog.String("slug", a.Slug),
		slog.String("authorID", authorID),
		slog.Int("tags", len(a.TagList)),
	)
	return a, nil
}

// Get returns the article with slug as seen by viewer.
func (s *ArticleService) Get(ctx context.Context, slug string, viewer model.Viewer) (*model.Article, error) {
	a, err := s.articles.GetArticle(ctx, slug, viewer)
	if err != nil {
		return nil, fmt.Errorf("service/article: getting %q: %w", slug, err)
	}
	return a, nil
}

// Update applies a partial update. A new title also moves the article to a
// new slug. Only the author can update; anyone else gets NotFound.
func (s *ArticleService) Update(ctx context.Context, slug, authorID string, in ArticleUpdateInput) (*model.Article, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	changes := model.ArticleChanges{
		Title:       in.Title,
		Description: in.Description,
		Body:        in.Body,
		UpdatedAt:   s.now(),
	}
	if in.Title != "" {
		newSlug, err := s.freeSlug(ctx, in.Title, slug)
		if err != nil {
			return nil, err
		}
		if newSlug != slug {
			changes.Slug = newSlug
		}
	}

	a, err := s.articles.UpdateArticle(ctx, slug, authorID, changes)
	if err != nil {
		return nil, fmt.Errorf("service/article: updating %q: %w", slug, err)
	}

	s.logger.Info("article updated", slog.String("slug", a.Slug), slog.String("authorID", authorID))
	return a, nil
}

// Delete removes the article with its comments, favorites and tag links.
func (s *ArticleService) Delete(ctx context.Context, slug, authorID string) error {
	if err := s.articles.DeleteArticle(ctx, slug, authorID); err != nil {
		return fmt.Errorf("service/article: deleting %q: %w", slug, err)
	}
	s.logger.Info("article deleted", slog.String("slug", slug), slog.String("authorID", authorID))
	return nil
}

// List returns one page of articles matching filter, newest first.
func (s *ArticleService) List(ctx context.Context, filter repository.ArticleFilter, viewer model.Viewer) (*repository.ArticlePage, error) {
	page, err := s.articles.ListArticles(ctx, filter, viewer)
	if err != nil {
		return nil, fmt.Errorf("service/article: listing: %w", err)
	}
	return page, nil
}

// Feed returns one page of articles by authors userID follows.
func (s *ArticleService) Feed(ctx context.Context, userID string, opts repository.ListOptions) (*repository.ArticlePage, error) {
	page, err := s.articles.Feed(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("service/article: feed for %s: %w", userID, err)
	}
	return page, nil
}

// Favorite marks the article as a favorite of userID. Repeating it is a no-op.
func (s *ArticleService) Favorite(ctx context.Context, slug, userID string) (*model.Article, error) {
	a, err := s.articles.Favorite(ctx, slug, userID)
	if err != nil {
		return nil, fmt.Errorf("service/article: favoriting %q: %w", slug, err)
	}
	return a, nil
}

// Unfavorite removes the favorite mark. Removing an absent mark is a no-op.
func (s *ArticleService) Unfavorite(ctx context.Context, slug, userID string) (*model.Article, error) {
	a, err := s.articles.Unfavorite(ctx, slug, userID)
	if err != nil {
		return nil, fmt.Errorf("service/article: unfavoriting %q: %w", slug, err)
	}
	return a, nil
}

// freeSlug derives the slug for title. current is the slug of the article
// being renamed, if any; it does not count as taken.
func (s *ArticleService) freeSlug(ctx context.Context, title, current string) (string, error) {
	base := baseSlug(title)
	if base == "" {
		return "", apperror.ValidationFailed("title", "title must contain at least one letter or digit")
	}

	taken, err := s.articles.SlugsLike(ctx, base)
	if err != nil {
		return "", fmt.Errorf("service/article: looking up slug %q: %w", base, err)
	}
	if current != "" {
		taken = slices.DeleteFunc(taken, func(t string) bool { return t == current })
	}
	return uniqueSlug(base, taken), nil
}

// normalizeTags trims every tag and drops repeats, keeping first-seen order.
// Blank tags are kept so validation can report them.
func normalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if _, dup := seen[t]; dup && t != "" {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
