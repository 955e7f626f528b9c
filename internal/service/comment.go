package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/repository"
)

// CommentInput is the payload of POST /api/articles/:slug/comments.
type CommentInput struct {
	Body string `json:"body" validate:"required,max=10000"`
}

// CommentService handles comments on articles.
type CommentService struct {
	comments repository.CommentRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewCommentService(comments repository.CommentRepository, logger *slog.Logger) *CommentService {
	return &CommentService{comments: comments, logger: logger, now: utcNow}
}

// Add posts a comment by authorID on the article with slug.
func (s *CommentService) Add(ctx context.Context, slug, authorID string, in CommentInput) (*model.Comment, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	c, err := s.comments.AddComment(ctx, slug, model.CommentDraft{
		ID:        xid.New().String(),
		AuthorID:  authorID,
		Body:      in.Body,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("service/comment: commenting on %q: %w", slug, err)
	}

	s.logger.Info("comment added",
		slog.String("commentID", c.ID),
		slog.String("slug", slug),
		slog.String("authorID", authorID),
	)
	return c, nil
}

// List returns the article's comments, newest first.
func (s *CommentService) List(ctx context.Context, slug string, viewer model.Viewer) ([]model.Comment, error) {
	comments, err := s.comments.ListComments(ctx, slug, viewer)
	if err != nil {
		return nil, fmt.Errorf("service/comment: listing %q: %w", slug, err)
	}
	return comments, nil
}

// Delete removes a comment. Only its author can; anyone else gets NotFound
// and the comment stays.
func (s *CommentService) Delete(ctx context.Context, slug, commentID, authorID string) error {
	if err := s.comments.DeleteComment(ctx, slug, commentID, authorID); err != nil {
		return fmt.Errorf("service/comment: deleting %s: %w", commentID, err)
	}
	s.logger.Info("comment deleted", slog.String("commentID", commentID), slog.String("authorID", authorID))
	return nil
}

// TagService lists tags.
type TagService struct {
	tags repository.TagRepository
}

func NewTagService(tags repository.TagRepository) *TagService {
	return &TagService{tags: tags}
}

// List returns every tag in use, sorted by name.
func (s *TagService) List(ctx context.Context) ([]string, error) {
	tags, err := s.tags.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/tag: listing: %w", err)
	}
	return tags, nil
}
