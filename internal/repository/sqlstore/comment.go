package sqlstore

import (
	"context"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/database"
	"github.com/sakif/conduit/internal/model"
)

// AddComment attaches a comment to the article with slug. The insert selects
// the article row, so an unknown slug inserts nothing and the guard reports
// NotFound.
func (s *Store) AddComment(ctx context.Context, slug string, d model.CommentDraft) (*model.Comment, error) {
	c, err := database.Process(ctx, s.ex, "comments.add",
		[]database.Statement{
			guarded(s.q.insertComment, d.ID, d.AuthorID, d.Body, d.CreatedAt, d.CreatedAt, slug),
		},
		stmt(s.q.selectComment, d.AuthorID, d.ID),
		mapComment,
	)
	if err != nil {
		return nil, translate(err, "adding comment", apperror.NotFound("article", slug))
	}
	return &c, nil
}

// ListComments returns the comments on the article with slug, newest first.
func (s *Store) ListComments(ctx context.Context, slug string, viewer model.Viewer) ([]model.Comment, error) {
	ok, err := s.articleExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotFound("article", slug)
	}

	comments, err := database.ProcessContainer(ctx, s.ex, "comments.list", nil,
		stmt(s.q.selectComments, viewer.Arg(), slug), mapComment)
	if err != nil {
		return nil, translate(err, "listing comments", nil)
	}
	return comments, nil
}

// DeleteComment removes the comment if authorID wrote it and it belongs to
// the article with slug.
func (s *Store) DeleteComment(ctx context.Context, slug, commentID, authorID string) error {
	err := s.ex.Exec(ctx, "comments.delete",
		guarded(s.q.deleteComment, commentID, authorID, slug),
	)
	return translate(err, "deleting comment", apperror.NotFoundOrForbidden("comment", commentID))
}
