// Package repository declares the storage contracts the service layer depends
// on. The SQL implementation lives in repository/sqlstore; service tests use
// in-memory fakes.
//
// Every method that computes a per-viewer field takes a model.Viewer. Methods
// that act on behalf of a user take that user's id and enforce ownership in
// the same statement as the mutation; a non-owner gets apperror.ErrNotFound.
package repository

import (
	"context"

	"github.com/sakif/conduit/internal/model"
)

// Pagination limits shared by the list endpoints.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type ListOptions struct {
	Limit  int
	Offset int
}

// Normalize applies the default limit and clamps to MaxLimit.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// ArticleFilter narrows a listing. Empty fields do not filter; set fields
// combine conjunctively.
type ArticleFilter struct {
	Tag       string // articles carrying this tag
	Author    string // articles written by this username
	Favorited string // articles favorited by this username
	ListOptions
}

// ArticlePage is one page of a listing plus the total number of matches.
type ArticlePage struct {
	Articles []model.Article
	Count    int
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, changes model.UserChanges) (*model.User, error)
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, username string, viewer model.Viewer) (*model.Profile, error)
	Follow(ctx context.Context, followerID, username string) (*model.Profile, error)
	Unfollow(ctx context.Context, followerID, username string) (*model.Profile, error)
}

type ArticleRepository interface {
	CreateArticle(ctx context.Context, draft model.ArticleDraft) (*model.Article, error)
	GetArticle(ctx context.Context, slug string, viewer model.Viewer) (*model.Article, error)
	UpdateArticle(ctx context.Context, slug, authorID string, changes model.ArticleChanges) (*model.Article, error)
	DeleteArticle(ctx context.Context, slug, authorID string) error
	ListArticles(ctx context.Context, filter ArticleFilter, viewer model.Viewer) (*ArticlePage, error)
	Feed(ctx context.Context, userID string, opts ListOptions) (*ArticlePage, error)
	Favorite(ctx context.Context, slug, userID string) (*model.Article, error)
	Unfavorite(ctx context.Context, slug, userID string) (*model.Article, error)
	// SlugsLike returns the stored slugs equal to base or of the form base-N.
	SlugsLike(ctx context.Context, base string) ([]string, error)
}

type CommentRepository interface {
	AddComment(ctx context.Context, slug string, comment model.CommentDraft) (*model.Comment, error)
	ListComments(ctx context.Context, slug string, viewer model.Viewer) ([]model.Comment, error)
	DeleteComment(ctx context.Context, slug, commentID, authorID string) error
}

type TagRepository interface {
	ListTags(ctx context.Context) ([]string, error)
}
