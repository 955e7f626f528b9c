package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// Hand-written in-memory implementations of the repository interfaces. They
// model only what the services rely on: uniqueness, not-found, and ownership
// checks. The SQL behaviour itself is covered by the sqlstore tests.

var errStoreDown = errors.New("store down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[string]*model.User
	fail  error
	calls []model.UserChanges
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*model.User{}}
}

func (f *fakeUsers) CreateUser(_ context.Context, u *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, apperror.Conflict("email", "email is already taken")
		}
		if existing.Username == u.Username {
			return nil, apperror.Conflict("username", "username is already taken")
		}
	}
	stored := *u
	f.byID[u.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	out := *u
	return &out, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	for _, u := range f.byID {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUsers) UpdateUser(_ context.Context, id string, c model.UserChanges) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&u.Email, c.Email)
	set(&u.Username, c.Username)
	set(&u.PasswordHash, c.PasswordHash)
	if c.Bio != "" {
		bio := c.Bio
		u.Bio = &bio
	}
	if c.Image != "" {
		img := c.Image
		u.Image = &img
	}
	out := *u
	return &out, nil
}

type fakeProfiles struct {
	follows map[[2]string]bool // follower id, followee username
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{follows: map[[2]string]bool{}}
}

func (f *fakeProfiles) GetProfile(_ context.Context, username string, viewer model.Viewer) (*model.Profile, error) {
	id, _ := viewer.UserID()
	return &model.Profile{Username: username, Following: f.follows[[2]string{id, username}]}, nil
}

func (f *fakeProfiles) Follow(_ context.Context, followerID, username string) (*model.Profile, error) {
	if username == "ghost" {
		return nil, apperror.NotFound("profile", username)
	}
	f.follows[[2]string{followerID, username}] = true
	return &model.Profile{Username: username, Following: true}, nil
}

func (f *fakeProfiles) Unfollow(_ context.Context, followerID, username string) (*model.Profile, error) {
	delete(f.follows, [2]string{followerID, username})
	return &model.Profile{Username: username}, nil
}

type fakeArticles struct {
	slugs   []string
	drafts  []model.ArticleDraft
	changes []model.ArticleChanges
	owners  map[string]string // slug -> author id
}

func newFakeArticles(existing ...string) *fakeArticles {
	f := &fakeArticles{owners: map[string]string{}}
	for _, s := range existing {
		f.slugs = append(f.slugs, s)
		f.owners[s] = "owner"
	}
	return f
}

func (f *fakeArticles) CreateArticle(_ context.Context, d model.ArticleDraft) (*model.Article, error) {
	for _, s := range f.slugs {
		if s == d.Slug {
			return nil, apperror.Conflict("slug", "slug is already taken")
		}
	}
	f.slugs = append(f.slugs, d.Slug)
	f.owners[d.Slug] = d.AuthorID
	f.drafts = append(f.drafts, d)

	tags := append([]string{}, d.TagList...)
	sort.Strings(tags)
	return &model.Article{
		ID: d.ID, Slug: d.Slug, Title: d.Title, Description: d.Description, Body: d.Body,
		TagList: tags, CreatedAt: d.CreatedAt, UpdatedAt: d.CreatedAt,
	}, nil
}

func (f *fakeArticles) GetArticle(_ context.Context, slug string, _ model.Viewer) (*model.Article, error) {
	if _, ok := f.owners[slug]; !ok {
		return nil, apperror.NotFound("article", slug)
	}
	return &model.Article{Slug: slug}, nil
}

func (f *fakeArticles) UpdateArticle(_ context.Context, slug, authorID string, c model.ArticleChanges) (*model.Article, error) {
	f.changes = append(f.changes, c)
	if f.owners[slug] != authorID {
		return nil, apperror.NotFoundOrForbidden("article", slug)
	}
	final := slug
	if c.Slug != "" {
		final = c.Slug
	}
	return &model.Article{Slug: final, Title: c.Title}, nil
}

func (f *fakeArticles) DeleteArticle(_ context.Context, slug, authorID string) error {
	if f.owners[slug] != authorID {
		return apperror.NotFoundOrForbidden("article", slug)
	}
	delete(f.owners, slug)
	return nil
}

func (f *fakeArticles) ListArticles(context.Context, repository.ArticleFilter, model.Viewer) (*repository.ArticlePage, error) {
	return &repository.ArticlePage{Articles: []model.Article{}}, nil
}

func (f *fakeArticles) Feed(context.Context, string, repository.ListOptions) (*repository.ArticlePage, error) {
	return &repository.ArticlePage{Articles: []model.Article{}}, nil
}

func (f *fakeArticles) Favorite(_ context.Context, slug, _ string) (*model.Article, error) {
	return &model.Article{Slug: slug, Favorited: true, FavoritesCount: 1}, nil
}

func (f *fakeArticles) Unfavorite(_ context.Context, slug, _ string) (*model.Article, error) {
	return &model.Article{Slug: slug}, nil
}

func (f *fakeArticles) SlugsLike(_ context.Context, base string) ([]string, error) {
	var out []string
	for _, s := range f.slugs {
		if s == base || strings.HasPrefix(s, base+"-") {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeComments struct {
	drafts []model.CommentDraft
}

func (f *fakeComments) AddComment(_ context.Context, slug string, d model.CommentDraft) (*model.Comment, error) {
	if slug == "missing" {
		return nil, apperror.NotFound("article", slug)
	}
	f.drafts = append(f.drafts, d)
	return &model.Comment{ID: d.ID, Body: d.Body, CreatedAt: d.CreatedAt, UpdatedAt: d.CreatedAt}, nil
}

func (f *fakeComments) ListComments(context.Context, string, model.Viewer) ([]model.Comment, error) {
	return []model.Comment{}, nil
}

func (f *fakeComments) DeleteComment(_ context.Context, _, _, authorID string) error {
	if authorID != "author" {
		return apperror.NotFoundOrForbidden("comment", "c1")
	}
	return nil
}
