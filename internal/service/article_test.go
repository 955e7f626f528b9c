package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/model"
)

func newTestArticleService(existing ...string) (*ArticleService, *fakeArticles) {
	repo := newFakeArticles(existing...)
	svc := NewArticleService(repo, discardLogger())
	svc.now = fixedClock
	return svc, repo
}

var dragon = ArticleInput{
	Title:       "How to train your dragon",
	Description: "Ever wonder how?",
	Body:        "You have to believe",
	TagList:     []string{"dragons"},
}

// =========================================================================
// CREATE
// =========================================================================

func TestCreate_DerivesSlug(t *testing.T) {
	svc, repo := newTestArticleService()

	a, err := svc.Create(context.Background(), "jake", dragon)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if a.Slug != "how-to-train-your-dragon" {
		t.Errorf("Slug = %q, want %q", a.Slug, "how-to-train-your-dragon")
	}
	if !reflect.DeepEqual(a.TagList, []string{"dragons"}) {
		t.Errorf("TagList = %v", a.TagList)
	}
	if a.Favorited || a.FavoritesCount != 0 {
		t.Errorf("new article favorited=%v count=%d", a.Favorited, a.FavoritesCount)
	}

	d := repo.drafts[0]
	if d.AuthorID != "jake" || d.ID == "" || !d.CreatedAt.Equal(fixedNow) {
		t.Errorf("draft = %+v", d)
	}
}

func TestCreate_SlugCollisionsAreSuffixed(t *testing.T) {
	svc, _ := newTestArticleService("how-to-train-your-dragon", "how-to-train-your-dragon-2")

	a, err := svc.Create(context.Background(), "jake", dragon)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if a.Slug != "how-to-train-your-dragon-3" {
		t.Errorf("Slug = %q, want the -3 suffix", a.Slug)
	}
}

func TestCreate_FeedTitleAvoidsFeedRoute(t *testing.T) {
	svc, _ := newTestArticleService()

	in := dragon
	in.Title = "Feed"
	a, err := svc.Create(context.Background(), "jake", in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if a.Slug != "feed-2" {
		t.Errorf("Slug = %q, want feed-2", a.Slug)
	}
}

func TestCreate_NormalizesTags(t *testing.T) {
	svc, repo := newTestArticleService()

	in := dragon
	in.TagList = []string{" dragons ", "training", "dragons"}
	if _, err := svc.Create(context.Background(), "jake", in); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got := repo.drafts[0].TagList; !reflect.DeepEqual(got, []string{"dragons", "training"}) {
		t.Errorf("TagList = %v, want trimmed and de-duplicated", got)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestArticleService()

	tests := []struct {
		name  string
		edit  func(*ArticleInput)
		field string
	}{
		{"missing title", func(in *ArticleInput) { in.Title = "  " }, "title"},
		{"missing body", func(in *ArticleInput) { in.Body = "" }, "body"},
		{"missing description", func(in *ArticleInput) { in.Description = "" }, "description"},
		{"blank tag", func(in *ArticleInput) { in.TagList = []string{"ok", "  "} }, "tagList[1]"},
		{"comma in tag", func(in *ArticleInput) { in.TagList = []string{"a,b"} }, "tagList[0]"},
		{"title without letters", func(in *ArticleInput) { in.Title = "!!!" }, "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := dragon
			in.TagList = append([]string{}, dragon.TagList...)
			tt.edit(&in)

			_, err := svc.Create(context.Background(), "jake", in)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Create() error = %v, want ErrValidation", err)
			}
			if _, ok := apperror.FieldErrors(err)[tt.field]; !ok {
				t.Errorf("FieldErrors() = %v, want key %q", apperror.FieldErrors(err), tt.field)
			}
		})
	}
}

// =========================================================================
// UPDATE + DELETE
// =========================================================================

func TestUpdate_NewTitleMovesSlug(t *testing.T) {
	svc, repo := newTestArticleService()
	a, err := svc.Create(context.Background(), "jake", dragon)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	got, err := svc.Update(context.Background(), a.Slug, "jake", ArticleUpdateInput{Title: "Did you train your dragon?"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Slug != "did-you-train-your-dragon" {
		t.Errorf("Slug = %q", got.Slug)
	}
	if c := repo.changes[0]; !c.UpdatedAt.Equal(fixedNow) {
		t.Errorf("UpdatedAt = %v, want the service clock", c.UpdatedAt)
	}
}

func TestUpdate_SameTitleKeepsSlug(t *testing.T) {
	svc, repo := newTestArticleService()
	a, err := svc.Create(context.Background(), "jake", dragon)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := svc.Update(context.Background(), a.Slug, "jake", ArticleUpdateInput{Title: dragon.Title}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if c := repo.changes[0]; c.Slug != "" {
		t.Errorf("changes.Slug = %q, want empty (unchanged)", c.Slug)
	}
}

func TestUpdate_BodyOnlyLeavesSlugAlone(t *testing.T) {
	svc, repo := newTestArticleService()
	a, _ := svc.Create(context.Background(), "jake", dragon)

	if _, err := svc.Update(context.Background(), a.Slug, "jake", ArticleUpdateInput{Body: "new"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	c := repo.changes[0]
	if c.Slug != "" || c.Title != "" || c.Body != "new" {
		t.Errorf("changes = %+v", c)
	}
}

func TestUpdateAndDelete_NonOwnerIsNotFound(t *testing.T) {
	svc, _ := newTestArticleService()
	a, _ := svc.Create(context.Background(), "jake", dragon)

	_, err := svc.Update(context.Background(), a.Slug, "anna", ArticleUpdateInput{Body: "mine now"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() by non-owner error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(context.Background(), a.Slug, "anna"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() by non-owner error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(context.Background(), a.Slug, "jake"); err != nil {
		t.Errorf("Delete() by owner error = %v", err)
	}
}

func TestGet_Unknown(t *testing.T) {
	svc, _ := newTestArticleService()
	_, err := svc.Get(context.Background(), "nope", model.Anonymous())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}
