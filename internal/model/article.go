package model

import "time"

// Article is the read view of an article for one viewer.
type Article struct {
	ID             string    `json:"-"`
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Body           string    `json:"body"`
	TagList        []string  `json:"tagList"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Favorited      bool      `json:"favorited"`
	FavoritesCount int       `json:"favoritesCount"`
	Author         Profile   `json:"author"`
}

// ArticleDraft carries everything needed to insert a new article. The ID,
// slug and timestamp are decided by the service before the insert runs.
type ArticleDraft struct {
	ID          string
	Slug        string
	Title       string
	Description string
	Body        string
	AuthorID    string
	TagList     []string
	CreatedAt   time.Time
}

// ArticleChanges is a partial update of an article. Empty fields keep the
// stored value. Slug is recomputed by the service whenever Title is set.
type ArticleChanges struct {
	Slug        string
	Title       string
	Description string
	Body        string
	UpdatedAt   time.Time
}

// CommentDraft carries a new comment. The article is addressed by slug.
type CommentDraft struct {
	ID        string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

// Comment is the read view of a comment. UpdatedAt mirrors CreatedAt because
// comments cannot be edited.
type Comment struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Body      string    `json:"body"`
	Author    Profile   `json:"author"`
}
