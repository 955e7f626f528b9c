// Package model defines the data structures used throughout the application.
//
// There are two kinds of types here:
//   - Entities, which mirror a stored row (User).
//   - Views, which are assembled at read time and carry derived fields that are
//     never stored (Profile.Following, Article.Favorited, Article.FavoritesCount,
//     Article.TagList). These are what the API serialises.
package model

import "time"

// User is a registered account.
//
// Bio and Image are pointers because both are optional and the API renders
// an unset value as JSON null rather than an empty string.
type User struct {
	ID           string    `json:"-"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Bio          *string   `json:"bio"`
	Image        *string   `json:"image"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// UserChanges is a partial update of a user. An empty string leaves the stored
// column unchanged; the rule is applied inside the UPDATE statement itself.
type UserChanges struct {
	Email        string
	Username     string
	PasswordHash string
	Bio          string
	Image        string
}

// Profile is the public view of a user as seen by a particular viewer.
type Profile struct {
	Username  string  `json:"username"`
	Bio       *string `json:"bio"`
	Image     *string `json:"image"`
	Following bool    `json:"following"`
}
