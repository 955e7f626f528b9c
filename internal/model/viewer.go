package model

// Viewer is the identity a request is made under. The zero value is the
// anonymous viewer.
//
// Viewer is passed into every query that computes a per-viewer field
// ("following", "favorited"). Arg returns nil for anonymous viewers, which
// binds as SQL NULL; a predicate such as `follower_id = NULL` is never true,
// so anonymous viewers match no relationship rows without any magic id.
type Viewer struct {
	userID string
}

// Anonymous returns a viewer with no identity.
func Anonymous() Viewer {
	return Viewer{}
}

// Authenticated returns a viewer acting as the given user.
func Authenticated(userID string) Viewer {
	return Viewer{userID: userID}
}

// UserID returns the viewer's user id and whether the viewer is authenticated.
func (v Viewer) UserID() (string, bool) {
	return v.userID, v.userID != ""
}

// IsAnonymous reports whether the viewer has no identity.
func (v Viewer) IsAnonymous() bool {
	return v.userID == ""
}

// Arg returns the viewer as a query argument: the user id, or nil (NULL).
func (v Viewer) Arg() any {
	if v.userID == "" {
		return nil
	}
	return v.userID
}
