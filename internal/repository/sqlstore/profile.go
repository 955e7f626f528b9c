package sqlstore

import (
	"context"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/database"
	"github.com/sakif/conduit/internal/model"
)

// GetProfile returns username's profile as seen by viewer.
func (s *Store) GetProfile(ctx context.Context, username string, viewer model.Viewer) (*model.Profile, error) {
	p, err := database.Process(ctx, s.ex, "profiles.get", nil,
		stmt(s.q.selectProfile, viewer.Arg(), username), mapProfile)
	if err != nil {
		return nil, translate(err, "getting profile", apperror.NotFound("profile", username))
	}
	return p, nil
}

// Follow adds the edge followerID → username unless it already exists and
// returns the followee's profile. Following yourself inserts nothing.
func (s *Store) Follow(ctx context.Context, followerID, username string) (*model.Profile, error) {
	p, err := database.Process(ctx, s.ex, "profiles.follow",
		[]database.Statement{
			stmt(s.q.follow, followerID, s.now(), username, followerID, followerID),
		},
		stmt(s.q.selectProfile, followerID, username),
		mapProfile,
	)
	if err != nil {
		return nil, translate(err, "following", apperror.NotFound("profile", username))
	}
	return p, nil
}

// Unfollow removes the edge if present and returns the followee's profile.
func (s *Store) Unfollow(ctx context.Context, followerID, username string) (*model.Profile, error) {
	p, err := database.Process(ctx, s.ex, "profiles.unfollow",
		[]database.Statement{
			stmt(s.q.unfollow, followerID, username),
		},
		stmt(s.q.selectProfile, followerID, username),
		mapProfile,
	)
	if err != nil {
		return nil, translate(err, "unfollowing", apperror.NotFound("profile", username))
	}
	return p, nil
}
