package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/repository"
)

// ProfileService reads public profiles and manages follow edges.
type ProfileService struct {
	profiles repository.ProfileRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

func NewProfileService(profiles repository.ProfileRepository, users repository.UserRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, users: users, logger: logger}
}

// Get returns username's profile. Following is always false for an
// anonymous viewer.
func (s *ProfileService) Get(ctx context.Context, username string, viewer model.Viewer) (*model.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, username, viewer)
	if err != nil {
		return nil, fmt.Errorf("service/profile: getting %q: %w", username, err)
	}
	return p, nil
}

// Follow makes followerID follow username. Following someone twice is a
// no-op; following yourself is rejected.
func (s *ProfileService) Follow(ctx context.Context, followerID, username string) (*model.Profile, error) {
	me, err := s.users.GetUserByID(ctx, followerID)
	if err != nil {
		return nil, fmt.Errorf("service/profile: fetching follower %s: %w", followerID, err)
	}
	if me.Username == username {
		return nil, apperror.ValidationFailed("username", "you cannot follow yourself")
	}

	p, err := s.profiles.Follow(ctx, followerID, username)
	if err != nil {
		return nil, fmt.Errorf("service/profile: following %q: %w", username, err)
	}

	s.logger.Info("user followed",
		slog.String("followerID", followerID),
		slog.String("username", username),
	)
	return p, nil
}

// Unfollow removes the follow edge. Unfollowing someone you do not follow is
// a no-op.
func (s *ProfileService) Unfollow(ctx context.Context, followerID, username string) (*model.Profile, error) {
	p, err := s.profiles.Unfollow(ctx, followerID, username)
	if err != nil {
		return nil, fmt.Errorf("service/profile: unfollowing %q: %w", username, err)
	}
	return p, nil
}
