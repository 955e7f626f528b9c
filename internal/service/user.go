package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/auth"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/repository"
)

// RegisterInput is the payload of POST /api/users.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,max=64,username"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginInput is the payload of POST /api/users/login. Email has no format
// rule: a malformed address is just a credential that matches no account.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserInput is the payload of PUT /api/user. Empty fields are left
// unchanged.
type UpdateUserInput struct {
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Username string `json:"username" validate:"omitempty,max=64,username"`
	Password string `json:"password" validate:"omitempty,max=72"`
	Bio      string `json:"bio" validate:"max=2000"`
	Image    string `json:"image" validate:"omitempty,url,max=2048"`
}

// AuthResult bundles a user with a freshly issued token, which is exactly
// what the User DTO needs.
type AuthResult struct {
	User  *model.User
	Token string
}

// errBadCredentials is returned for an unknown email and for a wrong password
// alike, so a client cannot probe which emails are registered.
var errBadCredentials = apperror.Unauthorized("email or password is invalid")

// UserService handles registration, login and the current user's account.
//
// DEPENDENCIES (injected via NewUserService):
//   - users      repository.UserRepository → read/write user rows
//   - tokens     *auth.TokenService        → issue tokens
//   - passwords  *auth.PasswordService     → bcrypt hashing
//   - tokenTTL   time.Duration             → lifetime of every issued token
type UserService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	tokenTTL  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewUserService creates a UserService.
func NewUserService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       utcNow,
	}
}

// Register creates an account and returns it with a token, so a new user is
// signed in immediately.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	now := s.now()
	user, err := s.users.CreateUser(ctx, &model.User{
		ID:           xid.New().String(),
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("service/user: registering %q: %w", in.Username, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return s.withToken(user)
}

// Login checks the credentials and returns the user with a new token.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("service/user: looking up login: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			s.logger.Info("login rejected", slog.String("userID", user.ID))
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("service/user: verifying password: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return s.withToken(user)
}

// Current returns the authenticated user.
func (s *UserService) Current(ctx context.Context, userID string) (*AuthResult, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/user: fetching user %s: %w", userID, err)
	}
	return s.withToken(user)
}

// Update applies a partial update to the authenticated user. A non-empty
// password is re-hashed; empty fields keep their stored values.
func (s *UserService) Update(ctx context.Context, userID string, in UpdateUserInput) (*AuthResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	changes := model.UserChanges{
		Email:    in.Email,
		Username: in.Username,
		Bio:      in.Bio,
		Image:    in.Image,
	}
	if in.Password != "" {
		hash, err := s.passwords.Hash(in.Password)
		if err != nil {
			return nil, apperror.ValidationFailed("password", err.Error())
		}
		changes.PasswordHash = hash
	}

	user, err := s.users.UpdateUser(ctx, userID, changes)
	if err != nil {
		return nil, fmt.Errorf("service/user: updating user %s: %w", userID, err)
	}

	s.logger.Info("user updated", slog.String("userID", user.ID))
	return s.withToken(user)
}

func (s *UserService) withToken(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, s.now(), s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("service/user: issuing token for %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
