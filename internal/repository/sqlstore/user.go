package sqlstore

import (
	"context"

	"github.com/sakif/conduit/internal/apperror"
	"github.com/sakif/conduit/internal/database"
	"github.com/sakif/conduit/internal/model"
)

// CreateUser inserts user and returns the stored row. user.ID and the
// timestamps must already be set. A duplicate email or username is a
// conflict.
func (s *Store) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	created, err := database.Process(ctx, s.ex, "users.create",
		[]database.Statement{
			stmt(s.q.insertUser, user.ID, user.Email, user.Username, user.PasswordHash, user.CreatedAt, user.UpdatedAt),
		},
		stmt(s.q.selectUserByID, user.ID),
		mapUser,
	)
	if err != nil {
		return nil, translate(err, "creating user", nil)
	}
	return created, nil
}

// GetUserByID returns apperror.ErrNotFound if no user has that id.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := database.Process(ctx, s.ex, "users.get_by_id", nil, stmt(s.q.selectUserByID, id), mapUser)
	if err != nil {
		return nil, translate(err, "getting user", apperror.NotFound("user", id))
	}
	return u, nil
}

// GetUserByEmail returns apperror.ErrNotFound if no user has that email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := database.Process(ctx, s.ex, "users.get_by_email", nil, stmt(s.q.selectUserByEmail, email), mapUser)
	if err != nil {
		return nil, translate(err, "getting user by email", apperror.NotFound("user", email))
	}
	return u, nil
}

// UpdateUser applies a partial update. Empty fields in changes keep their
// stored value; the rule is evaluated inside the UPDATE.
func (s *Store) UpdateUser(ctx context.Context, id string, changes model.UserChanges) (*model.User, error) {
	u, err := database.Process(ctx, s.ex, "users.update",
		[]database.Statement{
			guarded(s.q.updateUser,
				changes.Email, changes.Username, changes.PasswordHash, changes.Bio, changes.Image,
				s.now(), id),
		},
		stmt(s.q.selectUserByID, id),
		mapUser,
	)
	if err != nil {
		return nil, translate(err, "updating user", apperror.NotFound("user", id))
	}
	return u, nil
}
