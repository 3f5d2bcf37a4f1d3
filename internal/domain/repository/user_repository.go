package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/jobify/internal/domain/entity"
)

// ErrNotFound is returned by repositories when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a write collides with a unique key, such as a
// second user with the same email.
var ErrDuplicate = errors.New("duplicate")

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	ListAll(ctx context.Context) ([]*entity.User, error)
	GetByID(ctx context.Context, id entity.EntityID) (*entity.User, error)
	FindByEmail(ctx context.Context, email entity.Email) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	// Update persists the profile fields. Email and password are never written.
	Update(ctx context.Context, u *entity.User) error
	UpdateProfileImage(ctx context.Context, id entity.EntityID, imageID string) (*entity.User, error)
	Delete(ctx context.Context, id entity.EntityID) error
	Count(ctx context.Context) (int64, error)
	// ListImageIDs returns every image id currently referenced by a user.
	ListImageIDs(ctx context.Context) ([]string, error)
}
