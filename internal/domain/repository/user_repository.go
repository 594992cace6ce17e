package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/user-directory/internal/domain/entity"
)

// Client-facing error taxonomy. Anything else coming out of a store is a
// storage failure and surfaces as a 500 at the HTTP layer.
var (
	ErrNotFound         = errors.New("user not found")
	ErrDuplicateEmail   = errors.New("email already exists")
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following this user")
)

// UserUpdate is a partial update: nil fields are left untouched, non-nil
// fields are applied even when they point at an empty string.
type UserUpdate struct {
	Name         *string
	Email        *string
	Phone        *string
	DateOfBirth  *string
	ProfileImage *string
}

// IsZero reports whether the update carries no fields at all.
func (u UserUpdate) IsZero() bool {
	return u.Name == nil && u.Email == nil && u.Phone == nil &&
		u.DateOfBirth == nil && u.ProfileImage == nil
}

// UserRepository defines the interface for user and follow-edge storage.
// Implementations are the sole authority on email uniqueness and on keeping
// edges pointing at live users.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*entity.User, error)
	Delete(ctx context.Context, id string) error

	Follow(ctx context.Context, followerID, targetID string) error
	Unfollow(ctx context.Context, followerID, targetID string) error
	CountFollowers(ctx context.Context, id string) (int, error)
	CountFollowing(ctx context.Context, id string) (int, error)
	FollowerIDs(ctx context.Context, id string) ([]string, error)
	FollowingIDs(ctx context.Context, id string) ([]string, error)

	Close() error
}
