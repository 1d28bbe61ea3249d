package user

import (
	"context"
	"errors"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateLoginID is returned when attempting to create a user with
	// an existing login ID.
	ErrDuplicateLoginID = errors.New("login id already exists")
)

// Store defines the interface for user persistence operations.
type Store interface {
	// Create creates a new user in the store.
	Create(ctx context.Context, user *User) error

	// GetByLoginID retrieves a user by their login ID.
	GetByLoginID(ctx context.Context, loginID string) (*User, error)

	// Exists reports whether a user with the login ID exists.
	Exists(ctx context.Context, loginID string) (bool, error)

	// Update updates a user with the given setters.
	Update(ctx context.Context, loginID string, setters ...UpdateSetter) error

	// DeleteByLoginIDs removes the users with the given login IDs and
	// returns how many were deleted.
	DeleteByLoginIDs(ctx context.Context, loginIDs []string) (int64, error)

	// List retrieves a paginated list of users.
	List(ctx context.Context, limit, offset int) ([]*User, error)

	// ListTestUsers retrieves all users created by the harness.
	ListTestUsers(ctx context.Context) ([]*User, error)
}

// UpdateSetter is a function that updates a user field.
type UpdateSetter func(*User) error
