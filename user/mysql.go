package user

import (
	"context"
	"errors"
	"strings"

	"github.com/hairizuan-noorazman/visual-regression/logger"
	"gorm.io/gorm"
)

// MySQLStore implements the Store interface using GORM and MySQL.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new MySQL-backed user store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new user in the database.
func (s *MySQLStore) Create(ctx context.Context, user *User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		// Check for duplicate key error (MySQL and SQLite)
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateLoginID
		}
		s.logger.Error(ctx, "failed to create user", logger.Fields{
			"error":    err.Error(),
			"login_id": user.LoginID,
		})
		return err
	}

	s.logger.Info(ctx, "user created", logger.Fields{
		"login_id": user.LoginID,
	})

	return nil
}

// GetByLoginID retrieves a user by their login ID.
func (s *MySQLStore) GetByLoginID(ctx context.Context, loginID string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).
		Where("login_id = ?", loginID).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error(ctx, "failed to get user by login ID", logger.Fields{
			"error":    err.Error(),
			"login_id": loginID,
		})
		return nil, err
	}

	return &user, nil
}

// Exists reports whether a user with the login ID exists.
func (s *MySQLStore) Exists(ctx context.Context, loginID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&User{}).
		Where("login_id = ?", loginID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update updates a user with the given setters.
func (s *MySQLStore) Update(ctx context.Context, loginID string, setters ...UpdateSetter) error {
	user, err := s.GetByLoginID(ctx, loginID)
	if err != nil {
		return err
	}

	for _, setter := range setters {
		if err := setter(user); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateLoginID
		}
		s.logger.Error(ctx, "failed to update user", logger.Fields{
			"error":    err.Error(),
			"login_id": loginID,
		})
		return err
	}

	s.logger.Info(ctx, "user updated", logger.Fields{
		"login_id": loginID,
	})

	return nil
}

// DeleteByLoginIDs removes the users with the given login IDs.
func (s *MySQLStore) DeleteByLoginIDs(ctx context.Context, loginIDs []string) (int64, error) {
	if len(loginIDs) == 0 {
		return 0, nil
	}

	result := s.db.WithContext(ctx).
		Where("login_id IN ?", loginIDs).
		Delete(&User{})

	if result.Error != nil {
		s.logger.Error(ctx, "failed to delete users", logger.Fields{
			"error": result.Error.Error(),
		})
		return 0, result.Error
	}

	s.logger.Info(ctx, "users deleted", logger.Fields{
		"count": result.RowsAffected,
	})

	return result.RowsAffected, nil
}

// List retrieves a paginated list of users.
func (s *MySQLStore) List(ctx context.Context, limit, offset int) ([]*User, error) {
	var users []*User
	err := s.db.WithContext(ctx).
		Limit(limit).
		Offset(offset).
		Find(&users).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list users", logger.Fields{
			"error":  err.Error(),
			"limit":  limit,
			"offset": offset,
		})
		return nil, err
	}

	return users, nil
}

// ListTestUsers retrieves all users created by the harness.
func (s *MySQLStore) ListTestUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	err := s.db.WithContext(ctx).
		Where("created_for_test = ?", true).
		Find(&users).Error
	if err != nil {
		s.logger.Error(ctx, "failed to list test users", logger.Fields{
			"error": err.Error(),
		})
		return nil, err
	}
	return users, nil
}
