package user

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrPasswordTooShort is returned when a password is less than 4 characters.
	ErrPasswordTooShort = errors.New("password must be at least 4 characters")

	// ErrInvalidLoginID is returned when a login ID is empty.
	ErrInvalidLoginID = errors.New("login id is required")
)

// User is an account in the order management app under test. Accounts seeded
// by the harness carry CreatedForTest so cleanup can find them again.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	LoginID        string    `json:"login_id" gorm:"uniqueIndex;not null"`
	PasswordHash   string    `json:"-" gorm:"not null"`
	DisplayName    string    `json:"display_name"`
	CreatedForTest bool      `json:"created_for_test" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SetPassword hashes and sets the user's password.
func (u *User) SetPassword(password string) error {
	if len(password) < 4 {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies if the provided password matches the user's password hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// Validate checks if the user has valid required fields.
func (u *User) Validate() error {
	if u.LoginID == "" {
		return ErrInvalidLoginID
	}
	return nil
}
