package user

import (
	"testing"

	"github.com/hairizuan-noorazman/visual-regression/logger"
	"github.com/hairizuan-noorazman/visual-regression/testutil"
	"gorm.io/gorm"
)

// setupTestStore creates a test database and user store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, Store) {
	db := testutil.SetupTestDB(t, &User{})

	log := logger.NewTestLogger()
	store := NewMySQLStore(db, log)

	return db, store
}

// createTestUser creates a test user with default values.
func createTestUser(loginID, password string) *User {
	user := &User{
		LoginID:        loginID,
		DisplayName:    "Test User",
		CreatedForTest: true,
	}
	user.SetPassword(password)
	return user
}
