package order

import (
	"testing"

	"github.com/hairizuan-noorazman/visual-regression/logger"
	"github.com/hairizuan-noorazman/visual-regression/testutil"
	"gorm.io/gorm"
)

// setupTestStore creates a test database and order store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, Store) {
	db := testutil.SetupTestDB(t, &Order{})

	log := logger.NewTestLogger()
	store := NewMySQLStore(db, log)

	return db, store
}

// createTestOrder creates a test order with default values.
func createTestOrder(orderNumber string, status Status) *Order {
	return &Order{
		OrderNumber:    orderNumber,
		CustomerName:   "Visual Test Customer",
		Item:           "Test Product",
		Quantity:       1,
		Price:          100,
		Status:         status,
		CreatedForTest: true,
	}
}
