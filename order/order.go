package order

import (
	"errors"
	"time"
)

var (
	// ErrInvalidOrderNumber is returned when an order number is empty.
	ErrInvalidOrderNumber = errors.New("order number is required")

	// ErrInvalidQuantity is returned when a quantity is not positive.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidStatus is returned when a status is not one of the known values.
	ErrInvalidStatus = errors.New("invalid order status")
)

// Status is the lifecycle state of an order in the app under test.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Statuses returns all valid order statuses.
func Statuses() []Status {
	return []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is a purchase order in the order management app under test. Orders
// seeded by the harness carry CreatedForTest so cleanup can find them again.
type Order struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	OrderNumber    string    `json:"order_number" gorm:"uniqueIndex;not null"`
	CustomerName   string    `json:"customer_name"`
	Item           string    `json:"item" gorm:"not null"`
	Quantity       int       `json:"quantity" gorm:"not null"`
	Price          int       `json:"price" gorm:"not null"`
	Status         Status    `json:"status" gorm:"default:pending"`
	CreatedForTest bool      `json:"created_for_test" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Validate checks if the order has valid required fields.
func (o *Order) Validate() error {
	if o.OrderNumber == "" {
		return ErrInvalidOrderNumber
	}
	if o.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if o.Status != "" && !ValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	return nil
}
