package order

import (
	"context"
	"errors"
)

var (
	// ErrOrderNotFound is returned when an order is not found.
	ErrOrderNotFound = errors.New("order not found")

	// ErrDuplicateOrderNumber is returned when attempting to create an
	// order with an existing order number.
	ErrDuplicateOrderNumber = errors.New("order number already exists")
)

// Store defines the interface for order persistence operations.
type Store interface {
	// Create creates a new order in the store.
	Create(ctx context.Context, order *Order) error

	// GetByOrderNumber retrieves an order by its order number.
	GetByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// Exists reports whether an order with the order number exists.
	Exists(ctx context.Context, orderNumber string) (bool, error)

	// Update updates an order with the given setters.
	Update(ctx context.Context, orderNumber string, setters ...UpdateSetter) error

	// DeleteByOrderNumbers removes the orders with the given order numbers
	// and returns how many were deleted.
	DeleteByOrderNumbers(ctx context.Context, orderNumbers []string) (int64, error)

	// List retrieves a paginated list of orders.
	List(ctx context.Context, limit, offset int) ([]*Order, error)

	// ListTestOrders retrieves all orders created by the harness.
	ListTestOrders(ctx context.Context) ([]*Order, error)

	// CountByStatus returns how many orders exist per status.
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

// UpdateSetter is a function that updates an order field.
type UpdateSetter func(*Order) error
