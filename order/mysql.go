package order

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

// NewMySQLStore creates a new MySQL-backed order store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new order in the database.
func (s *MySQLStore) Create(ctx context.Context, order *Order) error {
	if err := order.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		// Check for duplicate key error (MySQL and SQLite)
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateOrderNumber
		}
		s.logger.Error(ctx, "failed to create order", logger.Fields{
			"error":        err.Error(),
			"order_number": order.OrderNumber,
		})
		return err
	}

	s.logger.Info(ctx, "order created", logger.Fields{
		"order_number": order.OrderNumber,
		"status":       string(order.Status),
	})

	return nil
}

// GetByOrderNumber retrieves an order by its order number.
func (s *MySQLStore) GetByOrderNumber(ctx context.Context, orderNumber string) (*Order, error) {
	var order Order
	err := s.db.WithContext(ctx).
		Where("order_number = ?", orderNumber).
		First(&order).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		s.logger.Error(ctx, "failed to get order", logger.Fields{
			"error":        err.Error(),
			"order_number": orderNumber,
		})
		return nil, err
	}

	return &order, nil
}

// Exists reports whether an order with the order number exists.
func (s *MySQLStore) Exists(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Order{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update updates an order with the given setters.
func (s *MySQLStore) Update(ctx context.Context, orderNumber string, setters ...UpdateSetter) error {
	order, err := s.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return err
	}

	for _, setter := range setters {
		if err := setter(order); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Save(order).Error; err != nil {
		s.logger.Error(ctx, "failed to update order", logger.Fields{
			"error":        err.Error(),
			"order_number": orderNumber,
		})
		return err
	}

	s.logger.Info(ctx, "order updated", logger.Fields{
		"order_number": orderNumber,
	})

	return nil
}

// DeleteByOrderNumbers removes the orders with the given order numbers.
func (s *MySQLStore) DeleteByOrderNumbers(ctx context.Context, orderNumbers []string) (int64, error) {
	if len(orderNumbers) == 0 {
		return 0, nil
	}

	result := s.db.WithContext(ctx).
		Where("order_number IN ?", orderNumbers).
		Delete(&Order{})

	if result.Error != nil {
		s.logger.Error(ctx, "failed to delete orders", logger.Fields{
			"error": result.Error.Error(),
		})
		return 0, result.Error
	}

	s.logger.Info(ctx, "orders deleted", logger.Fields{
		"count": result.RowsAffected,
	})

	return result.RowsAffected, nil
}

// List retrieves a paginated list of orders.
func (s *MySQLStore) List(ctx context.Context, limit, offset int) ([]*Order, error) {
	var orders []*Order
	err := s.db.WithContext(ctx).
		Limit(limit).
		Offset(offset).
		Order("order_number").
		Find(&orders).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list orders", logger.Fields{
			"error":  err.Error(),
			"limit":  limit,
			"offset": offset,
		})
		return nil, err
	}

	return orders, nil
}

// ListTestOrders retrieves all orders created by the harness.
func (s *MySQLStore) ListTestOrders(ctx context.Context) ([]*Order, error) {
	var orders []*Order
	err := s.db.WithContext(ctx).
		Where("created_for_test = ?", true).
		Find(&orders).Error
	if err != nil {
		s.logger.Error(ctx, "failed to list test orders", logger.Fields{
			"error": err.Error(),
		})
		return nil, err
	}
	return orders, nil
}

// CountByStatus returns how many orders exist per status.
func (s *MySQLStore) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	type row struct {
		Status Status
		Count  int64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&Order{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		s.logger.Error(ctx, "failed to count orders by status", logger.Fields{
			"error": err.Error(),
		})
		return nil, err
	}

	out := make(map[Status]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}
