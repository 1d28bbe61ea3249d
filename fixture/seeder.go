package fixture

import (
	"context"
	"fmt"

	"github.com/hairizuan-noorazman/visual-regression/logger"
	"github.com/hairizuan-noorazman/visual-regression/order"
	"github.com/hairizuan-noorazman/visual-regression/user"
)

// Seeder inserts fixture sets into the application's database and removes
// them again. Seeding is idempotent: rows that already exist are skipped
// unless force is set.
type Seeder struct {
	users  user.Store
	orders order.Store
	logger logger.Logger
}

func NewSeeder(users user.Store, orders order.Store, log logger.Logger) *Seeder {
	return &Seeder{users: users, orders: orders, logger: log}
}

// Exists reports whether the sentinel fixture rows are already in the
// database.
func (s *Seeder) Exists(ctx context.Context) (bool, error) {
	userExists, err := s.users.Exists(ctx, "visual_test_user")
	if err != nil {
		return false, err
	}
	if userExists {
		return true, nil
	}
	return s.orders.Exists(ctx, "VISUAL_TEST_001")
}

// Seed inserts the set. When data already exists and force is false, nothing
// changes. With force, the set's rows are removed and recreated so stale
// fixtures cannot drift under the baselines.
func (s *Seeder) Seed(ctx context.Context, set Set, force bool) error {
	exists, err := s.Exists(ctx)
	if err != nil {
		return fmt.Errorf("unable to check existing fixtures: %w", err)
	}
	if exists && !force {
		s.logger.Info(ctx, "fixtures already seeded, skipping", nil)
		return nil
	}
	if exists {
		if err := s.Cleanup(ctx, set); err != nil {
			return err
		}
	}

	seededUsers := 0
	for _, tu := range set.Users {
		taken, err := s.users.Exists(ctx, tu.LoginID)
		if err != nil {
			return err
		}
		if taken {
			continue
		}
		u := &user.User{
			LoginID:        tu.LoginID,
			DisplayName:    tu.DisplayName,
			CreatedForTest: tu.CreatedForTest,
		}
		if err := u.SetPassword(tu.Password); err != nil {
			return fmt.Errorf("unable to hash password for %s: %w", tu.LoginID, err)
		}
		if err := s.users.Create(ctx, u); err != nil {
			return fmt.Errorf("unable to seed user %s: %w", tu.LoginID, err)
		}
		seededUsers++
	}

	seededOrders := 0
	for _, to := range set.Orders {
		taken, err := s.orders.Exists(ctx, to.OrderNumber)
		if err != nil {
			return err
		}
		if taken {
			continue
		}
		o := &order.Order{
			OrderNumber:    to.OrderNumber,
			CustomerName:   to.CustomerName,
			Item:           to.Item,
			Quantity:       to.Quantity,
			Price:          to.Price,
			Status:         to.Status,
			CreatedForTest: to.CreatedForTest,
		}
		if o.Status == "" {
			o.Status = order.StatusPending
		}
		if err := s.orders.Create(ctx, o); err != nil {
			return fmt.Errorf("unable to seed order %s: %w", to.OrderNumber, err)
		}
		seededOrders++
	}

	s.logger.Info(ctx, "fixtures seeded", logger.Fields{
		"users":  seededUsers,
		"orders": seededOrders,
	})
	return nil
}

// Cleanup removes the set's rows from the database. Rows not created by the
// set are untouched.
func (s *Seeder) Cleanup(ctx context.Context, set Set) error {
	loginIDs := make([]string, 0, len(set.Users))
	for _, u := range set.Users {
		loginIDs = append(loginIDs, u.LoginID)
	}
	orderNumbers := make([]string, 0, len(set.Orders))
	for _, o := range set.Orders {
		orderNumbers = append(orderNumbers, o.OrderNumber)
	}

	deletedUsers, err := s.users.DeleteByLoginIDs(ctx, loginIDs)
	if err != nil {
		return fmt.Errorf("unable to clean up users: %w", err)
	}
	deletedOrders, err := s.orders.DeleteByOrderNumbers(ctx, orderNumbers)
	if err != nil {
		return fmt.Errorf("unable to clean up orders: %w", err)
	}

	s.logger.Info(ctx, "fixtures cleaned up", logger.Fields{
		"users":  deletedUsers,
		"orders": deletedOrders,
	})
	return nil
}

// CleanupAll removes every harness-created row, regardless of which set put
// it there. Used by session cleanup where the original set may be lost.
func (s *Seeder) CleanupAll(ctx context.Context) error {
	testUsers, err := s.users.ListTestUsers(ctx)
	if err != nil {
		return err
	}
	testOrders, err := s.orders.ListTestOrders(ctx)
	if err != nil {
		return err
	}
	set := Set{}
	for _, u := range testUsers {
		set.Users = append(set.Users, TestUser{LoginID: u.LoginID})
	}
	for _, o := range testOrders {
		set.Orders = append(set.Orders, TestOrder{OrderNumber: o.OrderNumber})
	}
	return s.Cleanup(ctx, set)
}

// Scenario describes a named predetermined data state.
type Scenario struct {
	Name        string
	Description string
	Set         Set
}

// Scenarios returns the predefined data states suites can request.
func Scenarios(gen *Generator) []Scenario {
	return []Scenario{
		{
			Name:        "empty_database",
			Description: "Empty database for testing empty states",
			Set:         Set{},
		},
		{
			Name:        "single_user",
			Description: "Single user with no orders",
			Set: Set{
				Users: []TestUser{{
					LoginID:        "single_user",
					Password:       "password",
					DisplayName:    "Single User",
					CreatedForTest: true,
				}},
			},
		},
		{
			Name:        "user_with_orders",
			Description: "User with multiple orders",
			Set: Set{
				Users: []TestUser{{
					LoginID:        "user_with_orders",
					Password:       "password",
					DisplayName:    "User With Orders",
					CreatedForTest: true,
				}},
				Orders: gen.Orders(5),
			},
		},
		{
			Name:        "full_data",
			Description: "Full test dataset",
			Set:         gen.Generate(5, 20),
		},
	}
}

// ApplyScenario resets harness data and seeds the named scenario, returning
// the set it seeded.
func (s *Seeder) ApplyScenario(ctx context.Context, gen *Generator, name string) (Set, error) {
	for _, sc := range Scenarios(gen) {
		if sc.Name != name {
			continue
		}
		if err := s.CleanupAll(ctx); err != nil {
			return Set{}, err
		}
		if len(sc.Set.Users) == 0 && len(sc.Set.Orders) == 0 {
			s.logger.Info(ctx, "scenario applied", logger.Fields{"scenario": name})
			return sc.Set, nil
		}
		if err := s.Seed(ctx, sc.Set, true); err != nil {
			return Set{}, err
		}
		s.logger.Info(ctx, "scenario applied", logger.Fields{
			"scenario": name,
			"users":    len(sc.Set.Users),
			"orders":   len(sc.Set.Orders),
		})
		return sc.Set, nil
	}
	return Set{}, fmt.Errorf("%w: %s", ErrUnknownScenario, name)
}
