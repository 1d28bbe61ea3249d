// Package fixture generates and seeds the deterministic test data the visual
// suites depend on: known login accounts and pinned orders that every
// screenshot is captured against.
package fixture

import (
	"errors"
	"time"

	"github.com/hairizuan-noorazman/visual-regression/order"
)

var (
	// ErrUnknownScenario is returned when a scenario name is not registered.
	ErrUnknownScenario = errors.New("unknown scenario")

	// ErrNoFixtures is returned when an operation needs fixture data and
	// none has been generated or loaded.
	ErrNoFixtures = errors.New("no fixture data available")
)

// TestUser is a login account the suites authenticate with. The plaintext
// password is kept so the browser driver can submit the login form.
type TestUser struct {
	LoginID        string `json:"login_id"`
	Password       string `json:"password"`
	DisplayName    string `json:"display_name,omitempty"`
	CreatedForTest bool   `json:"created_for_test"`
}

// TestOrder is an order row the order pages render.
type TestOrder struct {
	OrderNumber    string       `json:"order_number"`
	CustomerName   string       `json:"customer_name"`
	Item           string       `json:"item"`
	Quantity       int          `json:"quantity"`
	Price          int          `json:"price"`
	Status         order.Status `json:"status"`
	CreatedAt      time.Time    `json:"created_at,omitempty"`
	UpdatedAt      time.Time    `json:"updated_at,omitempty"`
	CreatedForTest bool         `json:"created_for_test"`
}

// Set is a complete fixture data set.
type Set struct {
	Users  []TestUser
	Orders []TestOrder
}

// Credentials are the login details the suites use against the app.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Credentials returns the primary login for the set, falling back to the
// app's stock account when the set is empty.
func (s Set) Credentials() Credentials {
	if len(s.Users) > 0 {
		return Credentials{Username: s.Users[0].LoginID, Password: s.Users[0].Password}
	}
	return Credentials{Username: "asdf2", Password: "asdf"}
}

// KnownUsers returns the fixed accounts every environment gets, so login
// screenshots stay stable across seeding runs.
func KnownUsers() []TestUser {
	return []TestUser{
		{
			LoginID:        "visual_test_user",
			Password:       "visual_test_pass",
			DisplayName:    "Visual Test User",
			CreatedForTest: true,
		},
		{
			LoginID:        "asdf2",
			Password:       "asdf",
			DisplayName:    "Default Test User",
			CreatedForTest: true,
		},
		{
			LoginID:        "test_admin",
			Password:       "admin123",
			DisplayName:    "Test Administrator",
			CreatedForTest: true,
		},
	}
}

// PinnedOrders returns the fixed orders the order pages are screenshotted
// against.
func PinnedOrders() []TestOrder {
	return []TestOrder{
		{
			OrderNumber:    "VISUAL_TEST_001",
			CustomerName:   "Visual Test Customer",
			Item:           "Test Product",
			Quantity:       1,
			Price:          100,
			Status:         order.StatusPending,
			CreatedForTest: true,
		},
		{
			OrderNumber:    "VISUAL_TEST_002",
			CustomerName:   "Another Test Customer",
			Item:           "Another Test Product",
			Quantity:       2,
			Price:          200,
			Status:         order.StatusProcessing,
			CreatedForTest: true,
		},
	}
}
