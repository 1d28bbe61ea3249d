package fixture

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/hairizuan-noorazman/visual-regression/order"
)

var orderItems = []string{
	"Laptop Computer", "Wireless Mouse", "Keyboard",
	"Monitor", "USB Cable", "Headphones", "Smartphone",
	"Tablet", "Printer", "Scanner", "Webcam", "Speakers",
	"Hard Drive", "Memory Card", "Power Bank", "Charger",
}

var customerFirstNames = []string{
	"Alice", "Ben", "Chika", "Daniel", "Emi", "Frank",
	"Grace", "Hiroshi", "Ingrid", "Jun", "Kenji", "Laura",
	"Mei", "Noah", "Olivia", "Peter", "Rin", "Sofia", "Takeshi", "Yuki",
}

var customerLastNames = []string{
	"Tanaka", "Smith", "Suzuki", "Johnson", "Watanabe", "Brown",
	"Ito", "Davis", "Yamamoto", "Miller", "Nakamura", "Wilson",
	"Kobayashi", "Moore", "Kato", "Taylor", "Yoshida", "Anderson",
}

// Generator produces fixture data sets. The same seed yields the same set, so
// regenerating fixtures never changes what the baselines show.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// NewGenerator creates a generator seeded for reproducible output.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now(),
	}
}

// Users generates count test users, always starting with the known fixed
// accounts.
func (g *Generator) Users(count int) []TestUser {
	users := KnownUsers()
	for i := len(users); i < count; i++ {
		users = append(users, TestUser{
			LoginID:        fmt.Sprintf("test_user_%d_%d", i, g.now.Unix()),
			Password:       "testpass123",
			DisplayName:    g.personName(),
			CreatedForTest: true,
		})
	}
	return users
}

// Orders generates count random test orders followed by the pinned orders the
// screenshots depend on.
func (g *Generator) Orders(count int) []TestOrder {
	statuses := order.Statuses()
	orders := make([]TestOrder, 0, count+2)
	for i := 0; i < count; i++ {
		quantity := g.rng.Intn(10) + 1
		basePrice := g.rng.Intn(1951) + 50
		createdAt := g.now.AddDate(0, 0, -g.rng.Intn(31))
		orders = append(orders, TestOrder{
			OrderNumber:    fmt.Sprintf("ORD%s%04d", g.now.Format("20060102"), i),
			CustomerName:   g.personName(),
			Item:           orderItems[g.rng.Intn(len(orderItems))],
			Quantity:       quantity,
			Price:          basePrice * quantity,
			Status:         statuses[g.rng.Intn(len(statuses))],
			CreatedAt:      createdAt,
			UpdatedAt:      createdAt.Add(time.Duration(g.rng.Intn(48)+1) * time.Hour),
			CreatedForTest: true,
		})
	}
	return append(orders, PinnedOrders()...)
}

// Generate produces a full fixture set.
func (g *Generator) Generate(userCount, orderCount int) Set {
	return Set{
		Users:  g.Users(userCount),
		Orders: g.Orders(orderCount),
	}
}

func (g *Generator) personName() string {
	first := customerFirstNames[g.rng.Intn(len(customerFirstNames))]
	last := customerLastNames[g.rng.Intn(len(customerLastNames))]
	return first + " " + last
}
