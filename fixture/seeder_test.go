package fixture

import (
	"context"
	"testing"

	"github.com/hairizuan-noorazman/visual-regression/logger"
	"github.com/hairizuan-noorazman/visual-regression/order"
	"github.com/hairizuan-noorazman/visual-regression/testutil"
	"github.com/hairizuan-noorazman/visual-regression/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSeeder(t *testing.T) (*Seeder, user.Store, order.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t, &user.User{}, &order.Order{})

	log := logger.NewTestLogger()
	users := user.NewMySQLStore(db, log)
	orders := order.NewMySQLStore(db, log)
	return NewSeeder(users, orders, log), users, orders
}

func TestSeeder_SeedAndExists(t *testing.T) {
	seeder, users, orders := setupSeeder(t)
	ctx := context.Background()

	exists, err := seeder.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	set := Set{Users: KnownUsers(), Orders: PinnedOrders()}
	require.NoError(t, seeder.Seed(ctx, set, false))

	exists, err = seeder.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	// Seeded accounts authenticate with the fixture passwords.
	u, err := users.GetByLoginID(ctx, "visual_test_user")
	require.NoError(t, err)
	assert.True(t, u.CheckPassword("visual_test_pass"))
	assert.True(t, u.CreatedForTest)

	o, err := orders.GetByOrderNumber(ctx, "VISUAL_TEST_001")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, 100, o.Price)
}

func TestSeeder_SeedIsIdempotent(t *testing.T) {
	seeder, users, orders := setupSeeder(t)
	ctx := context.Background()

	set := Set{Users: KnownUsers(), Orders: PinnedOrders()}
	require.NoError(t, seeder.Seed(ctx, set, false))
	require.NoError(t, seeder.Seed(ctx, set, false))
	require.NoError(t, seeder.Seed(ctx, set, false))

	all, err := users.List(ctx, 100, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	testOrders, err := orders.ListTestOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, testOrders, 2)
}

func TestSeeder_ForceReseeds(t *testing.T) {
	seeder, _, orders := setupSeeder(t)
	ctx := context.Background()

	set := Set{Users: KnownUsers(), Orders: PinnedOrders()}
	require.NoError(t, seeder.Seed(ctx, set, false))

	// Drift the seeded data, then force a reseed.
	require.NoError(t, orders.Update(ctx, "VISUAL_TEST_001", order.SetStatus(order.StatusCancelled)))
	require.NoError(t, seeder.Seed(ctx, set, true))

	o, err := orders.GetByOrderNumber(ctx, "VISUAL_TEST_001")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
}

func TestSeeder_CleanupLeavesForeignRows(t *testing.T) {
	seeder, users, orders := setupSeeder(t)
	ctx := context.Background()

	// A row the harness did not create.
	real := &user.User{LoginID: "real_customer"}
	require.NoError(t, real.SetPassword("password123"))
	require.NoError(t, users.Create(ctx, real))

	set := Set{Users: KnownUsers(), Orders: PinnedOrders()}
	require.NoError(t, seeder.Seed(ctx, set, false))
	require.NoError(t, seeder.Cleanup(ctx, set))

	exists, err := seeder.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = users.GetByLoginID(ctx, "real_customer")
	assert.NoError(t, err)

	testOrders, err := orders.ListTestOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, testOrders)
}

func TestSeeder_ApplyScenario(t *testing.T) {
	seeder, users, orders := setupSeeder(t)
	ctx := context.Background()
	gen := NewGenerator(1)

	// Pre-existing fixture data gets swept before the scenario lands.
	require.NoError(t, seeder.Seed(ctx, Set{Users: KnownUsers(), Orders: PinnedOrders()}, false))

	set, err := seeder.ApplyScenario(ctx, gen, "single_user")
	require.NoError(t, err)
	require.Len(t, set.Users, 1)

	_, err = users.GetByLoginID(ctx, "single_user")
	assert.NoError(t, err)
	_, err = users.GetByLoginID(ctx, "visual_test_user")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	testOrders, err := orders.ListTestOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, testOrders)
}

func TestSeeder_ApplyScenario_EmptyDatabase(t *testing.T) {
	seeder, users, _ := setupSeeder(t)
	ctx := context.Background()

	require.NoError(t, seeder.Seed(ctx, Set{Users: KnownUsers()}, false))

	_, err := seeder.ApplyScenario(ctx, NewGenerator(1), "empty_database")
	require.NoError(t, err)

	testUsers, err := users.ListTestUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, testUsers)
}

func TestSeeder_ApplyScenario_Unknown(t *testing.T) {
	seeder, _, _ := setupSeeder(t)
	_, err := seeder.ApplyScenario(context.Background(), NewGenerator(1), "nope")
	assert.ErrorIs(t, err, ErrUnknownScenario)
}
