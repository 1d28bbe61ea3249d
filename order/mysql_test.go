package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLStore_Create(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	t.Run("successfully create order", func(t *testing.T) {
		o := createTestOrder("VISUAL_TEST_001", StatusPending)
		err := store.Create(ctx, o)
		require.NoError(t, err)
		assert.NotZero(t, o.ID)
		assert.NotZero(t, o.CreatedAt)
	})

	t.Run("duplicate order number returns error", func(t *testing.T) {
		o1 := createTestOrder("DUP_ORDER", StatusPending)
		require.NoError(t, store.Create(ctx, o1))

		o2 := createTestOrder("DUP_ORDER", StatusShipped)
		err := store.Create(ctx, o2)
		assert.ErrorIs(t, err, ErrDuplicateOrderNumber)
	})

	t.Run("invalid order returns error", func(t *testing.T) {
		o := createTestOrder("BAD_QTY", StatusPending)
		o.Quantity = 0
		err := store.Create(ctx, o)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestMySQLStore_GetByOrderNumber(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	t.Run("retrieve existing order", func(t *testing.T) {
		o := createTestOrder("VISUAL_TEST_002", StatusProcessing)
		o.Item = "Another Test Product"
		o.Quantity = 2
		o.Price = 200
		require.NoError(t, store.Create(ctx, o))

		retrieved, err := store.GetByOrderNumber(ctx, "VISUAL_TEST_002")
		require.NoError(t, err)
		assert.Equal(t, "Another Test Product", retrieved.Item)
		assert.Equal(t, 2, retrieved.Quantity)
		assert.Equal(t, StatusProcessing, retrieved.Status)
	})

	t.Run("non-existent order returns error", func(t *testing.T) {
		_, err := store.GetByOrderNumber(ctx, "NO_SUCH_ORDER")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestMySQLStore_Update(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	t.Run("transition status and adjust quantity", func(t *testing.T) {
		o := createTestOrder("UPD_ORDER", StatusPending)
		require.NoError(t, store.Create(ctx, o))

		err := store.Update(ctx, "UPD_ORDER",
			SetStatus(StatusShipped),
			SetQuantity(3),
			SetPrice(300),
		)
		require.NoError(t, err)

		updated, err := store.GetByOrderNumber(ctx, "UPD_ORDER")
		require.NoError(t, err)
		assert.Equal(t, StatusShipped, updated.Status)
		assert.Equal(t, 3, updated.Quantity)
		assert.Equal(t, 300, updated.Price)
	})

	t.Run("invalid status aborts update", func(t *testing.T) {
		o := createTestOrder("UPD_BAD", StatusPending)
		require.NoError(t, store.Create(ctx, o))

		err := store.Update(ctx, "UPD_BAD", SetStatus("refunded"))
		assert.ErrorIs(t, err, ErrInvalidStatus)

		unchanged, err := store.GetByOrderNumber(ctx, "UPD_BAD")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, unchanged.Status)
	})

	t.Run("non-existent order returns error", func(t *testing.T) {
		err := store.Update(ctx, "NO_SUCH_ORDER", SetStatus(StatusDelivered))
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestMySQLStore_DeleteByOrderNumbers(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, createTestOrder("DEL_A", StatusPending)))
	require.NoError(t, store.Create(ctx, createTestOrder("DEL_B", StatusShipped)))
	require.NoError(t, store.Create(ctx, createTestOrder("KEEP", StatusDelivered)))

	deleted, err := store.DeleteByOrderNumbers(ctx, []string{"DEL_A", "DEL_B", "NEVER_EXISTED"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	_, err = store.GetByOrderNumber(ctx, "DEL_A")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = store.GetByOrderNumber(ctx, "KEEP")
	assert.NoError(t, err)
}

func TestMySQLStore_ListTestOrders(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	real := &Order{OrderNumber: "CUSTOMER_ORDER", Item: "Laptop Computer", Quantity: 1, Price: 1500, Status: StatusPending}
	require.NoError(t, store.Create(ctx, real))
	require.NoError(t, store.Create(ctx, createTestOrder("VISUAL_TEST_001", StatusPending)))
	require.NoError(t, store.Create(ctx, createTestOrder("VISUAL_TEST_002", StatusProcessing)))

	testOrders, err := store.ListTestOrders(ctx)
	require.NoError(t, err)
	require.Len(t, testOrders, 2)
	for _, o := range testOrders {
		assert.True(t, o.CreatedForTest)
	}
}

func TestMySQLStore_CountByStatus(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, createTestOrder("S1", StatusPending)))
	require.NoError(t, store.Create(ctx, createTestOrder("S2", StatusPending)))
	require.NoError(t, store.Create(ctx, createTestOrder("S3", StatusCancelled)))

	counts, err := store.CountByStatus(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[StatusPending])
	assert.EqualValues(t, 1, counts[StatusCancelled])
	assert.NotContains(t, counts, StatusShipped)
}

func TestMySQLStore_List(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	for _, n := range []string{"ORD_C", "ORD_A", "ORD_B"} {
		require.NoError(t, store.Create(ctx, createTestOrder(n, StatusPending)))
	}

	page, err := store.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "ORD_A", page[0].OrderNumber)
	assert.Equal(t, "ORD_B", page[1].OrderNumber)

	rest, err := store.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "ORD_C", rest[0].OrderNumber)
}
