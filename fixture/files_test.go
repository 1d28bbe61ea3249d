package fixture

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hairizuan-noorazman/visual-regression/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	files, err := NewFiles(dir, "visual_test")
	require.NoError(t, err)

	set := NewGenerator(7).Generate(4, 6)
	require.NoError(t, files.Save(set))

	assert.FileExists(t, filepath.Join(dir, "test_users.json"))
	assert.FileExists(t, filepath.Join(dir, "test_orders.json"))
	assert.FileExists(t, filepath.Join(dir, "test_session.json"))

	loaded, err := files.Load()
	require.NoError(t, err)
	assert.Equal(t, set.Users, loaded.Users)
	require.Len(t, loaded.Orders, len(set.Orders))
	assert.Equal(t, set.Orders[0].OrderNumber, loaded.Orders[0].OrderNumber)
}

func TestFiles_LoadEmptyDirectory(t *testing.T) {
	files, err := NewFiles(t.TempDir(), "visual_test")
	require.NoError(t, err)

	set, err := files.Load()
	require.NoError(t, err)
	assert.Empty(t, set.Users)
	assert.Empty(t, set.Orders)
}

func TestFiles_Export(t *testing.T) {
	files, err := NewFiles(t.TempDir(), "visual_test")
	require.NoError(t, err)

	set := Set{
		Users: KnownUsers(),
		Orders: []TestOrder{
			{OrderNumber: "A", Status: order.StatusPending},
			{OrderNumber: "B", Status: order.StatusPending},
			{OrderNumber: "C", Status: order.StatusCancelled},
		},
	}
	path, err := files.Export(set, "")
	require.NoError(t, err)
	assert.Regexp(t, `test_data_export_\d{8}_\d{6}\.json$`, path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Statistics struct {
			UsersCount    int            `json:"users_count"`
			OrdersCount   int            `json:"orders_count"`
			OrderStatuses map[string]int `json:"order_statuses"`
		} `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, 3, doc.Statistics.UsersCount)
	assert.Equal(t, 3, doc.Statistics.OrdersCount)
	assert.Equal(t, 2, doc.Statistics.OrderStatuses["pending"])
	assert.Equal(t, 1, doc.Statistics.OrderStatuses["cancelled"])
}

func TestFiles_ExportEmptySet(t *testing.T) {
	files, err := NewFiles(t.TempDir(), "visual_test")
	require.NoError(t, err)

	_, err = files.Export(Set{}, "")
	assert.ErrorIs(t, err, ErrNoFixtures)
}
