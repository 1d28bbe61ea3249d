package baseline

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/hairizuan-noorazman/visual-regression/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushAndPull(t *testing.T) {
	ctx := context.Background()
	blob, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	src := newTestStore(t)
	writeBaseline(t, src, "login", "desktop", []byte("shared-login"))
	writeBaseline(t, src, "orders", "mobile", []byte("shared-orders"))
	require.NoError(t, src.SaveMetadata(Metadata{ServerURL: "http://localhost:8000"}))

	pushed, err := src.Push(ctx, blob)
	require.NoError(t, err)
	// Two images plus the metadata file.
	assert.Equal(t, 3, pushed)

	rc, err := blob.Download(ctx, "baselines/expected_login_desktop.png")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, []byte("shared-login"), got)

	// A second machine pulls the shared set.
	dst := newTestStore(t)
	pulled, err := dst.Pull(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, 3, pulled)

	got, err = os.ReadFile(dst.PathFor("orders", "mobile"))
	require.NoError(t, err)
	assert.Equal(t, []byte("shared-orders"), got)
	meta := dst.LoadMetadata()
	require.NotNil(t, meta)
	assert.Equal(t, "http://localhost:8000", meta.ServerURL)
}

func TestPull_BacksUpExistingSet(t *testing.T) {
	ctx := context.Background()
	blob, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	src := newTestStore(t)
	writeBaseline(t, src, "login", "desktop", []byte("remote"))
	_, err = src.Push(ctx, blob)
	require.NoError(t, err)

	dst := newTestStore(t)
	writeBaseline(t, dst, "login", "desktop", []byte("local-only"))

	_, err = dst.Pull(ctx, blob)
	require.NoError(t, err)

	versions, err := dst.ListVersions()
	require.NoError(t, err)
	require.Len(t, versions, 1)

	// The pre-pull set survives in the backup.
	require.NoError(t, dst.Restore(versions[0]))
	got, err := os.ReadFile(dst.PathFor("login", "desktop"))
	require.NoError(t, err)
	assert.Equal(t, []byte("local-only"), got)
}

func TestPush_EmptySet(t *testing.T) {
	blob, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	s := newTestStore(t)
	_, err = s.Push(context.Background(), blob)
	assert.ErrorIs(t, err, ErrNoBaselines)
}

func TestPull_EmptyRemote(t *testing.T) {
	blob, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	s := newTestStore(t)
	_, err = s.Pull(context.Background(), blob)
	assert.ErrorIs(t, err, ErrNoBaselines)
}
