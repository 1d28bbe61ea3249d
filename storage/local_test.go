package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadDownload(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	data := []byte("png bytes")
	require.NoError(t, s.Upload(ctx, "baselines/expected_login_desktop.png", bytes.NewReader(data)))

	rc, err := s.Download(ctx, "baselines/expected_login_desktop.png")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocalStorage_DownloadMissing(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Download(context.Background(), "baselines/expected_missing.png")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorage_ExistsAndDelete(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "reports/latest.json", bytes.NewReader([]byte("{}"))))

	exists, err := s.Exists(ctx, "reports/latest.json")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.Delete(ctx, "reports/latest.json"))
	exists, err = s.Exists(ctx, "reports/latest.json")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, s.Delete(ctx, "reports/latest.json"), ErrFileNotFound)
}

func TestLocalStorage_List(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, p := range []string{
		"baselines/expected_login_desktop.png",
		"baselines/expected_orders_mobile.png",
		"reports/latest.json",
	} {
		require.NoError(t, s.Upload(ctx, p, bytes.NewReader([]byte("x"))))
	}

	got, err := s.List(ctx, "baselines")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"baselines/expected_login_desktop.png",
		"baselines/expected_orders_mobile.png",
	}, got)

	empty, err := s.List(ctx, "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	err = s.Upload(ctx, "../outside.png", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = s.Download(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
