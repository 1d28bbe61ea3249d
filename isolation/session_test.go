package isolation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hairizuan-noorazman/visual-regression/internal/uuidutil"
	"github.com/hairizuan-noorazman/visual-regression/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_AssignsUUIDIdentity(t *testing.T) {
	s, err := NewSession(t.TempDir(), "local", logger.NewTestLogger())
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, uuidutil.IsValid(s.ID()))
	assert.Equal(t, s.ID(), s.Record().SessionID)

	rec, err := readSessionRecord(s.recordPath())
	require.NoError(t, err)
	assert.Equal(t, s.ID(), rec.SessionID)
}

func TestSession_RunProvidesTempDirAndCleansUp(t *testing.T) {
	root := t.TempDir()
	s, err := NewSession(root, "local", logger.NewTestLogger())
	require.NoError(t, err)
	defer s.Close()

	var seenDir string
	err = s.Run(context.Background(), "test_login", []string{"db:users"}, func(tc *TestContext) error {
		seenDir = tc.TempDir
		assert.Equal(t, "test_login", tc.TestName)
		assert.Equal(t, s.ID(), tc.SessionID)
		assert.DirExists(t, tc.TempDir)
		return os.WriteFile(filepath.Join(tc.TempDir, "scratch.txt"), []byte("x"), 0644)
	})
	require.NoError(t, err)
	assert.NoDirExists(t, seenDir)

	// The lock is gone, so an unrelated session can take it straight away.
	other := newTestFileLocker(t, filepath.Join(root, "locks"), "other")
	assert.NoError(t, other.Acquire(context.Background(), "db:users", "test_other", shortTimeout()))
}

func TestSession_RunCleansUpOnError(t *testing.T) {
	root := t.TempDir()
	s, err := NewSession(root, "local", logger.NewTestLogger())
	require.NoError(t, err)
	defer s.Close()

	boom := errors.New("assertion failed")
	var seenDir string
	err = s.Run(context.Background(), "test_orders", []string{"db:orders"}, func(tc *TestContext) error {
		seenDir = tc.TempDir
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoDirExists(t, seenDir)

	other := newTestFileLocker(t, filepath.Join(root, "locks"), "other")
	assert.NoError(t, other.Acquire(context.Background(), "db:orders", "test_other", shortTimeout()))
}

func TestSession_RunCleansUpOnPanic(t *testing.T) {
	root := t.TempDir()
	s, err := NewSession(root, "local", logger.NewTestLogger())
	require.NoError(t, err)
	defer s.Close()

	var seenDir string
	func() {
		defer func() {
			require.NotNil(t, recover())
		}()
		s.Run(context.Background(), "test_panics", []string{"db:orders"}, func(tc *TestContext) error {
			seenDir = tc.TempDir
			panic("boom")
		})
	}()
	assert.NoDirExists(t, seenDir)

	other := newTestFileLocker(t, filepath.Join(root, "locks"), "other")
	assert.NoError(t, other.Acquire(context.Background(), "db:orders", "test_other", shortTimeout()))
}

func TestSession_RunAllOrNothingAcquisition(t *testing.T) {
	root := t.TempDir()
	s, err := NewSession(root, "local", logger.NewTestLogger(),
		WithLockTimeout(shortTimeout()))
	require.NoError(t, err)
	defer s.Close()

	// Another session already holds the second resource.
	holder := newTestFileLocker(t, filepath.Join(root, "locks"), "other")
	require.NoError(t, holder.Acquire(context.Background(), "db:orders", "test_other", shortTimeout()))

	called := false
	err = s.Run(context.Background(), "test_combo", []string{"db:users", "db:orders"}, func(tc *TestContext) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrResourceUnavailable)
	assert.False(t, called)

	// The first resource was released again, not leaked.
	probe := newTestFileLocker(t, filepath.Join(root, "locks"), "probe")
	assert.NoError(t, probe.Acquire(context.Background(), "db:users", "test_probe", shortTimeout()))
}

func TestSession_StatusTransitions(t *testing.T) {
	root := t.TempDir()
	s, err := NewSession(root, "local", logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, StatusActive, s.Record().Status)

	err = s.Run(context.Background(), "test_login", nil, func(tc *TestContext) error {
		rec, err := readSessionRecord(s.recordPath())
		require.NoError(t, err)
		assert.Equal(t, StatusRunning, rec.Status)
		assert.Equal(t, "test_login", rec.CurrentTest)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, s.Record().Status)
	assert.Equal(t, 1, s.Record().TestsRun)

	require.NoError(t, s.Close())
	rec := s.Record()
	assert.Equal(t, StatusCompleted, rec.Status)
	require.NotNil(t, rec.EndedAt)
}

func TestSession_CloseRunsCleanupsInReverseOrder(t *testing.T) {
	s, err := NewSession(t.TempDir(), "local", logger.NewTestLogger())
	require.NoError(t, err)

	var order []string
	s.RegisterCleanup("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	s.RegisterCleanup("second", func(context.Context) error {
		order = append(order, "second")
		return nil
	})

	require.NoError(t, s.Close())
	assert.Equal(t, []string{"second", "first"}, order)

	// Close is idempotent; cleanups run once.
	require.NoError(t, s.Close())
	assert.Len(t, order, 2)
}

func TestSession_CloseReportsFirstCleanupFailure(t *testing.T) {
	s, err := NewSession(t.TempDir(), "local", logger.NewTestLogger())
	require.NoError(t, err)

	ran := false
	s.RegisterCleanup("remove fixtures", func(context.Context) error {
		ran = true
		return nil
	})
	s.RegisterCleanup("stop server", func(context.Context) error {
		return errors.New("no such process")
	})

	err = s.Close()
	assert.ErrorContains(t, err, "stop server")
	// A failing action never blocks the rest.
	assert.True(t, ran)
}

func TestSession_RunAfterCloseFails(t *testing.T) {
	s, err := NewSession(t.TempDir(), "local", logger.NewTestLogger())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = s.Run(context.Background(), "test_late", nil, func(*TestContext) error { return nil })
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestCleanupFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leftover.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	fn := CleanupFiles(path, filepath.Join(dir, "already-gone.png"))
	require.NoError(t, fn(context.Background()))
	assert.NoFileExists(t, path)
}

func TestSession_MemoryLockerOption(t *testing.T) {
	ml := NewMemoryLocker()
	s, err := NewSession(t.TempDir(), "local", logger.NewTestLogger(),
		WithLocker(ml), WithLockTimeout(shortTimeout()))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, ml.Acquire(context.Background(), "db:orders", "outside", shortTimeout()))
	start := time.Now()
	err = s.Run(context.Background(), "test_blocked", []string{"db:orders"}, func(*TestContext) error { return nil })
	assert.ErrorIs(t, err, ErrResourceUnavailable)
	assert.Less(t, time.Since(start), 5*time.Second)
}
