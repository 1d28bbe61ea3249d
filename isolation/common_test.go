package isolation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hairizuan-noorazman/visual-regression/logger"
	"github.com/stretchr/testify/require"
)

// deadPID is far above any pid the kernel hands out in tests.
const deadPID = 1 << 30

func newTestFileLocker(t *testing.T, dir, sessionID string) *FileLocker {
	t.Helper()
	fl, err := NewFileLocker(dir, sessionID, logger.NewTestLogger())
	require.NoError(t, err)
	return fl
}

func writeLockFile(t *testing.T, dir string, rec LockRecord) string {
	t.Helper()
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	path := filepath.Join(dir, rec.Resource+".lock")
	require.NoError(t, os.WriteFile(path, raw, 0644))
	return path
}

func writeSessionFile(t *testing.T, root string, rec Record) string {
	t.Helper()
	dir := filepath.Join(root, "sessions")
	require.NoError(t, os.MkdirAll(dir, 0755))
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	path := filepath.Join(dir, "session_"+rec.SessionID+".json")
	require.NoError(t, os.WriteFile(path, raw, 0644))
	return path
}

func shortTimeout() time.Duration { return 250 * time.Millisecond }
