package isolation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hairizuan-noorazman/visual-regression/logger"
)

// Scanner inspects the isolation directory from outside any session. The CLI
// uses it to list live sessions and to reap state left behind by crashed
// ones.
type Scanner struct {
	root       string
	staleAfter time.Duration
	logger     logger.Logger
}

func NewScanner(root string, log logger.Logger) *Scanner {
	return &Scanner{root: root, staleAfter: DefaultLockTimeout, logger: log}
}

// ActiveSessions returns all sessions not yet completed. Sessions whose owner
// process is gone are flagged stale in the returned records and on disk.
func (sc *Scanner) ActiveSessions(ctx context.Context) ([]Record, error) {
	entries, err := os.ReadDir(filepath.Join(sc.root, "sessions"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to read session directory: %w", err)
	}
	var out []Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(sc.root, "sessions", e.Name())
		rec, err := readSessionRecord(path)
		if err != nil {
			sc.logger.Warn(ctx, "skipping unreadable session record", logger.Fields{
				"file": e.Name(),
				"err":  err.Error(),
			})
			continue
		}
		if rec.Status == StatusCompleted {
			continue
		}
		if rec.Status != StatusStale && !processAlive(rec.PID) {
			rec.Status = StatusStale
			rec.UpdatedAt = time.Now()
			if raw, err := json.MarshalIndent(rec, "", "  "); err == nil {
				os.WriteFile(path, raw, 0644)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// CleanupStale removes completed and stale session records, stale lock files
// and temp directories belonging to dead sessions. It returns the number of
// artifacts removed.
func (sc *Scanner) CleanupStale(ctx context.Context) (int, error) {
	removed := 0
	deadSessions := map[string]bool{}

	sessionDir := filepath.Join(sc.root, "sessions")
	entries, err := os.ReadDir(sessionDir)
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("unable to read session directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(sessionDir, e.Name())
		rec, err := readSessionRecord(path)
		reap := err != nil || rec.Status == StatusCompleted || rec.Status == StatusStale || !processAlive(rec.PID)
		if !reap {
			continue
		}
		if rec.SessionID != "" {
			deadSessions[rec.SessionID] = true
		}
		if err := os.Remove(path); err == nil {
			removed++
			sc.logger.Info(ctx, "removed session record", logger.Fields{
				"session_id": rec.SessionID,
				"status":     string(rec.Status),
			})
		}
	}

	lockDir := filepath.Join(sc.root, "locks")
	locks, err := os.ReadDir(lockDir)
	if err != nil && !os.IsNotExist(err) {
		return removed, fmt.Errorf("unable to read lock directory: %w", err)
	}
	for _, e := range locks {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".lock") {
			continue
		}
		path := filepath.Join(lockDir, e.Name())
		rec, err := readLockRecord(path)
		reap := err != nil ||
			deadSessions[rec.SessionID] ||
			!processAlive(rec.PID) ||
			time.Since(rec.AcquiredAt) > sc.staleAfter
		if !reap {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
			sc.logger.Info(ctx, "removed stale lock", logger.Fields{
				"resource": rec.Resource,
				"pid":      rec.PID,
			})
		}
	}

	tempRoot := filepath.Join(sc.root, "temp")
	temps, err := os.ReadDir(tempRoot)
	if err != nil && !os.IsNotExist(err) {
		return removed, fmt.Errorf("unable to read temp directory: %w", err)
	}
	for _, e := range temps {
		if !e.IsDir() {
			continue
		}
		// Temp directories are named <test>_<session id>.
		name := e.Name()
		idx := strings.LastIndex(name, "_")
		if idx < 0 {
			continue
		}
		if !deadSessions[name[idx+1:]] {
			continue
		}
		if err := os.RemoveAll(filepath.Join(tempRoot, name)); err == nil {
			removed++
		}
	}
	return removed, nil
}

func readSessionRecord(path string) (Record, error) {
	var rec Record
	raw, err := os.ReadFile(path)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("unable to parse session record: %w", err)
	}
	return rec, nil
}
