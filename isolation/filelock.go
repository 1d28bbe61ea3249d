package isolation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hairizuan-noorazman/visual-regression/logger"
)

const lockRetryInterval = 100 * time.Millisecond

// FileLocker implements Locker with atomically created lock files, so locks
// hold across processes sharing the same directory. Stale locks left behind
// by dead or hung holders are reclaimed on the next acquire attempt.
type FileLocker struct {
	dir        string
	sessionID  string
	staleAfter time.Duration
	logger     logger.Logger

	mu   sync.Mutex
	held map[string]struct{}
}

// NewFileLocker creates the lock directory if needed. All locks taken through
// the returned locker are attributed to sessionID.
func NewFileLocker(dir, sessionID string, log logger.Logger) (*FileLocker, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create lock directory: %w", err)
	}
	return &FileLocker{
		dir:        dir,
		sessionID:  sessionID,
		staleAfter: DefaultLockTimeout,
		logger:     log,
		held:       map[string]struct{}{},
	}, nil
}

func (l *FileLocker) path(resource string) string {
	// Resource names may carry path separators (e.g. "db:orders"); keep
	// the file name flat.
	name := strings.NewReplacer("/", "_", string(filepath.Separator), "_").Replace(resource)
	return filepath.Join(l.dir, name+".lock")
}

// Acquire takes the resource by creating its lock file exclusively. On
// contention it retries every 100ms, reclaiming stale locks immediately,
// until the timeout or context expires.
func (l *FileLocker) Acquire(ctx context.Context, resource, holder string, timeout time.Duration) error {
	path := l.path(resource)
	deadline := time.Now().Add(timeout)
	for {
		ok, err := l.tryAcquire(path, resource, holder)
		if err != nil {
			return err
		}
		if ok {
			l.mu.Lock()
			l.held[resource] = struct{}{}
			l.mu.Unlock()
			l.logger.Debug(ctx, "lock acquired", logger.Fields{
				"resource": resource,
				"holder":   holder,
			})
			return nil
		}
		if stale, rec := l.isStale(path); stale {
			l.logger.Warn(ctx, "reclaiming stale lock", logger.Fields{
				"resource": resource,
				"pid":      rec.PID,
				"holder":   rec.HolderID,
			})
			l.reclaim(path, rec)
			continue
		}
		if time.Now().After(deadline) {
			rec, _ := readLockRecord(path)
			l.logger.Warn(ctx, "lock acquisition timed out", logger.Fields{
				"resource":   resource,
				"holder":     holder,
				"held_by":    rec.HolderID,
				"held_since": rec.AcquiredAt,
			})
			return fmt.Errorf("%w: %s", ErrResourceUnavailable, resource)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (l *FileLocker) tryAcquire(path, resource, holder string) (bool, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("unable to create lock file: %w", err)
	}
	defer f.Close()
	rec := LockRecord{
		Resource:   resource,
		HolderID:   holder,
		SessionID:  l.sessionID,
		AcquiredAt: time.Now(),
		PID:        os.Getpid(),
	}
	if err := json.NewEncoder(f).Encode(rec); err != nil {
		os.Remove(path)
		return false, fmt.Errorf("unable to write lock record: %w", err)
	}
	return true, nil
}

// reclaim removes the lock only while it still carries the record it was
// judged stale by. A contender that reclaimed and re-created the lock in the
// meantime keeps it. A window remains between the re-read and the remove;
// closing it needs OS-level file locking, which lock files cannot give.
func (l *FileLocker) reclaim(path string, stale LockRecord) {
	cur, err := readLockRecord(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		// Unreadable records count as stale.
		os.Remove(path)
		return
	}
	if cur.SessionID == stale.SessionID && cur.PID == stale.PID && cur.AcquiredAt.Equal(stale.AcquiredAt) {
		os.Remove(path)
	}
}

// isStale reports whether the lock at path belongs to a dead process or has
// outlived the stale threshold. An unreadable record is treated as stale.
func (l *FileLocker) isStale(path string) (bool, LockRecord) {
	rec, err := readLockRecord(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, rec
		}
		return true, rec
	}
	if !processAlive(rec.PID) {
		return true, rec
	}
	if time.Since(rec.AcquiredAt) > l.staleAfter {
		return true, rec
	}
	return false, rec
}

// Release removes the lock file if this session owns it. A lock held by
// another session is left untouched.
func (l *FileLocker) Release(resource string) error {
	path := l.path(resource)
	l.mu.Lock()
	delete(l.held, resource)
	l.mu.Unlock()
	rec, err := readLockRecord(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("unable to read lock record: %w", err)
	}
	if rec.SessionID != l.sessionID {
		l.logger.Warn(context.Background(), "refusing to release lock held by another session", logger.Fields{
			"resource": resource,
			"owner":    rec.SessionID,
		})
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unable to remove lock file: %w", err)
	}
	return nil
}

// Held returns the resources this locker currently believes it owns.
func (l *FileLocker) Held() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.held))
	for r := range l.held {
		out = append(out, r)
	}
	return out
}

func readLockRecord(path string) (LockRecord, error) {
	var rec LockRecord
	raw, err := os.ReadFile(path)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("unable to parse lock record: %w", err)
	}
	return rec, nil
}
