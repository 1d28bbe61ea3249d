package isolation

import (
	"context"
	"errors"
	"os"
	"syscall"
	"time"
)

var (
	// ErrResourceUnavailable is returned when a lock cannot be acquired
	// within its timeout.
	ErrResourceUnavailable = errors.New("resource unavailable")

	// ErrSessionClosed is returned when an operation is attempted on a
	// session that has already been closed.
	ErrSessionClosed = errors.New("session already closed")
)

// DefaultLockTimeout bounds how long an acquire attempt may wait, and doubles
// as the age beyond which an unrefreshed lock is considered stale.
const DefaultLockTimeout = 300 * time.Second

// LockRecord is the JSON document stored at locks/<resource>.lock. Exactly
// one record may exist per resource at a time.
type LockRecord struct {
	Resource   string    `json:"resource"`
	HolderID   string    `json:"holder_id"`
	SessionID  string    `json:"session_id"`
	AcquiredAt time.Time `json:"acquired_at"`
	PID        int       `json:"pid"`
}

// Locker serializes access to named shared resources. The file-based
// implementation works across processes; the in-memory one substitutes for it
// in single-process tests.
type Locker interface {
	// Acquire attempts to take exclusive ownership of the resource,
	// retrying with a short backoff until the timeout elapses. It never
	// blocks past the timeout or a cancelled context.
	Acquire(ctx context.Context, resource, holder string, timeout time.Duration) error

	// Release gives up ownership of the resource. Releasing a resource
	// owned by another session is a logged no-op, never an error.
	Release(resource string) error
}

// processAlive reports whether a process with the given pid exists. A
// permission error means the process exists but belongs to another user.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
		return false
	}
	return true
}
