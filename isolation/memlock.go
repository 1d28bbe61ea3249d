package isolation

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryLocker is an in-process Locker used in tests and single-process runs
// where lock files on disk are unnecessary.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]string
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: map[string]string{}}
}

func (l *MemoryLocker) Acquire(ctx context.Context, resource, holder string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		l.mu.Lock()
		if _, taken := l.locks[resource]; !taken {
			l.locks[resource] = holder
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", ErrResourceUnavailable, resource)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (l *MemoryLocker) Release(resource string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, resource)
	return nil
}
