package isolation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/hairizuan-noorazman/visual-regression/internal/uuidutil"
	"github.com/hairizuan-noorazman/visual-regression/logger"
)

// Status tracks where a session is in its lifecycle.
type Status string

const (
	StatusActive    Status = "active"
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusStale     Status = "stale"
)

// Record is the session metadata persisted at sessions/session_<id>.json so
// other processes can observe and reap sessions.
type Record struct {
	SessionID   string     `json:"session_id"`
	Environment string     `json:"environment"`
	PID         int        `json:"pid"`
	Status      Status     `json:"status"`
	CurrentTest string     `json:"current_test,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	TestsRun    int        `json:"tests_run"`
}

// TestContext carries the per-test scratch state handed to a test function
// running inside Session.Run.
type TestContext struct {
	TestName  string
	SessionID string
	TempDir   string
	Resources []string
}

type cleanupEntry struct {
	name string
	fn   func(context.Context) error
}

// Session scopes a batch of tests: it owns a locker, a temp directory tree
// and a registry of cleanup actions, and guarantees everything is torn down
// exactly once however the run ends.
type Session struct {
	id          string
	root        string
	lockTimeout time.Duration
	locker      Locker
	logger      logger.Logger

	mu       sync.Mutex
	record   Record
	cleanups []cleanupEntry
	tempDirs []string
	closed   bool

	closeOnce sync.Once
	closeErr  error
}

// SessionOption configures a Session at construction time.
type SessionOption func(*Session)

// WithLocker substitutes the locker, e.g. a MemoryLocker in tests.
func WithLocker(l Locker) SessionOption {
	return func(s *Session) { s.locker = l }
}

// WithLockTimeout bounds how long Run waits for each resource lock.
func WithLockTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.lockTimeout = d }
}

// NewSession creates the lock, session and temp directories under root and
// persists an active session record.
func NewSession(root, environment string, log logger.Logger, opts ...SessionOption) (*Session, error) {
	id := uuidutil.New().String()
	now := time.Now()
	s := &Session{
		id:          id,
		root:        root,
		lockTimeout: DefaultLockTimeout,
		logger:      log,
		record: Record{
			SessionID:   id,
			Environment: environment,
			PID:         os.Getpid(),
			Status:      StatusActive,
			StartedAt:   now,
			UpdatedAt:   now,
		},
	}
	for _, o := range opts {
		o(s)
	}
	for _, dir := range []string{s.lockDir(), s.sessionDir(), s.tempRoot()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("unable to create session directory: %w", err)
		}
	}
	if s.locker == nil {
		fl, err := NewFileLocker(s.lockDir(), id, log)
		if err != nil {
			return nil, err
		}
		s.locker = fl
	}
	if err := s.saveRecord(); err != nil {
		return nil, err
	}
	log.Info(context.Background(), "session started", logger.Fields{
		"session_id":  id,
		"environment": environment,
	})
	return s, nil
}

func (s *Session) ID() string          { return s.id }
func (s *Session) lockDir() string     { return filepath.Join(s.root, "locks") }
func (s *Session) sessionDir() string  { return filepath.Join(s.root, "sessions") }
func (s *Session) tempRoot() string    { return filepath.Join(s.root, "temp") }
func (s *Session) recordPath() string  { return filepath.Join(s.sessionDir(), "session_"+s.id+".json") }

// Record returns a copy of the current session metadata.
func (s *Session) Record() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

func (s *Session) saveRecord() error {
	s.record.UpdatedAt = time.Now()
	raw, err := json.MarshalIndent(s.record, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode session record: %w", err)
	}
	if err := os.WriteFile(s.recordPath(), raw, 0644); err != nil {
		return fmt.Errorf("unable to write session record: %w", err)
	}
	return nil
}

func (s *Session) setStatus(status Status, currentTest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.Status = status
	s.record.CurrentTest = currentTest
	return s.saveRecord()
}

// RegisterCleanup records an action to run, in reverse registration order,
// when the session closes.
func (s *Session) RegisterCleanup(name string, fn func(context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanups = append(s.cleanups, cleanupEntry{name: name, fn: fn})
}

// CleanupFiles returns a cleanup action that deletes the given paths,
// ignoring files already gone.
func CleanupFiles(paths ...string) func(context.Context) error {
	return func(context.Context) error {
		for _, p := range paths {
			if err := os.RemoveAll(p); err != nil {
				return err
			}
		}
		return nil
	}
}

// CleanupProcesses returns a cleanup action that terminates the given pids.
// Processes already gone are ignored.
func CleanupProcesses(pids ...int) func(context.Context) error {
	return func(context.Context) error {
		for _, pid := range pids {
			proc, err := os.FindProcess(pid)
			if err != nil {
				continue
			}
			if err := proc.Signal(syscall.SIGTERM); err != nil && !isProcessGone(err) {
				return err
			}
		}
		return nil
	}
}

func isProcessGone(err error) bool {
	return errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH)
}

// HandleSignals installs SIGINT/SIGTERM handlers that close the session
// before the process exits. Call once from the main goroutine.
func (s *Session) HandleSignals() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-ch
		s.logger.Warn(context.Background(), "signal received, closing session", logger.Fields{
			"session_id": s.id,
			"signal":     sig.String(),
		})
		s.Close()
		os.Exit(1)
	}()
}

// Run executes fn inside an isolation context: all requested resource locks
// are acquired up front (all or nothing), a per-test temp directory is
// created, and both are released again on every exit path, including panics.
func (s *Session) Run(ctx context.Context, testName string, resources []string, fn func(*TestContext) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.mu.Unlock()

	acquired := make([]string, 0, len(resources))
	for _, r := range resources {
		if err := s.locker.Acquire(ctx, r, testName, s.lockTimeout); err != nil {
			s.releaseAll(acquired)
			return fmt.Errorf("test %s: %w", testName, err)
		}
		acquired = append(acquired, r)
	}

	tempDir := filepath.Join(s.tempRoot(), testName+"_"+s.id)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		s.releaseAll(acquired)
		return fmt.Errorf("unable to create temp directory: %w", err)
	}
	s.mu.Lock()
	s.tempDirs = append(s.tempDirs, tempDir)
	s.record.TestsRun++
	s.mu.Unlock()
	if err := s.setStatus(StatusRunning, testName); err != nil {
		s.logger.Warn(ctx, "unable to persist session status", logger.Fields{"err": err.Error()})
	}

	defer func() {
		s.releaseAll(acquired)
		if err := os.RemoveAll(tempDir); err != nil {
			s.logger.Warn(ctx, "unable to remove temp directory", logger.Fields{
				"dir": tempDir,
				"err": err.Error(),
			})
		}
		s.mu.Lock()
		s.tempDirs = removeString(s.tempDirs, tempDir)
		s.mu.Unlock()
		if err := s.setStatus(StatusIdle, ""); err != nil {
			s.logger.Warn(ctx, "unable to persist session status", logger.Fields{"err": err.Error()})
		}
	}()

	return fn(&TestContext{
		TestName:  testName,
		SessionID: s.id,
		TempDir:   tempDir,
		Resources: resources,
	})
}

// releaseAll releases resources in the reverse of acquisition order.
func (s *Session) releaseAll(resources []string) {
	for i := len(resources) - 1; i >= 0; i-- {
		if err := s.locker.Release(resources[i]); err != nil {
			s.logger.Warn(context.Background(), "unable to release lock", logger.Fields{
				"resource": resources[i],
				"err":      err.Error(),
			})
		}
	}
}

func removeString(xs []string, x string) []string {
	out := xs[:0]
	for _, v := range xs {
		if v != x {
			out = append(out, v)
		}
	}
	return out
}

// Close runs all registered cleanup actions in reverse order, releases any
// locks still held, removes leftover temp directories and marks the session
// completed. It is safe to call multiple times; only the first call does the
// work.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		ctx := context.Background()
		s.mu.Lock()
		s.closed = true
		cleanups := make([]cleanupEntry, len(s.cleanups))
		copy(cleanups, s.cleanups)
		tempDirs := make([]string, len(s.tempDirs))
		copy(tempDirs, s.tempDirs)
		s.mu.Unlock()

		for i := len(cleanups) - 1; i >= 0; i-- {
			c := cleanups[i]
			if err := c.fn(ctx); err != nil {
				s.logger.Warn(ctx, "cleanup action failed", logger.Fields{
					"action": c.name,
					"err":    err.Error(),
				})
				if s.closeErr == nil {
					s.closeErr = fmt.Errorf("cleanup %s: %w", c.name, err)
				}
			}
		}
		if fl, ok := s.locker.(*FileLocker); ok {
			s.releaseAll(fl.Held())
		}
		for _, dir := range tempDirs {
			os.RemoveAll(dir)
		}

		s.mu.Lock()
		now := time.Now()
		s.record.Status = StatusCompleted
		s.record.CurrentTest = ""
		s.record.EndedAt = &now
		err := s.saveRecord()
		s.mu.Unlock()
		if err != nil && s.closeErr == nil {
			s.closeErr = err
		}
		s.logger.Info(ctx, "session closed", logger.Fields{
			"session_id": s.id,
			"tests_run":  s.Record().TestsRun,
		})
	})
	return s.closeErr
}
