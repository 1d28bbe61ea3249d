package suite

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hairizuan-noorazman/visual-regression/baseline"
	"github.com/hairizuan-noorazman/visual-regression/isolation"
	"github.com/hairizuan-noorazman/visual-regression/logger"
	"github.com/hairizuan-noorazman/visual-regression/report"
)

// DefaultWorkers is the number of suites run concurrently.
const DefaultWorkers = 2

// Runner executes suites inside isolation scopes and records their results.
type Runner struct {
	registry *Registry
	session  *isolation.Session
	reporter *report.Reporter
	env      *Env
	workers  int
	logger   logger.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets how many suites run concurrently.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// NewRunner creates a runner over the given registry and environment.
func NewRunner(registry *Registry, session *isolation.Session, reporter *report.Reporter, env *Env, log logger.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: registry,
		session:  session,
		reporter: reporter,
		env:      env,
		workers:  DefaultWorkers,
		logger:   log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the named suites (all registered suites when names is empty)
// and returns the closed report session. Individual suite failures are
// recorded as results, not returned as errors.
func (r *Runner) Run(ctx context.Context, names []string) (*report.Session, error) {
	suites, err := r.registry.Select(names)
	if err != nil {
		return nil, err
	}

	sessionID, err := r.reporter.StartSession(ctx)
	if err != nil {
		return nil, err
	}
	r.logger.Info(ctx, "starting suite run", logger.Fields{
		"session_id": sessionID,
		"suites":     len(suites),
		"workers":    r.workers,
	})

	jobs := make(chan Suite)
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for s := range jobs {
				if ctx.Err() != nil {
					return
				}
				r.runSuite(ctx, s, sessionID, workerID)
			}
		}(i)
	}
	for _, s := range suites {
		jobs <- s
	}
	close(jobs)
	wg.Wait()

	return r.reporter.EndSession(ctx, sessionID)
}

// runSuite executes one suite inside its own isolation scope. Failures are
// recorded against the session as error results.
func (r *Runner) runSuite(ctx context.Context, s Suite, sessionID string, workerID int) {
	runErr := r.session.Run(ctx, s.Name(), []string{"suite/" + s.Name()}, func(tc *isolation.TestContext) error {
		r.logger.Info(ctx, "running suite", logger.Fields{
			"suite":     s.Name(),
			"worker_id": workerID,
		})
		if err := s.Setup(ctx, r.env); err != nil {
			return fmt.Errorf("suite setup failed: %w", err)
		}
		results, err := s.Run(ctx, r.env)
		for i := range results {
			results[i].SessionID = sessionID
			if recErr := r.reporter.Record(ctx, &results[i]); recErr != nil {
				r.logger.Error(ctx, "failed to record result", logger.Fields{
					"suite": s.Name(),
					"error": recErr.Error(),
				})
			}
		}
		return err
	})
	if runErr == nil {
		return
	}

	r.logger.Error(ctx, "suite failed", logger.Fields{
		"suite": s.Name(),
		"error": runErr.Error(),
	})
	errResult := report.TestResult{
		SessionID:    sessionID,
		TestName:     s.Name(),
		PageName:     s.Name(),
		Device:       "all",
		Status:       report.StatusError,
		ErrorMessage: runErr.Error(),
	}
	if recErr := r.reporter.Record(ctx, &errResult); recErr != nil {
		r.logger.Error(ctx, "failed to record suite error", logger.Fields{
			"suite": s.Name(),
			"error": recErr.Error(),
		})
	}
}

// CreateBaselines regenerates expected images for the named suites. The
// existing baseline set is backed up first so the change can be undone.
func (r *Runner) CreateBaselines(ctx context.Context, names []string) error {
	suites, err := r.registry.Select(names)
	if err != nil {
		return err
	}

	backup, err := r.env.Baselines.Backup("")
	switch {
	case err == nil:
		r.logger.Info(ctx, "existing baselines backed up", logger.Fields{
			"version": backup,
		})
	case errors.Is(err, baseline.ErrNoBaselines):
		// first generation, nothing to preserve
	default:
		return fmt.Errorf("unable to back up baselines: %w", err)
	}

	for _, s := range suites {
		err := r.session.Run(ctx, s.Name()+"_baselines", []string{"suite/" + s.Name()}, func(tc *isolation.TestContext) error {
			if err := s.Setup(ctx, r.env); err != nil {
				return fmt.Errorf("suite setup failed: %w", err)
			}
			return s.CreateBaselines(ctx, r.env)
		})
		if err != nil {
			return fmt.Errorf("baseline generation failed for %s: %w", s.Name(), err)
		}
	}
	return nil
}
