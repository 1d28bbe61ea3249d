package report

import (
	"context"
	"time"
)

// Store defines the interface for report persistence operations.
type Store interface {
	// CreateSession records a new running session.
	CreateSession(ctx context.Context, session *Session) error

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, id string) (*Session, error)

	// LatestSession retrieves the most recently started session.
	LatestSession(ctx context.Context) (*Session, error)

	// ListSessions retrieves sessions newest first.
	ListSessions(ctx context.Context, limit, offset int) ([]*Session, error)

	// EndSession aggregates the session's results and marks it completed.
	EndSession(ctx context.Context, id string) (*Session, error)

	// CompletedSince retrieves completed sessions started after the cutoff,
	// newest first. Used for trend analysis across runs.
	CompletedSince(ctx context.Context, cutoff time.Time) ([]*Session, error)

	// RecordResult stores one test result.
	RecordResult(ctx context.Context, result *TestResult) error

	// SessionResults retrieves all results for a session in recording order.
	SessionResults(ctx context.Context, sessionID string) ([]*TestResult, error)
}
