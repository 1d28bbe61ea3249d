package report

import (
	"context"
	"errors"
	"time"

	"github.com/hairizuan-noorazman/visual-regression/logger"
	"gorm.io/gorm"
)

// MySQLStore implements the Store interface using GORM and MySQL.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new MySQL-backed report store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// CreateSession records a new running session.
func (s *MySQLStore) CreateSession(ctx context.Context, session *Session) error {
	if session.Status == "" {
		session.Status = "running"
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		s.logger.Error(ctx, "failed to create report session", logger.Fields{
			"error":      err.Error(),
			"session_id": session.ID,
		})
		return err
	}
	s.logger.Info(ctx, "report session started", logger.Fields{
		"session_id":  session.ID,
		"environment": session.Environment,
	})
	return nil
}

// GetSession retrieves a session by ID.
func (s *MySQLStore) GetSession(ctx context.Context, id string) (*Session, error) {
	var session Session
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// LatestSession retrieves the most recently started session.
func (s *MySQLStore) LatestSession(ctx context.Context) (*Session, error) {
	var session Session
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ListSessions retrieves sessions newest first.
func (s *MySQLStore) ListSessions(ctx context.Context, limit, offset int) ([]*Session, error) {
	var sessions []*Session
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sessions).Error
	if err != nil {
		s.logger.Error(ctx, "failed to list report sessions", logger.Fields{
			"error": err.Error(),
		})
		return nil, err
	}
	return sessions, nil
}

// EndSession aggregates the session's results and marks it completed.
func (s *MySQLStore) EndSession(ctx context.Context, id string) (*Session, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	results, err := s.SessionResults(ctx, id)
	if err != nil {
		return nil, err
	}

	session.TotalTests = len(results)
	session.PassedTests = 0
	session.FailedTests = 0
	session.ErrorTests = 0
	session.TotalDuration = 0
	similaritySum := 0.0
	for _, r := range results {
		switch r.Status {
		case StatusPassed:
			session.PassedTests++
		case StatusFailed:
			session.FailedTests++
		default:
			session.ErrorTests++
		}
		session.TotalDuration += r.Duration
		similaritySum += r.Similarity
	}
	if len(results) > 0 {
		session.AvgSimilarity = similaritySum / float64(len(results))
	}
	now := time.Now()
	session.EndedAt = &now
	session.Status = "completed"

	if err := s.db.WithContext(ctx).Save(session).Error; err != nil {
		s.logger.Error(ctx, "failed to end report session", logger.Fields{
			"error":      err.Error(),
			"session_id": id,
		})
		return nil, err
	}

	s.logger.Info(ctx, "report session ended", logger.Fields{
		"session_id": id,
		"total":      session.TotalTests,
		"passed":     session.PassedTests,
		"failed":     session.FailedTests,
	})
	return session, nil
}

// CompletedSince retrieves completed sessions started after the cutoff,
// newest first.
func (s *MySQLStore) CompletedSince(ctx context.Context, cutoff time.Time) ([]*Session, error) {
	var sessions []*Session
	err := s.db.WithContext(ctx).
		Where("started_at > ? AND status = ?", cutoff, "completed").
		Order("started_at DESC").
		Find(&sessions).Error
	if err != nil {
		s.logger.Error(ctx, "failed to get completed sessions", logger.Fields{
			"error": err.Error(),
		})
		return nil, err
	}
	return sessions, nil
}

// RecordResult stores one test result.
func (s *MySQLStore) RecordResult(ctx context.Context, result *TestResult) error {
	if err := result.Validate(); err != nil {
		return err
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(result).Error; err != nil {
		s.logger.Error(ctx, "failed to record test result", logger.Fields{
			"error":     err.Error(),
			"test_name": result.TestName,
		})
		return err
	}
	return nil
}

// SessionResults retrieves all results for a session in recording order.
func (s *MySQLStore) SessionResults(ctx context.Context, sessionID string) ([]*TestResult, error) {
	var results []*TestResult
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id").
		Find(&results).Error
	if err != nil {
		s.logger.Error(ctx, "failed to get session results", logger.Fields{
			"error":      err.Error(),
			"session_id": sessionID,
		})
		return nil, err
	}
	return results, nil
}
