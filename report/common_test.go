package report

import (
	"context"
	"testing"
	"time"

	"github.com/hairizuan-noorazman/visual-regression/logger"
	"github.com/hairizuan-noorazman/visual-regression/testutil"
	"gorm.io/gorm"
)

// setupTestStore creates a test database and report store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, Store) {
	db := testutil.SetupTestDB(t, &Session{}, &TestResult{})

	log := logger.NewTestLogger()
	store := NewMySQLStore(db, log)

	return db, store
}

// setupTestReporter creates a reporter backed by an in-memory store.
func setupTestReporter(t *testing.T) (*Reporter, Store) {
	_, store := setupTestStore(t)

	rep, err := NewReporter(store, t.TempDir(), "visual_test", logger.NewTestLogger())
	if err != nil {
		t.Fatalf("failed to create reporter: %v", err)
	}
	return rep, store
}

// newTestResult creates a result with default values.
func newTestResult(sessionID, page, device string, status Status, similarity float64) *TestResult {
	return &TestResult{
		SessionID:  sessionID,
		TestName:   page + "_" + device,
		PageName:   page,
		Device:     device,
		Status:     status,
		Similarity: similarity,
		Threshold:  95.0,
		Duration:   1.5,
		Timestamp:  time.Now(),
	}
}

// startTestSession creates and stores a running session.
func startTestSession(t *testing.T, store Store, id string) *Session {
	session := &Session{
		ID:          id,
		Environment: "visual_test",
		StartedAt:   time.Now(),
	}
	if err := store.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return session
}
