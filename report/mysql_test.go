package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLStore_CreateSession(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	t.Run("create session with defaults", func(t *testing.T) {
		session := &Session{ID: "session_a", Environment: "visual_test"}
		err := store.CreateSession(ctx, session)
		require.NoError(t, err)

		got, err := store.GetSession(ctx, "session_a")
		require.NoError(t, err)
		assert.Equal(t, "running", got.Status)
		assert.False(t, got.StartedAt.IsZero())
	})

	t.Run("get missing session", func(t *testing.T) {
		_, err := store.GetSession(ctx, "no_such_session")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestMySQLStore_ListSessions(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"session_old", "session_mid", "session_new"} {
		err := store.CreateSession(ctx, &Session{
			ID:          id,
			Environment: "visual_test",
			StartedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	t.Run("newest first", func(t *testing.T) {
		sessions, err := store.ListSessions(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, sessions, 3)
		assert.Equal(t, "session_new", sessions[0].ID)
		assert.Equal(t, "session_old", sessions[2].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		sessions, err := store.ListSessions(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "session_mid", sessions[0].ID)
	})

	t.Run("latest session", func(t *testing.T) {
		latest, err := store.LatestSession(ctx)
		require.NoError(t, err)
		assert.Equal(t, "session_new", latest.ID)
	})
}

func TestMySQLStore_EndSession(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	startTestSession(t, store, "session_end")
	results := []*TestResult{
		newTestResult("session_end", "login", "desktop", StatusPassed, 99.0),
		newTestResult("session_end", "login", "mobile", StatusFailed, 80.0),
		newTestResult("session_end", "orders", "desktop", StatusError, 0),
	}
	for _, r := range results {
		require.NoError(t, store.RecordResult(ctx, r))
	}

	session, err := store.EndSession(ctx, "session_end")
	require.NoError(t, err)

	assert.Equal(t, 3, session.TotalTests)
	assert.Equal(t, 1, session.PassedTests)
	assert.Equal(t, 1, session.FailedTests)
	assert.Equal(t, 1, session.ErrorTests)
	assert.Equal(t, "completed", session.Status)
	require.NotNil(t, session.EndedAt)
	assert.InDelta(t, (99.0+80.0)/3, session.AvgSimilarity, 0.001)
	assert.InDelta(t, 4.5, session.TotalDuration, 0.001)

	t.Run("end missing session", func(t *testing.T) {
		_, err := store.EndSession(ctx, "no_such_session")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestMySQLStore_CompletedSince(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	startTestSession(t, store, "session_done")
	_, err := store.EndSession(ctx, "session_done")
	require.NoError(t, err)

	startTestSession(t, store, "session_running")

	err = store.CreateSession(ctx, &Session{
		ID:          "session_ancient",
		Environment: "visual_test",
		StartedAt:   time.Now().AddDate(0, 0, -60),
		Status:      "completed",
	})
	require.NoError(t, err)

	sessions, err := store.CompletedSince(ctx, time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "session_done", sessions[0].ID)
}

func TestMySQLStore_RecordResult(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	startTestSession(t, store, "session_results")

	t.Run("record valid result", func(t *testing.T) {
		r := newTestResult("session_results", "login", "desktop", StatusPassed, 98.5)
		r.Timestamp = time.Time{}
		err := store.RecordResult(ctx, r)
		require.NoError(t, err)
		assert.False(t, r.Timestamp.IsZero())
	})

	t.Run("reject invalid result", func(t *testing.T) {
		err := store.RecordResult(ctx, &TestResult{SessionID: "session_results"})
		assert.ErrorIs(t, err, ErrInvalidResult)
	})

	t.Run("results in recording order", func(t *testing.T) {
		require.NoError(t, store.RecordResult(ctx, newTestResult("session_results", "orders", "tablet", StatusFailed, 82.0)))

		results, err := store.SessionResults(ctx, "session_results")
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "login", results[0].PageName)
		assert.Equal(t, "orders", results[1].PageName)
	})

	t.Run("empty session has no results", func(t *testing.T) {
		results, err := store.SessionResults(ctx, "no_such_session")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
