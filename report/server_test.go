package report

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hairizuan-noorazman/visual-regression/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestServer creates a report server with one recorded session.
func setupTestServer(t *testing.T) (*Server, string) {
	rep, store := setupTestReporter(t)
	sessionID := recordSampleRun(t, rep)

	return NewServer(rep, store, logger.NewTestLogger()), sessionID
}

func TestServer_Health(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestServer_ListSessions(t *testing.T) {
	srv, sessionID := setupTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/sessions", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SessionListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, sessionID, resp.Items[0].ID)
	assert.Equal(t, 20, resp.Limit)
}

func TestServer_GetSession(t *testing.T) {
	srv, sessionID := setupTestServer(t)

	t.Run("existing session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/sessions/"+sessionID, nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var data Data
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
		assert.Equal(t, sessionID, data.Metadata.SessionID)
		assert.Len(t, data.Results, 3)
	})

	t.Run("missing session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/sessions/no_such_session", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServer_LatestSession(t *testing.T) {
	srv, sessionID := setupTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/sessions/latest", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var session Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, sessionID, session.ID)
}

func TestServer_History(t *testing.T) {
	srv, sessionID := setupTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/history?days=7", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var sessions []*Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, sessionID, sessions[0].ID)
}

func TestServer_HTMLReports(t *testing.T) {
	srv, sessionID := setupTestServer(t)

	t.Run("session report", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/sessions/"+sessionID, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), sessionID)
		assert.Contains(t, rec.Body.String(), "Visual Test Report")
	})

	t.Run("latest report at root", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), sessionID)
	})
}
