package report

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/hairizuan-noorazman/visual-regression/logger"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionListResponse is the paginated session listing payload.
type SessionListResponse struct {
	Items  []*Session `json:"items"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// Server serves stored sessions as browsable HTML reports and a JSON API.
type Server struct {
	reporter *Reporter
	store    Store
	logger   logger.Logger
}

// NewServer creates a report server backed by the given reporter.
func NewServer(reporter *Reporter, store Store, log logger.Logger) *Server {
	return &Server{
		reporter: reporter,
		store:    store,
		logger:   log,
	}
}

// Router builds the HTTP routes for the report server.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.Health).Methods("GET")
	router.HandleFunc("/api/v1/sessions", s.ListSessions).Methods("GET")
	router.HandleFunc("/api/v1/sessions/latest", s.LatestSession).Methods("GET")
	router.HandleFunc("/api/v1/sessions/{id}", s.GetSession).Methods("GET")
	router.HandleFunc("/api/v1/history", s.History).Methods("GET")
	router.HandleFunc("/sessions/{id}", s.SessionReport).Methods("GET")
	router.HandleFunc("/", s.LatestReport).Methods("GET")
	return router
}

// Health reports server liveness.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListSessions returns stored sessions newest first.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	sessions, err := s.store.ListSessions(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error(r.Context(), "failed to list sessions", logger.Fields{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	respondJSON(w, http.StatusOK, SessionListResponse{
		Items:  sessions,
		Limit:  limit,
		Offset: offset,
	})
}

// LatestSession returns the most recently started session.
func (s *Server) LatestSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.store.LatestSession(r.Context())
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "no sessions recorded")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get latest session")
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// GetSession returns the full report payload of one session.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	data, err := s.reporter.Build(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "session not found")
			return
		}
		s.logger.Error(r.Context(), "failed to build report", logger.Fields{
			"error":      err.Error(),
			"session_id": id,
		})
		respondError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	respondJSON(w, http.StatusOK, data)
}

// History returns completed sessions within the requested window for trend
// analysis. Defaults to the last 30 days.
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	days := parseIntQuery(r, "days", 30)
	cutoff := time.Now().AddDate(0, 0, -days)

	sessions, err := s.store.CompletedSince(r.Context(), cutoff)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get session history")
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}

// SessionReport renders one session as an HTML report.
func (s *Server) SessionReport(w http.ResponseWriter, r *http.Request) {
	s.renderReport(w, r, mux.Vars(r)["id"])
}

// LatestReport renders the most recent session as an HTML report.
func (s *Server) LatestReport(w http.ResponseWriter, r *http.Request) {
	session, err := s.store.LatestSession(r.Context())
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "no sessions recorded")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get latest session")
		return
	}
	s.renderReport(w, r, session.ID)
}

func (s *Server) renderReport(w http.ResponseWriter, r *http.Request, sessionID string) {
	data, err := s.reporter.Build(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "session not found")
			return
		}
		s.logger.Error(r.Context(), "failed to build report", logger.Fields{
			"error":      err.Error(),
			"session_id": sessionID,
		})
		respondError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := RenderHTML(w, data); err != nil {
		s.logger.Error(r.Context(), "failed to render report", logger.Fields{
			"error":      err.Error(),
			"session_id": sessionID,
		})
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

func parseIntQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
