// Package report persists visual test outcomes and renders them as HTML and
// JSON reports.
package report

import (
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned when a report session is not found.
	ErrSessionNotFound = errors.New("report session not found")

	// ErrInvalidResult is returned when a test result is missing required fields.
	ErrInvalidResult = errors.New("invalid test result")
)

// Status is the outcome of one visual test.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
	StatusError  Status = "error"
)

// TestResult is one page/device comparison outcome.
type TestResult struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	SessionID      string    `json:"session_id" gorm:"index;not null"`
	TestName       string    `json:"test_name" gorm:"not null"`
	PageName       string    `json:"page_name" gorm:"not null"`
	Device         string    `json:"device" gorm:"not null"`
	Status         Status    `json:"status" gorm:"not null"`
	Similarity     float64   `json:"similarity"`
	Threshold      float64   `json:"threshold"`
	Duration       float64   `json:"duration"`
	ScreenshotPath string    `json:"screenshot_path,omitempty"`
	BaselinePath   string    `json:"baseline_path,omitempty"`
	DiffPath       string    `json:"diff_path,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName overrides the GORM default so results land in test_results.
func (TestResult) TableName() string { return "test_results" }

// Validate checks if the result has valid required fields.
func (r *TestResult) Validate() error {
	if r.SessionID == "" || r.TestName == "" {
		return ErrInvalidResult
	}
	switch r.Status {
	case StatusPassed, StatusFailed, StatusError:
		return nil
	}
	return ErrInvalidResult
}

// Session is one reporting run, aggregating the results recorded under it.
type Session struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	Environment   string     `json:"environment" gorm:"not null"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	TotalTests    int        `json:"total_tests"`
	PassedTests   int        `json:"passed_tests"`
	FailedTests   int        `json:"failed_tests"`
	ErrorTests    int        `json:"error_tests"`
	TotalDuration float64    `json:"total_duration"`
	AvgSimilarity float64    `json:"avg_similarity"`
	Status        string     `json:"status" gorm:"default:running"`
	CreatedAt     time.Time  `json:"created_at"`
}

// TableName overrides the GORM default so sessions land in test_sessions.
func (Session) TableName() string { return "test_sessions" }
