package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hairizuan-noorazman/visual-regression/internal/uuidutil"
	"github.com/hairizuan-noorazman/visual-regression/logger"
	"github.com/hairizuan-noorazman/visual-regression/storage"
)

// reportVersion is stamped into the metadata block of generated reports.
const reportVersion = "1.0"

// remoteReportPrefix is the key prefix under which report artifacts live in
// blob storage.
const remoteReportPrefix = "reports"

// Metadata describes when and where a report was produced.
type Metadata struct {
	SessionID     string    `json:"session_id"`
	GeneratedAt   time.Time `json:"generated_at"`
	Environment   string    `json:"test_env"`
	ReportVersion string    `json:"report_version"`
}

// Data is the full payload of one report, shared by the HTML and JSON
// renderers and the HTTP API.
type Data struct {
	Metadata    Metadata              `json:"report_metadata"`
	Session     *Session              `json:"session_data"`
	Results     []*TestResult         `json:"test_results"`
	Summary     SummaryStats          `json:"summary_stats"`
	DeviceStats map[string]GroupStats `json:"device_stats"`
	PageStats   map[string]GroupStats `json:"page_stats"`
	Failures    FailureAnalysis       `json:"failure_analysis"`
}

// CIFailure is one failed test in the CI metrics export.
type CIFailure struct {
	TestName     string  `json:"test_name"`
	PageName     string  `json:"page_name"`
	Device       string  `json:"device"`
	Similarity   float64 `json:"similarity"`
	ErrorMessage string  `json:"error_message"`
}

// CIMetrics is a flat, pipeline-friendly view of a session.
type CIMetrics struct {
	SessionID     string      `json:"session_id"`
	Timestamp     time.Time   `json:"timestamp"`
	Status        string      `json:"status"`
	TotalTests    int         `json:"total_tests"`
	PassedTests   int         `json:"passed_tests"`
	FailedTests   int         `json:"failed_tests"`
	ErrorTests    int         `json:"error_tests"`
	PassRate      float64     `json:"pass_rate"`
	AvgSimilarity float64     `json:"avg_similarity"`
	TotalDuration float64     `json:"total_duration"`
	Environment   string      `json:"test_env"`
	Failures      []CIFailure `json:"failures"`
}

// Reporter records test outcomes against a session and renders them into
// report files.
type Reporter struct {
	store      Store
	reportsDir string
	env        string
	logger     logger.Logger
}

// NewReporter creates a reporter writing report files under reportsDir.
func NewReporter(store Store, reportsDir, env string, log logger.Logger) (*Reporter, error) {
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create reports directory: %w", err)
	}
	return &Reporter{
		store:      store,
		reportsDir: reportsDir,
		env:        env,
		logger:     log,
	}, nil
}

// StartSession opens a new reporting session and returns its ID.
func (r *Reporter) StartSession(ctx context.Context) (string, error) {
	id := fmt.Sprintf("session_%s_%s", time.Now().Format("20060102_150405"), uuidutil.New().String()[:8])
	session := &Session{
		ID:          id,
		Environment: r.env,
		StartedAt:   time.Now(),
		Status:      "running",
	}
	if err := r.store.CreateSession(ctx, session); err != nil {
		return "", err
	}
	r.logger.Info(ctx, "test session started", logger.Fields{
		"session_id":  id,
		"environment": r.env,
	})
	return id, nil
}

// Record validates and stores one test result.
func (r *Reporter) Record(ctx context.Context, result *TestResult) error {
	if err := result.Validate(); err != nil {
		return err
	}
	if err := r.store.RecordResult(ctx, result); err != nil {
		return err
	}
	r.logger.Debug(ctx, "test result recorded", logger.Fields{
		"session_id": result.SessionID,
		"test_name":  result.TestName,
		"status":     string(result.Status),
		"similarity": result.Similarity,
	})
	return nil
}

// EndSession aggregates and closes the session.
func (r *Reporter) EndSession(ctx context.Context, sessionID string) (*Session, error) {
	session, err := r.store.EndSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	r.logger.Info(ctx, "test session ended", logger.Fields{
		"session_id":   session.ID,
		"total_tests":  session.TotalTests,
		"passed_tests": session.PassedTests,
		"failed_tests": session.FailedTests,
	})
	return session, nil
}

// Build collects a session's data into a renderable report payload.
func (r *Reporter) Build(ctx context.Context, sessionID string) (*Data, error) {
	session, err := r.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	results, err := r.store.SessionResults(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Data{
		Metadata: Metadata{
			SessionID:     sessionID,
			GeneratedAt:   time.Now(),
			Environment:   r.env,
			ReportVersion: reportVersion,
		},
		Session:     session,
		Results:     results,
		Summary:     Summarize(results),
		DeviceStats: ByDevice(results),
		PageStats:   ByPage(results),
		Failures:    AnalyzeFailures(results),
	}, nil
}

// GenerateHTML renders the session into an HTML report file and returns its
// path. An empty outputPath picks a timestamped name under the reports
// directory.
func (r *Reporter) GenerateHTML(ctx context.Context, sessionID, outputPath string) (string, error) {
	data, err := r.Build(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if outputPath == "" {
		outputPath = filepath.Join(r.reportsDir, fmt.Sprintf("visual_test_report_%s.html", time.Now().Format("20060102_150405")))
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("unable to create HTML report: %w", err)
	}
	defer f.Close()

	if err := RenderHTML(f, data); err != nil {
		return "", fmt.Errorf("unable to render HTML report: %w", err)
	}
	r.logger.Info(ctx, "HTML report generated", logger.Fields{
		"session_id": sessionID,
		"path":       outputPath,
	})
	return outputPath, nil
}

// GenerateJSON writes the session's report payload as indented JSON and
// returns the file path.
func (r *Reporter) GenerateJSON(ctx context.Context, sessionID, outputPath string) (string, error) {
	data, err := r.Build(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if outputPath == "" {
		outputPath = filepath.Join(r.reportsDir, fmt.Sprintf("visual_test_report_%s.json", time.Now().Format("20060102_150405")))
	}
	if err := writeJSONFile(outputPath, data); err != nil {
		return "", err
	}
	r.logger.Info(ctx, "JSON report generated", logger.Fields{
		"session_id": sessionID,
		"path":       outputPath,
	})
	return outputPath, nil
}

// ExportCIMetrics writes a flat metrics file for pipeline consumption. The
// session counts as passed only when nothing failed or errored.
func (r *Reporter) ExportCIMetrics(ctx context.Context, sessionID, outputPath string) (string, error) {
	data, err := r.Build(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if outputPath == "" {
		outputPath = filepath.Join(r.reportsDir, "ci_metrics.json")
	}

	status := "passed"
	if data.Summary.FailedTests > 0 || data.Summary.ErrorTests > 0 {
		status = "failed"
	}
	metrics := CIMetrics{
		SessionID:     sessionID,
		Timestamp:     time.Now(),
		Status:        status,
		TotalTests:    data.Summary.TotalTests,
		PassedTests:   data.Summary.PassedTests,
		FailedTests:   data.Summary.FailedTests,
		ErrorTests:    data.Summary.ErrorTests,
		PassRate:      data.Summary.PassRate,
		AvgSimilarity: data.Summary.AvgSimilarity,
		TotalDuration: data.Summary.TotalDuration,
		Environment:   r.env,
		Failures:      []CIFailure{},
	}
	for _, res := range data.Results {
		if res.Status != StatusFailed {
			continue
		}
		metrics.Failures = append(metrics.Failures, CIFailure{
			TestName:     res.TestName,
			PageName:     res.PageName,
			Device:       res.Device,
			Similarity:   res.Similarity,
			ErrorMessage: res.ErrorMessage,
		})
	}

	if err := writeJSONFile(outputPath, metrics); err != nil {
		return "", err
	}
	r.logger.Info(ctx, "CI metrics exported", logger.Fields{
		"session_id": sessionID,
		"path":       outputPath,
		"status":     status,
	})
	return outputPath, nil
}

// Archive uploads report files to blob storage under the reports prefix.
func (r *Reporter) Archive(ctx context.Context, blob storage.BlobStorage, paths ...string) error {
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("unable to read report file %s: %w", p, err)
		}
		key := fmt.Sprintf("%s/%s", remoteReportPrefix, filepath.Base(p))
		if err := blob.Upload(ctx, key, bytes.NewReader(content)); err != nil {
			return fmt.Errorf("unable to archive report file %s: %w", p, err)
		}
		r.logger.Info(ctx, "report archived", logger.Fields{
			"path": p,
			"key":  key,
		})
	}
	return nil
}

func writeJSONFile(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create report file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("unable to encode report file: %w", err)
	}
	return nil
}
