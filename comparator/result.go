package comparator

import (
	"image"
	"time"
)

// MetricScores holds the per-method similarity breakdown. Each score is on a
// 0-100 scale where 100 means the images are indistinguishable to that metric.
type MetricScores struct {
	PixelWise  float64 `json:"pixel_wise"`
	Histogram  float64 `json:"histogram"`
	Structural float64 `json:"structural"`
}

// Min returns the most pessimistic of the three scores. The combined
// similarity never overestimates what any single metric reports.
func (m MetricScores) Min() float64 {
	min := m.PixelWise
	if m.Histogram < min {
		min = m.Histogram
	}
	if m.Structural < min {
		min = m.Structural
	}
	return min
}

// Result is the outcome of comparing one screenshot against its baseline.
// A Result is immutable once computed; failures are reported through the
// Error field rather than a Go error so that batch runs can complete.
type Result struct {
	ExpectedPath string    `json:"expected_path"`
	ActualPath   string    `json:"actual_path"`
	DiffPath     string    `json:"diff_path,omitempty"`
	Threshold    float64   `json:"threshold"`
	ComparedAt   time.Time `json:"compared_at"`

	Similarity float64      `json:"similarity_percentage"`
	Passed     bool         `json:"passed"`
	Error      string       `json:"error,omitempty"`
	Metrics    MetricScores `json:"similarity_methods"`

	ExpectedSize  image.Point `json:"expected_size"`
	ActualSize    image.Point `json:"actual_size"`
	ResizedActual bool        `json:"resized_actual"`

	DiffBounds       image.Rectangle `json:"difference_bbox"`
	HasDifferences   bool            `json:"has_differences"`
	DiffImageWritten bool            `json:"diff_image_generated"`
}

// BatchReport aggregates the results of comparing a whole screenshots
// directory against the baseline set.
type BatchReport struct {
	ComparedAt        time.Time         `json:"compared_at"`
	Total             int               `json:"total_comparisons"`
	Passed            int               `json:"passed"`
	Failed            int               `json:"failed"`
	Errors            int               `json:"errors"`
	Comparisons       map[string]Result `json:"comparisons"`
	PassRate          float64           `json:"pass_rate"`
	AverageSimilarity float64           `json:"average_similarity"`
}

// Clean reports whether every comparison in the batch passed without errors.
func (b *BatchReport) Clean() bool {
	return b.Failed == 0 && b.Errors == 0
}
