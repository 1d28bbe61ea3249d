package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestResult_Validate(t *testing.T) {
	tests := []struct {
		name    string
		result  TestResult
		wantErr error
	}{
		{
			name:   "valid result",
			result: TestResult{SessionID: "s1", TestName: "login_desktop", Status: StatusPassed},
		},
		{
			name:    "missing session",
			result:  TestResult{TestName: "login_desktop", Status: StatusPassed},
			wantErr: ErrInvalidResult,
		},
		{
			name:    "missing test name",
			result:  TestResult{SessionID: "s1", Status: StatusFailed},
			wantErr: ErrInvalidResult,
		},
		{
			name:    "unknown status",
			result:  TestResult{SessionID: "s1", TestName: "login_desktop", Status: "skipped"},
			wantErr: ErrInvalidResult,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.result.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Run("empty results", func(t *testing.T) {
		stats := Summarize(nil)
		assert.Equal(t, 0, stats.TotalTests)
		assert.Equal(t, 0.0, stats.PassRate)
	})

	t.Run("mixed results", func(t *testing.T) {
		results := []*TestResult{
			newTestResult("s1", "login", "desktop", StatusPassed, 99.0),
			newTestResult("s1", "login", "mobile", StatusPassed, 97.0),
			newTestResult("s1", "orders", "desktop", StatusFailed, 80.0),
			newTestResult("s1", "orders", "mobile", StatusError, 0),
		}

		stats := Summarize(results)
		assert.Equal(t, 4, stats.TotalTests)
		assert.Equal(t, 2, stats.PassedTests)
		assert.Equal(t, 1, stats.FailedTests)
		assert.Equal(t, 1, stats.ErrorTests)
		assert.InDelta(t, 50.0, stats.PassRate, 0.001)
		// errored run reported no similarity, so it is excluded from the average
		assert.InDelta(t, (99.0+97.0+80.0)/3, stats.AvgSimilarity, 0.001)
		assert.InDelta(t, 1.5, stats.AvgDuration, 0.001)
		assert.InDelta(t, 6.0, stats.TotalDuration, 0.001)
	})
}

func TestGroupStats(t *testing.T) {
	results := []*TestResult{
		newTestResult("s1", "login", "desktop", StatusPassed, 99.0),
		newTestResult("s1", "orders", "desktop", StatusFailed, 80.0),
		newTestResult("s1", "login", "mobile", StatusPassed, 96.0),
	}

	t.Run("by device", func(t *testing.T) {
		byDevice := ByDevice(results)
		require.Len(t, byDevice, 2)

		desktop := byDevice["desktop"]
		assert.Equal(t, 2, desktop.Total)
		assert.Equal(t, 1, desktop.Passed)
		assert.InDelta(t, 50.0, desktop.PassRate, 0.001)

		mobile := byDevice["mobile"]
		assert.Equal(t, 1, mobile.Total)
		assert.InDelta(t, 100.0, mobile.PassRate, 0.001)
	})

	t.Run("by page", func(t *testing.T) {
		byPage := ByPage(results)
		require.Len(t, byPage, 2)
		assert.Equal(t, 2, byPage["login"].Total)
		assert.Equal(t, 1, byPage["orders"].Failed)
	})
}

func TestAnalyzeFailures(t *testing.T) {
	t.Run("no failures", func(t *testing.T) {
		analysis := AnalyzeFailures([]*TestResult{
			newTestResult("s1", "login", "desktop", StatusPassed, 99.0),
		})
		assert.Equal(t, 0, analysis.TotalFailures)
		assert.Empty(t, analysis.Patterns)
	})

	t.Run("cross device failure", func(t *testing.T) {
		analysis := AnalyzeFailures([]*TestResult{
			newTestResult("s1", "orders", "desktop", StatusFailed, 92.0),
			newTestResult("s1", "orders", "mobile", StatusFailed, 91.0),
			newTestResult("s1", "login", "desktop", StatusPassed, 99.0),
		})
		assert.Equal(t, 2, analysis.TotalFailures)

		var found bool
		for _, p := range analysis.Patterns {
			if p.Type == "cross_device_failure" {
				found = true
				assert.Equal(t, 2, p.Count)
				assert.Contains(t, p.Description, "orders")
			}
		}
		assert.True(t, found, "expected a cross_device_failure pattern")
	})

	t.Run("low similarity failures", func(t *testing.T) {
		analysis := AnalyzeFailures([]*TestResult{
			newTestResult("s1", "orders", "desktop", StatusFailed, 60.0),
			newTestResult("s1", "login", "mobile", StatusFailed, 94.0),
		})

		var found bool
		for _, p := range analysis.Patterns {
			if p.Type == "low_similarity" {
				found = true
				assert.Equal(t, 1, p.Count)
				assert.InDelta(t, 60.0, p.AvgSimilarity, 0.001)
			}
		}
		assert.True(t, found, "expected a low_similarity pattern")
	})
}
