package report

import (
	"fmt"
	"strings"
)

// SummaryStats aggregates a result set.
type SummaryStats struct {
	TotalTests    int     `json:"total_tests"`
	PassedTests   int     `json:"passed_tests"`
	FailedTests   int     `json:"failed_tests"`
	ErrorTests    int     `json:"error_tests"`
	PassRate      float64 `json:"pass_rate"`
	AvgSimilarity float64 `json:"avg_similarity"`
	AvgDuration   float64 `json:"avg_duration"`
	TotalDuration float64 `json:"total_duration"`
}

// GroupStats aggregates results sharing a device or page.
type GroupStats struct {
	Total         int     `json:"total"`
	Passed        int     `json:"passed"`
	Failed        int     `json:"failed"`
	Errors        int     `json:"error"`
	PassRate      float64 `json:"pass_rate"`
	AvgSimilarity float64 `json:"avg_similarity"`
	AvgDuration   float64 `json:"avg_duration"`
}

// FailurePattern is a recurring failure shape worth calling out.
type FailurePattern struct {
	Type          string  `json:"type"`
	Description   string  `json:"description"`
	Count         int     `json:"count"`
	AvgSimilarity float64 `json:"avg_similarity"`
}

// FailureAnalysis groups failures and surfaces recurring patterns.
type FailureAnalysis struct {
	TotalFailures int                      `json:"total_failures"`
	ByDevice      map[string][]*TestResult `json:"device_failures,omitempty"`
	ByPage        map[string][]*TestResult `json:"page_failures,omitempty"`
	Patterns      []FailurePattern         `json:"patterns"`
}

// lowSimilarityCutoff marks failures far enough below any threshold that the
// page likely broke outright rather than drifted.
const lowSimilarityCutoff = 85.0

// Summarize computes summary statistics over a result set.
func Summarize(results []*TestResult) SummaryStats {
	stats := SummaryStats{TotalTests: len(results)}
	if len(results) == 0 {
		return stats
	}

	similaritySum, similarityCount := 0.0, 0
	durationSum, durationCount := 0.0, 0
	for _, r := range results {
		switch r.Status {
		case StatusPassed:
			stats.PassedTests++
		case StatusFailed:
			stats.FailedTests++
		default:
			stats.ErrorTests++
		}
		if r.Similarity > 0 {
			similaritySum += r.Similarity
			similarityCount++
		}
		if r.Duration > 0 {
			durationSum += r.Duration
			durationCount++
		}
	}
	stats.PassRate = float64(stats.PassedTests) / float64(stats.TotalTests) * 100
	if similarityCount > 0 {
		stats.AvgSimilarity = similaritySum / float64(similarityCount)
	}
	if durationCount > 0 {
		stats.AvgDuration = durationSum / float64(durationCount)
	}
	stats.TotalDuration = durationSum
	return stats
}

// ByDevice groups results per device and summarises each group.
func ByDevice(results []*TestResult) map[string]GroupStats {
	return groupBy(results, func(r *TestResult) string { return r.Device })
}

// ByPage groups results per page and summarises each group.
func ByPage(results []*TestResult) map[string]GroupStats {
	return groupBy(results, func(r *TestResult) string { return r.PageName })
}

func groupBy(results []*TestResult, key func(*TestResult) string) map[string]GroupStats {
	grouped := map[string][]*TestResult{}
	for _, r := range results {
		k := key(r)
		grouped[k] = append(grouped[k], r)
	}
	out := make(map[string]GroupStats, len(grouped))
	for k, rs := range grouped {
		s := Summarize(rs)
		out[k] = GroupStats{
			Total:         s.TotalTests,
			Passed:        s.PassedTests,
			Failed:        s.FailedTests,
			Errors:        s.ErrorTests,
			PassRate:      s.PassRate,
			AvgSimilarity: s.AvgSimilarity,
			AvgDuration:   s.AvgDuration,
		}
	}
	return out
}

// AnalyzeFailures groups failed results and surfaces recurring patterns:
// pages failing across several devices, and failures with similarity low
// enough to suggest breakage rather than drift.
func AnalyzeFailures(results []*TestResult) FailureAnalysis {
	var failures []*TestResult
	for _, r := range results {
		if r.Status == StatusFailed {
			failures = append(failures, r)
		}
	}
	analysis := FailureAnalysis{
		TotalFailures: len(failures),
		Patterns:      []FailurePattern{},
	}
	if len(failures) == 0 {
		return analysis
	}

	analysis.ByDevice = map[string][]*TestResult{}
	analysis.ByPage = map[string][]*TestResult{}
	for _, f := range failures {
		analysis.ByDevice[f.Device] = append(analysis.ByDevice[f.Device], f)
		analysis.ByPage[f.PageName] = append(analysis.ByPage[f.PageName], f)
	}

	for page, pageFails := range analysis.ByPage {
		if len(pageFails) < 2 {
			continue
		}
		devices := make([]string, 0, len(pageFails))
		simSum := 0.0
		for _, f := range pageFails {
			devices = append(devices, f.Device)
			simSum += f.Similarity
		}
		analysis.Patterns = append(analysis.Patterns, FailurePattern{
			Type:          "cross_device_failure",
			Description:   fmt.Sprintf("Page %q failed on multiple devices: %s", page, strings.Join(devices, ", ")),
			Count:         len(pageFails),
			AvgSimilarity: simSum / float64(len(pageFails)),
		})
	}

	var lowSim []*TestResult
	for _, f := range failures {
		if f.Similarity < lowSimilarityCutoff {
			lowSim = append(lowSim, f)
		}
	}
	if len(lowSim) > 0 {
		simSum := 0.0
		for _, f := range lowSim {
			simSum += f.Similarity
		}
		analysis.Patterns = append(analysis.Patterns, FailurePattern{
			Type:          "low_similarity",
			Description:   fmt.Sprintf("%d tests with very low similarity (<%.0f%%)", len(lowSim), lowSimilarityCutoff),
			Count:         len(lowSim),
			AvgSimilarity: simSum / float64(len(lowSim)),
		})
	}
	return analysis
}
