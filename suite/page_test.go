package suite

import (
	"context"
	"image/color"
	"os"
	"testing"

	"github.com/hairizuan-noorazman/visual-regression/driver"
	"github.com/hairizuan-noorazman/visual-regression/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageSuite_RunMatchesBaselines(t *testing.T) {
	env := newTestEnv(t, testPages)
	s := NewPageSuite("login_page", "/login", "form", false)
	generateBaselines(t, env, s)

	results, err := s.Run(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for _, r := range results {
		assert.Equal(t, report.StatusPassed, r.Status, "device %s", r.Device)
		assert.InDelta(t, 100.0, r.Similarity, 0.001)
		assert.Equal(t, "login_page", r.PageName)
		assert.FileExists(t, r.ScreenshotPath)
		assert.Empty(t, r.DiffPath)
	}
	assert.Equal(t, "desktop", results[0].Device)
	assert.Equal(t, "mobile", results[3].Device)
}

func TestPageSuite_RunDetectsRegression(t *testing.T) {
	env := newTestEnv(t, testPages)
	s := NewPageSuite("login_page", "/login", "form", false)
	generateBaselines(t, env, s)

	// the page renders a different colour now
	changed := map[string]color.RGBA{
		testBaseURL + "/login": {220, 40, 40, 255},
	}
	env.NewDriver = func(ctx context.Context) (driver.Driver, error) {
		d := driver.NewStubDriver()
		d.Pages = changed
		return d, nil
	}

	results, err := s.Run(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for _, r := range results {
		assert.Equal(t, report.StatusFailed, r.Status, "device %s", r.Device)
		assert.Less(t, r.Similarity, r.Threshold)
		require.NotEmpty(t, r.DiffPath)
		_, statErr := os.Stat(r.DiffPath)
		assert.NoError(t, statErr, "diff image for %s", r.Device)
	}
}

func TestPageSuite_RunWithoutBaselines(t *testing.T) {
	env := newTestEnv(t, testPages)
	s := NewPageSuite("login_page", "/login", "form", false)

	results, err := s.Run(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for _, r := range results {
		assert.Equal(t, report.StatusError, r.Status)
		assert.Contains(t, r.ErrorMessage, "expected image not found")
	}
}

func TestPageSuite_AuthenticatedSuiteLogsIn(t *testing.T) {
	env := newTestEnv(t, testPages)

	var captured *driver.StubDriver
	env.NewDriver = func(ctx context.Context) (driver.Driver, error) {
		captured = driver.NewStubDriver()
		for url, c := range testPages {
			captured.Pages[url] = c
		}
		return captured, nil
	}

	s := NewPageSuite("orders_list", "/orders", "table", true)
	generateBaselines(t, env, s)

	require.NotNil(t, captured)
	assert.Equal(t, testBaseURL+"/login", captured.Visited[0])
	assert.Equal(t, "visual_test_user", captured.Filled[`input[name="login_id"]`])
	assert.Equal(t, "visual_test_pass", captured.Filled[`input[name="password"]`])
	assert.Contains(t, captured.Clicked, `button[type="submit"]`)

	results, err := s.Run(context.Background(), env)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, report.StatusPassed, r.Status)
	}
}

func TestPageSuite_DriverErrorBecomesErrorResult(t *testing.T) {
	env := newTestEnv(t, testPages)
	s := NewPageSuite("login_page", "/login", "form", false)
	generateBaselines(t, env, s)

	env.NewDriver = func(ctx context.Context) (driver.Driver, error) {
		d := driver.NewStubDriver()
		d.NavigateErr = driver.ErrNotConnected
		return d, nil
	}

	results, err := s.Run(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.Equal(t, report.StatusError, r.Status)
		assert.Contains(t, r.ErrorMessage, "browser not connected")
	}
}
