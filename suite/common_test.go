package suite

import (
	"context"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/hairizuan-noorazman/visual-regression/baseline"
	"github.com/hairizuan-noorazman/visual-regression/comparator"
	"github.com/hairizuan-noorazman/visual-regression/driver"
	"github.com/hairizuan-noorazman/visual-regression/fixture"
	"github.com/hairizuan-noorazman/visual-regression/logger"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://localhost:8000"

// testPages is the colour each stubbed page renders with.
var testPages = map[string]color.RGBA{
	testBaseURL + "/login":    {40, 80, 160, 255},
	testBaseURL + "/register": {60, 140, 60, 255},
	testBaseURL + "/orders":   {200, 200, 200, 255},
}

// newTestEnv builds an Env over a stub driver, rendering pages from the
// given colour map.
func newTestEnv(t *testing.T, pages map[string]color.RGBA) *Env {
	root := t.TempDir()
	log := logger.NewTestLogger()

	baselines, err := baseline.NewStore(filepath.Join(root, "baselines"), filepath.Join(root, "versions"), log)
	require.NoError(t, err)

	screenshotsDir := filepath.Join(root, "screenshots")
	diffDir := filepath.Join(root, "diffs")

	return &Env{
		BaseURL:        testBaseURL,
		ScreenshotsDir: screenshotsDir,
		DiffDir:        diffDir,
		Credentials:    fixture.Credentials{Username: "visual_test_user", Password: "visual_test_pass"},
		NewDriver: func(ctx context.Context) (driver.Driver, error) {
			d := driver.NewStubDriver()
			for url, c := range pages {
				d.Pages[url] = c
			}
			return d, nil
		},
		Baselines:  baselines,
		Comparator: comparator.New(filepath.Join(root, "baselines"), screenshotsDir, diffDir, log),
		Logger:     log,
	}
}

// generateBaselines captures the suite's pages as the expected set.
func generateBaselines(t *testing.T, env *Env, s Suite) {
	require.NoError(t, s.CreateBaselines(context.Background(), env))
}
