// Package suite defines the visual test suites and the runner that executes
// them against the order management app.
package suite

import (
	"context"
	"errors"

	"github.com/hairizuan-noorazman/visual-regression/baseline"
	"github.com/hairizuan-noorazman/visual-regression/comparator"
	"github.com/hairizuan-noorazman/visual-regression/driver"
	"github.com/hairizuan-noorazman/visual-regression/fixture"
	"github.com/hairizuan-noorazman/visual-regression/logger"
	"github.com/hairizuan-noorazman/visual-regression/report"
)

var (
	// ErrUnknownSuite is returned when a requested suite is not registered.
	ErrUnknownSuite = errors.New("unknown suite")

	// ErrDuplicateSuite is returned when a suite name is registered twice.
	ErrDuplicateSuite = errors.New("suite already registered")
)

// Env bundles the collaborators a suite needs to capture and compare pages.
type Env struct {
	// BaseURL is the root of the app under test, e.g. http://localhost:8000.
	BaseURL string

	// ScreenshotsDir receives the captured page images.
	ScreenshotsDir string

	// DiffDir receives difference visualizations for failed comparisons.
	DiffDir string

	// Credentials log suites into pages behind auth.
	Credentials fixture.Credentials

	// NewDriver opens a fresh browser page. Each suite run gets its own
	// driver so suites can execute concurrently.
	NewDriver func(ctx context.Context) (driver.Driver, error)

	Baselines  *baseline.Store
	Comparator *comparator.Comparator

	// Seeder, when set, lets suites make sure the app has test data.
	Seeder *fixture.Seeder

	Logger logger.Logger
}

// Suite is one visual test over a part of the app.
type Suite interface {
	// Name identifies the suite in the registry and in reports.
	Name() string

	// Setup prepares whatever app state the suite needs.
	Setup(ctx context.Context, env *Env) error

	// Run captures and compares the suite's pages, returning one result per
	// comparison. The returned results carry no session ID; the runner fills
	// it in.
	Run(ctx context.Context, env *Env) ([]report.TestResult, error)

	// CreateBaselines captures the suite's pages as the new expected images.
	CreateBaselines(ctx context.Context, env *Env) error
}

// Devices returns the viewport names in capture order.
func Devices() []string {
	return []string{"desktop", "laptop", "tablet", "mobile"}
}
