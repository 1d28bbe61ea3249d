package suite

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/hairizuan-noorazman/visual-regression/baseline"
	"github.com/hairizuan-noorazman/visual-regression/driver"
	"github.com/hairizuan-noorazman/visual-regression/fixture"
	"github.com/hairizuan-noorazman/visual-regression/logger"
	"github.com/hairizuan-noorazman/visual-regression/report"
)

// defaultReadyTimeout bounds the wait for a page's ready selector.
const defaultReadyTimeout = 10 * time.Second

// PageSuite captures one page at every device viewport and compares each
// capture against its baseline.
type PageSuite struct {
	name          string
	path          string
	readySelector string
	requiresAuth  bool
	readyTimeout  time.Duration
}

// NewPageSuite creates a capture-and-compare suite for one page.
func NewPageSuite(name, path, readySelector string, requiresAuth bool) *PageSuite {
	return &PageSuite{
		name:          name,
		path:          path,
		readySelector: readySelector,
		requiresAuth:  requiresAuth,
		readyTimeout:  defaultReadyTimeout,
	}
}

// Name identifies the suite.
func (s *PageSuite) Name() string { return s.name }

// Setup makes sure the app has the accounts and orders the page renders.
func (s *PageSuite) Setup(ctx context.Context, env *Env) error {
	if env.Seeder == nil {
		return nil
	}
	return env.Seeder.Seed(ctx, fixture.Set{
		Users:  fixture.KnownUsers(),
		Orders: fixture.PinnedOrders(),
	}, false)
}

// Run captures the page at every viewport and compares against baselines.
func (s *PageSuite) Run(ctx context.Context, env *Env) ([]report.TestResult, error) {
	d, err := env.NewDriver(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to start driver: %w", err)
	}
	defer d.Close()

	if s.requiresAuth {
		if err := login(ctx, d, env); err != nil {
			return nil, err
		}
	}

	viewports := baseline.Viewports()
	results := make([]report.TestResult, 0, len(viewports))
	for _, device := range Devices() {
		vp := viewports[device]
		start := time.Now()
		result := report.TestResult{
			TestName:  fmt.Sprintf("%s_%s", s.name, device),
			PageName:  s.name,
			Device:    device,
			Timestamp: start,
		}

		shotPath, err := s.capture(ctx, d, env, device, vp)
		if err != nil {
			result.Status = report.StatusError
			result.ErrorMessage = err.Error()
			result.Duration = time.Since(start).Seconds()
			results = append(results, result)
			env.Logger.Error(ctx, "page capture failed", logger.Fields{
				"suite":  s.name,
				"device": device,
				"error":  err.Error(),
			})
			continue
		}

		expectedPath := env.Baselines.PathFor(s.name, device)
		diffPath := filepath.Join(env.DiffDir, fmt.Sprintf("diff_%s_%s.png", s.name, device))
		threshold := env.Comparator.ThresholdFor(s.name)

		cmp := env.Comparator.Compare(expectedPath, shotPath, diffPath, threshold)
		result.Similarity = cmp.Similarity
		result.Threshold = threshold
		result.ScreenshotPath = shotPath
		result.BaselinePath = expectedPath
		if cmp.DiffImageWritten {
			result.DiffPath = diffPath
		}
		switch {
		case cmp.Error != "":
			result.Status = report.StatusError
			result.ErrorMessage = cmp.Error
		case cmp.Passed:
			result.Status = report.StatusPassed
		default:
			result.Status = report.StatusFailed
			result.ErrorMessage = fmt.Sprintf("similarity %.2f%% below threshold %.2f%%", cmp.Similarity, threshold)
		}
		result.Duration = time.Since(start).Seconds()
		results = append(results, result)
	}
	return results, nil
}

// CreateBaselines captures the page at every viewport as the new expected
// images.
func (s *PageSuite) CreateBaselines(ctx context.Context, env *Env) error {
	d, err := env.NewDriver(ctx)
	if err != nil {
		return fmt.Errorf("unable to start driver: %w", err)
	}
	defer d.Close()

	if s.requiresAuth {
		if err := login(ctx, d, env); err != nil {
			return err
		}
	}

	viewports := baseline.Viewports()
	for _, device := range Devices() {
		vp := viewports[device]
		img, err := s.capturePage(ctx, d, env, vp)
		if err != nil {
			return fmt.Errorf("unable to capture %s at %s: %w", s.name, device, err)
		}
		path := env.Baselines.PathFor(s.name, device)
		if err := savePNG(path, img); err != nil {
			return err
		}
		env.Logger.Info(ctx, "baseline created", logger.Fields{
			"suite":  s.name,
			"device": device,
			"path":   path,
		})
	}
	return nil
}

// capture screenshots the page at a viewport and writes it under the
// screenshots directory.
func (s *PageSuite) capture(ctx context.Context, d driver.Driver, env *Env, device string, vp baseline.ViewportSize) (string, error) {
	img, err := s.capturePage(ctx, d, env, vp)
	if err != nil {
		return "", err
	}
	path := filepath.Join(env.ScreenshotsDir, fmt.Sprintf("%s_%s_current.png", s.name, device))
	if err := savePNG(path, img); err != nil {
		return "", err
	}
	return path, nil
}

func (s *PageSuite) capturePage(ctx context.Context, d driver.Driver, env *Env, vp baseline.ViewportSize) (image.Image, error) {
	if err := d.Navigate(ctx, env.BaseURL+s.path); err != nil {
		return nil, err
	}
	if s.readySelector != "" {
		if err := d.WaitReady(ctx, s.readySelector, s.readyTimeout); err != nil {
			return nil, err
		}
	}
	return d.Screenshot(ctx, driver.Viewport{Width: vp.Width, Height: vp.Height})
}

// login signs the driver into the app with the environment's credentials.
func login(ctx context.Context, d driver.Driver, env *Env) error {
	if err := d.Navigate(ctx, env.BaseURL+"/login"); err != nil {
		return fmt.Errorf("unable to reach login page: %w", err)
	}
	if err := d.WaitReady(ctx, "form", defaultReadyTimeout); err != nil {
		return fmt.Errorf("login form did not appear: %w", err)
	}
	if err := d.Fill(ctx, `input[name="login_id"]`, env.Credentials.Username); err != nil {
		return err
	}
	if err := d.Fill(ctx, `input[name="password"]`, env.Credentials.Password); err != nil {
		return err
	}
	if err := d.Click(ctx, `button[type="submit"]`); err != nil {
		return err
	}
	return nil
}

func savePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create screenshot directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create screenshot file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("unable to encode screenshot: %w", err)
	}
	return nil
}
