package comparator

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hairizuan-noorazman/visual-regression/logger"
	xdraw "golang.org/x/image/draw"
)

var (
	// ErrInvalidThreshold is returned when a threshold is outside 0-100.
	ErrInvalidThreshold = errors.New("threshold must be between 0 and 100")

	// ErrNoScreenshots is returned when a batch comparison finds no screenshots.
	ErrNoScreenshots = errors.New("no screenshot files found")
)

// DefaultThreshold is the similarity percentage required to pass when no
// page-type specific threshold applies.
const DefaultThreshold = 95.0

// DefaultThresholds returns the per-page-type similarity thresholds. Pages
// with known dynamic content (timestamps, pre-populated forms) tolerate more
// drift than static ones.
func DefaultThresholds() map[string]float64 {
	return map[string]float64{
		"login":         98.0,
		"register":      98.0,
		"orders":        95.0,
		"order_create":  97.0,
		"order_edit":    95.0,
		"modal":         95.0,
		"ui_components": 97.0,
	}
}

// Comparator quantifies visual similarity between screenshots and baselines
// and renders difference visualizations for failures.
type Comparator struct {
	baselineDir    string
	screenshotsDir string
	diffDir        string
	thresholds     map[string]float64
	logger         logger.Logger
}

// New creates a comparator over the given baseline, screenshots and diff
// directories, seeded with the default page-type threshold table.
func New(baselineDir, screenshotsDir, diffDir string, log logger.Logger) *Comparator {
	return &Comparator{
		baselineDir:    baselineDir,
		screenshotsDir: screenshotsDir,
		diffDir:        diffDir,
		thresholds:     DefaultThresholds(),
		logger:         log,
	}
}

// SetThreshold overrides the similarity threshold for a page type.
func (c *Comparator) SetThreshold(pageType string, threshold float64) error {
	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("%w: %.2f", ErrInvalidThreshold, threshold)
	}
	c.thresholds[pageType] = threshold
	return nil
}

// ThresholdFor determines the similarity threshold for an image name by
// substring match against the page-type table, longest match first so that
// "order_create" wins over "orders" ordering quirks.
func (c *Comparator) ThresholdFor(name string) float64 {
	lower := strings.ToLower(filepath.Base(name))

	keys := make([]string, 0, len(c.thresholds))
	for k := range c.thresholds {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	for _, k := range keys {
		if strings.Contains(lower, k) {
			return c.thresholds[k]
		}
	}
	return DefaultThreshold
}

// Compare measures the similarity of the actual image against the expected
// one and decides pass/fail against the threshold. It never returns a Go
// error: missing files, decode failures and size mismatches all resolve to
// fields on the Result so that batch runs keep going.
//
// When the images disagree and diffPath is non-empty, a three-panel
// comparison image is written there.
func (c *Comparator) Compare(expectedPath, actualPath, diffPath string, threshold float64) Result {
	result := Result{
		ExpectedPath: expectedPath,
		ActualPath:   actualPath,
		DiffPath:     diffPath,
		Threshold:    threshold,
		ComparedAt:   time.Now(),
	}

	expected, err := loadRGBA(expectedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Error = fmt.Sprintf("expected image not found: %s", expectedPath)
		} else {
			result.Error = fmt.Sprintf("image comparison failed: %v", err)
		}
		return result
	}

	actual, err := loadRGBA(actualPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Error = fmt.Sprintf("actual image not found: %s", actualPath)
		} else {
			result.Error = fmt.Sprintf("image comparison failed: %v", err)
		}
		return result
	}

	result.ExpectedSize = expected.Bounds().Size()
	result.ActualSize = actual.Bounds().Size()

	// A size mismatch is accommodated by resizing, not silently passed: the
	// flag stays on the result for visibility.
	if !result.ExpectedSize.Eq(result.ActualSize) {
		actual = resizeTo(actual, expected.Bounds())
		result.ResizedActual = true
	}

	result.Metrics = MetricScores{
		PixelWise:  pixelSimilarity(expected, actual),
		Histogram:  histogramSimilarity(expected, actual),
		Structural: structuralSimilarity(expected, actual),
	}
	result.Similarity = result.Metrics.Min()
	result.Passed = result.Similarity >= threshold

	mask, bbox := diffMask(expected, actual)
	result.DiffBounds = bbox
	result.HasDifferences = !bbox.Empty()

	if diffPath != "" && !result.Passed {
		if err := renderDiff(expected, actual, mask, &result, diffPath); err != nil {
			c.logger.Warn(context.Background(), "could not generate difference image", logger.Fields{
				"diff_path": diffPath,
				"error":     err.Error(),
			})
		} else {
			result.DiffImageWritten = true
		}
	}

	return result
}

// CompareAll compares every *.png screenshot in the screenshots directory
// against its baseline. Screenshots without a baseline are skipped.
func (c *Comparator) CompareAll(ctx context.Context) (*BatchReport, error) {
	report := &BatchReport{
		ComparedAt:  time.Now(),
		Comparisons: make(map[string]Result),
	}

	screenshots, err := filepath.Glob(filepath.Join(c.screenshotsDir, "*.png"))
	if err != nil {
		return nil, fmt.Errorf("failed to list screenshots: %w", err)
	}
	if len(screenshots) == 0 {
		return nil, ErrNoScreenshots
	}

	c.logger.Info(ctx, "comparing screenshots with baselines", logger.Fields{
		"count": len(screenshots),
	})

	similaritySum := 0.0
	measured := 0

	for _, screenshot := range screenshots {
		name := filepath.Base(screenshot)

		baselinePath, ok := c.FindBaseline(name)
		if !ok {
			c.logger.Warn(ctx, "no baseline found for screenshot", logger.Fields{
				"screenshot": name,
			})
			continue
		}

		threshold := c.ThresholdFor(name)
		diffPath := filepath.Join(c.diffDir, "diff_"+name)

		result := c.Compare(baselinePath, screenshot, diffPath, threshold)
		report.Comparisons[name] = result
		report.Total++

		switch {
		case result.Error != "":
			report.Errors++
		case result.Passed:
			report.Passed++
		default:
			report.Failed++
		}

		if result.Error == "" {
			similaritySum += result.Similarity
			measured++
		}
	}

	if report.Total > 0 {
		report.PassRate = float64(report.Passed) / float64(report.Total) * 100
	}
	if measured > 0 {
		report.AverageSimilarity = similaritySum / float64(measured)
	}

	return report, nil
}

// FindBaseline locates the baseline image for a screenshot file name. It
// first tries the direct expected_<name> mapping, then matches the stem with
// common capture suffixes stripped.
func (c *Comparator) FindBaseline(screenshotName string) (string, bool) {
	direct := filepath.Join(c.baselineDir, "expected_"+screenshotName)
	if _, err := os.Stat(direct); err == nil {
		return direct, true
	}

	stem := strings.TrimSuffix(screenshotName, filepath.Ext(screenshotName))
	for _, suffix := range []string{"_current", "_test", "_actual"} {
		stem = strings.TrimSuffix(stem, suffix)
	}

	baselines, err := filepath.Glob(filepath.Join(c.baselineDir, "expected_*.png"))
	if err != nil {
		return "", false
	}
	for _, baseline := range baselines {
		base := strings.TrimSuffix(filepath.Base(baseline), ".png")
		if strings.TrimPrefix(base, "expected_") == stem {
			return baseline, true
		}
	}

	return "", false
}

// loadRGBA decodes an image file and normalizes it to 8-bit RGBA. Metrics
// only read the RGB channels, so alpha and grayscale inputs compare on equal
// footing.
func loadRGBA(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}

	rgba := image.NewRGBA(img.Bounds())
	xdraw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, xdraw.Src)
	return rgba, nil
}

// resizeTo scales src to the destination bounds with Catmull-Rom
// interpolation. Lossy resizes keep similarity strictly below 100 for
// non-trivial content, which is the intended signal.
func resizeTo(src *image.RGBA, bounds image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(bounds)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
