package comparator

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/hairizuan-noorazman/visual-regression/logger"
)

// newTestComparator creates a comparator over temp directories.
func newTestComparator(t *testing.T) (*Comparator, string, string) {
	t.Helper()
	baselineDir := t.TempDir()
	screenshotsDir := t.TempDir()
	diffDir := t.TempDir()

	c := New(baselineDir, screenshotsDir, diffDir, logger.NewTestLogger())
	return c, baselineDir, screenshotsDir
}

// solidImage creates a uniformly colored RGBA image.
func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// withSquare returns a copy of img with a filled square of the given color.
func withSquare(img *image.RGBA, x0, y0, size int, c color.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			out.SetRGBA(x, y, c)
		}
	}
	return out
}

// writePNG encodes an image to the given path.
func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
}

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)
