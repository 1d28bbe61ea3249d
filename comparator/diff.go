package comparator

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	panelPadding = 10
	labelBand    = 40
	footerBand   = 40
)

// renderDiff writes a three-panel comparison image: expected, actual, and the
// actual image with differing pixels highlighted in red. The footer carries
// the computed similarity and the threshold it was judged against.
func renderDiff(expected, actual *image.RGBA, mask []bool, result *Result, diffPath string) error {
	size := expected.Bounds().Size()
	w, h := size.X, size.Y

	canvasW := w*3 + panelPadding*4
	canvasH := h + labelBand + footerBand

	canvas := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	panels := []struct {
		label string
		img   image.Image
	}{
		{"Expected", expected},
		{"Actual", actual},
		{"Differences", highlightDifferences(actual, mask)},
	}

	for i, panel := range panels {
		x := panelPadding + i*(w+panelPadding)
		target := image.Rect(x, labelBand, x+w, labelBand+h)
		draw.Draw(canvas, target, panel.img, panel.img.Bounds().Min, draw.Src)
		drawLabel(canvas, x, labelBand-15, panel.label, color.Black)
	}

	drawLabel(canvas, panelPadding, canvasH-25,
		fmt.Sprintf("Similarity: %.2f%%", result.Similarity), color.RGBA{R: 200, A: 255})
	drawLabel(canvas, panelPadding, canvasH-10,
		fmt.Sprintf("Threshold: %.2f%%", result.Threshold), color.RGBA{B: 200, A: 255})

	if err := os.MkdirAll(filepath.Dir(diffPath), 0755); err != nil {
		return fmt.Errorf("failed to create diff directory: %w", err)
	}

	f, err := os.Create(diffPath)
	if err != nil {
		return fmt.Errorf("failed to create diff image: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, canvas); err != nil {
		os.Remove(diffPath)
		return fmt.Errorf("failed to encode diff image: %w", err)
	}

	return nil
}

// highlightDifferences returns a copy of the actual image with every
// differing pixel painted in the marker color.
func highlightDifferences(actual *image.RGBA, mask []bool) *image.RGBA {
	bounds := actual.Bounds()
	w := bounds.Dx()

	highlighted := image.NewRGBA(bounds)
	copy(highlighted.Pix, actual.Pix)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if mask[(y-bounds.Min.Y)*w+(x-bounds.Min.X)] {
				i := highlighted.PixOffset(x, y)
				highlighted.Pix[i] = 255
				highlighted.Pix[i+1] = 0
				highlighted.Pix[i+2] = 0
				highlighted.Pix[i+3] = 255
			}
		}
	}

	return highlighted
}

func drawLabel(dst draw.Image, x, y int, text string, c color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
