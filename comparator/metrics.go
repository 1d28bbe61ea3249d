package comparator

import (
	"image"
	"math"
)

// pixelSimilarity computes the mean absolute per-channel difference over the
// RGB channels, normalized so that identical images score 100 and a uniform
// full-scale difference scores 0.
func pixelSimilarity(a, b *image.RGBA) float64 {
	bounds := a.Bounds()
	total := 0.0
	count := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ai := a.PixOffset(x, y)
			bi := b.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				d := float64(a.Pix[ai+c]) - float64(b.Pix[bi+c])
				total += math.Abs(d)
				count++
			}
		}
	}

	if count == 0 {
		return 0
	}
	mean := total / float64(count)
	return clampScore((255 - mean) / 255 * 100)
}

// histogramSimilarity computes the Pearson correlation coefficient between
// the concatenated 256-bin RGB histograms of the two images, scaled to 0-100.
// If either histogram has zero variance the correlation is undefined; the
// score is then 100 for bin-identical histograms and 0 otherwise.
func histogramSimilarity(a, b *image.RGBA) float64 {
	ha := rgbHistogram(a)
	hb := rgbHistogram(b)

	identical := true
	for i := range ha {
		if ha[i] != hb[i] {
			identical = false
			break
		}
	}
	if identical {
		return 100
	}

	n := float64(len(ha))
	var sumA, sumB float64
	for i := range ha {
		sumA += ha[i]
		sumB += hb[i]
	}
	meanA := sumA / n
	meanB := sumB / n

	var cov, varA, varB float64
	for i := range ha {
		da := ha[i] - meanA
		db := hb[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	// The histograms differ, so an undefined correlation means no agreement.
	if varA == 0 || varB == 0 {
		return 0
	}

	corr := cov / math.Sqrt(varA*varB)
	return clampScore(corr * 100)
}

// structuralSimilarity computes a simplified global SSIM over the grayscale
// projections of the two images, scaled to 0-100. The small constants keep
// the formula stable near zero mean or variance.
func structuralSimilarity(a, b *image.RGBA) float64 {
	ga := grayscale(a)
	gb := grayscale(b)

	n := float64(len(ga))
	if n == 0 {
		return 0
	}

	var sumA, sumB float64
	for i := range ga {
		sumA += ga[i]
		sumB += gb[i]
	}
	muA := sumA / n
	muB := sumB / n

	var varA, varB, cov float64
	for i := range ga {
		da := ga[i] - muA
		db := gb[i] - muB
		varA += da * da
		varB += db * db
		cov += da * db
	}
	varA /= n
	varB /= n
	cov /= n

	const (
		c1 = 0.01 * 0.01
		c2 = 0.03 * 0.03
	)

	ssim := ((2*muA*muB + c1) * (2*cov + c2)) / ((muA*muA + muB*muB + c1) * (varA + varB + c2))
	return clampScore(ssim * 100)
}

// diffMask reports, per pixel, whether the RGB channels of the two images
// differ, along with the bounding box of all differing pixels. The returned
// rectangle is the zero rectangle when the images are identical.
func diffMask(a, b *image.RGBA) ([]bool, image.Rectangle) {
	bounds := a.Bounds()
	w := bounds.Dx()
	mask := make([]bool, w*bounds.Dy())

	var bbox image.Rectangle
	found := false

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ai := a.PixOffset(x, y)
			bi := b.PixOffset(x, y)
			if a.Pix[ai] != b.Pix[bi] || a.Pix[ai+1] != b.Pix[bi+1] || a.Pix[ai+2] != b.Pix[bi+2] {
				mask[(y-bounds.Min.Y)*w+(x-bounds.Min.X)] = true
				p := image.Rect(x, y, x+1, y+1)
				if !found {
					bbox = p
					found = true
				} else {
					bbox = bbox.Union(p)
				}
			}
		}
	}

	return mask, bbox
}

func rgbHistogram(img *image.RGBA) []float64 {
	hist := make([]float64, 768)
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := img.PixOffset(x, y)
			hist[img.Pix[i]]++
			hist[256+int(img.Pix[i+1])]++
			hist[512+int(img.Pix[i+2])]++
		}
	}
	return hist
}

// grayscale projects the image onto ITU-R BT.601 luminance values.
func grayscale(img *image.RGBA) []float64 {
	bounds := img.Bounds()
	out := make([]float64, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := img.PixOffset(x, y)
			r := float64(img.Pix[i])
			g := float64(img.Pix[i+1])
			b := float64(img.Pix[i+2])
			out = append(out, 0.299*r+0.587*g+0.114*b)
		}
	}
	return out
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
