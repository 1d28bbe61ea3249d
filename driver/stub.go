package driver

import (
	"context"
	"image"
	"image/color"
	"time"
)

// StubDriver returns canned screenshots without a browser. Pages map URLs to
// fill colours so tests can make two pages render differently.
type StubDriver struct {
	// Pages maps a URL to the colour its screenshot is filled with. URLs
	// not in the map render white.
	Pages map[string]color.RGBA

	// NavigateErr, when set, is returned by every Navigate call.
	NavigateErr error

	// Visited records every navigated URL in order.
	Visited []string

	// Filled records selector=value pairs from Fill calls.
	Filled map[string]string

	// Clicked records clicked selectors in order.
	Clicked []string

	current string
	closed  bool
}

// NewStubDriver creates a stub driver with no pages configured.
func NewStubDriver() *StubDriver {
	return &StubDriver{
		Pages:  map[string]color.RGBA{},
		Filled: map[string]string{},
	}
}

func (d *StubDriver) Navigate(ctx context.Context, url string) error {
	if d.NavigateErr != nil {
		return d.NavigateErr
	}
	d.current = url
	d.Visited = append(d.Visited, url)
	return nil
}

func (d *StubDriver) WaitReady(ctx context.Context, selector string, timeout time.Duration) error {
	return nil
}

func (d *StubDriver) Fill(ctx context.Context, selector, value string) error {
	d.Filled[selector] = value
	return nil
}

func (d *StubDriver) Click(ctx context.Context, selector string) error {
	d.Clicked = append(d.Clicked, selector)
	return nil
}

func (d *StubDriver) Screenshot(ctx context.Context, viewport Viewport) (image.Image, error) {
	fill, ok := d.Pages[d.current]
	if !ok {
		fill = color.RGBA{255, 255, 255, 255}
	}
	img := image.NewRGBA(image.Rect(0, 0, viewport.Width, viewport.Height))
	for y := 0; y < viewport.Height; y++ {
		for x := 0; x < viewport.Width; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	return img, nil
}

func (d *StubDriver) Close() error {
	d.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (d *StubDriver) Closed() bool {
	return d.closed
}
