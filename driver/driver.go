// Package driver abstracts the browser used to capture page screenshots.
package driver

import (
	"context"
	"errors"
	"image"
	"time"
)

var (
	// ErrNotConnected is returned when the browser has not been started.
	ErrNotConnected = errors.New("browser not connected")

	// ErrElementNotFound is returned when a selector matches nothing before
	// its timeout.
	ErrElementNotFound = errors.New("element not found")
)

// Viewport is a device emulation size.
type Viewport struct {
	Width  int
	Height int
	Mobile bool
}

// Driver drives a browser page through the capture flow.
type Driver interface {
	// Navigate loads the given URL.
	Navigate(ctx context.Context, url string) error

	// WaitReady blocks until the selector is present, or the timeout expires.
	WaitReady(ctx context.Context, selector string, timeout time.Duration) error

	// Fill types a value into the element matching the selector.
	Fill(ctx context.Context, selector, value string) error

	// Click clicks the element matching the selector.
	Click(ctx context.Context, selector string) error

	// Screenshot captures the page at the given viewport size.
	Screenshot(ctx context.Context, viewport Viewport) (image.Image, error)

	// Close releases the underlying page and browser resources.
	Close() error
}
