package driver

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/hairizuan-noorazman/visual-regression/logger"
)

// RodConfig holds browser configuration for the rod driver.
type RodConfig struct {
	// DebuggerURL connects to an already running browser instead of
	// launching one.
	DebuggerURL string

	// Headless controls whether a launched browser shows a window.
	Headless bool

	// NavigationTimeout bounds page loads.
	NavigationTimeout time.Duration
}

// DefaultRodConfig returns the settings used by unattended test runs.
func DefaultRodConfig() RodConfig {
	return RodConfig{
		Headless:          true,
		NavigationTimeout: 30 * time.Second,
	}
}

// RodDriver drives a Chromium page through go-rod.
type RodDriver struct {
	cfg     RodConfig
	browser *rod.Browser
	page    *rod.Page
	logger  logger.Logger
}

// NewRodDriver launches (or attaches to) a browser and opens a blank page.
func NewRodDriver(ctx context.Context, cfg RodConfig, log logger.Logger) (*RodDriver, error) {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 30 * time.Second
	}

	controlURL := cfg.DebuggerURL
	if controlURL == "" {
		url, err := launcher.New().Headless(cfg.Headless).Launch()
		if err != nil {
			return nil, fmt.Errorf("unable to launch browser: %w", err)
		}
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("unable to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("unable to create page: %w", err)
	}

	log.Info(ctx, "browser driver started", logger.Fields{
		"headless": cfg.Headless,
		"attached": cfg.DebuggerURL != "",
	})
	return &RodDriver{
		cfg:     cfg,
		browser: browser,
		page:    page,
		logger:  log,
	}, nil
}

// Navigate loads the given URL and waits for the load event.
func (d *RodDriver) Navigate(ctx context.Context, url string) error {
	if d.page == nil {
		return ErrNotConnected
	}
	page := d.page.Context(ctx).Timeout(d.cfg.NavigationTimeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("unable to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("page load did not finish for %s: %w", url, err)
	}
	return nil
}

// WaitReady blocks until the selector is present, or the timeout expires.
func (d *RodDriver) WaitReady(ctx context.Context, selector string, timeout time.Duration) error {
	if d.page == nil {
		return ErrNotConnected
	}
	_, err := d.page.Context(ctx).Timeout(timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return nil
}

// Fill types a value into the element matching the selector.
func (d *RodDriver) Fill(ctx context.Context, selector, value string) error {
	if d.page == nil {
		return ErrNotConnected
	}
	el, err := d.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("unable to fill %s: %w", selector, err)
	}
	return nil
}

// Click clicks the element matching the selector.
func (d *RodDriver) Click(ctx context.Context, selector string) error {
	if d.page == nil {
		return ErrNotConnected
	}
	el, err := d.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("unable to click %s: %w", selector, err)
	}
	return nil
}

// Screenshot captures the page at the given viewport size.
func (d *RodDriver) Screenshot(ctx context.Context, viewport Viewport) (image.Image, error) {
	if d.page == nil {
		return nil, ErrNotConnected
	}
	page := d.page.Context(ctx)

	err := proto.EmulationSetDeviceMetricsOverride{
		Width:             viewport.Width,
		Height:            viewport.Height,
		DeviceScaleFactor: 1.0,
		Mobile:            viewport.Mobile,
	}.Call(page)
	if err != nil {
		return nil, fmt.Errorf("unable to set viewport: %w", err)
	}

	data, err := page.Screenshot(false, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to capture screenshot: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to decode screenshot: %w", err)
	}
	return img, nil
}

// Close releases the page and the browser.
func (d *RodDriver) Close() error {
	if d.page != nil {
		d.page.Close()
		d.page = nil
	}
	if d.browser != nil {
		err := d.browser.Close()
		d.browser = nil
		return err
	}
	return nil
}
