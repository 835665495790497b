// Package snapshot captures the kiosk page as a PNG via headless
// Chromium, for printing or posting the week's schedule somewhere a
// terminal cannot reach.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	DefaultWidth      = 1280
	DefaultHeight     = 960
	DefaultTimeoutSec = 30
)

// Options defines parameters for a Chromium-based screenshot capture.
type Options struct {
	// URL of the kiosk page, e.g. "http://127.0.0.1:8080/?week=2024-06-03".
	URL string

	// OutputPath is where the PNG screenshot will be written.
	OutputPath string

	// Width and Height are the viewport dimensions in pixels. If zero,
	// DefaultWidth / DefaultHeight are used.
	Width  int
	Height int

	// Timeout bounds the entire capture operation. If zero,
	// DefaultTimeoutSec is used.
	Timeout time.Duration
}

// normalized validates the required fields and fills in viewport and
// timeout defaults.
func (o Options) normalized() (Options, error) {
	if o.URL == "" {
		return o, fmt.Errorf("snapshot: URL is required")
	}
	if o.OutputPath == "" {
		return o, fmt.Errorf("snapshot: OutputPath is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}
	return o, nil
}

// Capture navigates to opts.URL, waits until the page signals that the
// schedule is rendered (the kiosk root carries data-ready="true"), and
// writes a PNG screenshot to opts.OutputPath.
func Capture(parentCtx context.Context, opts Options) error {
	opts, err := opts.normalized()
	if err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		// Small extra delay to allow final paints.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("snapshot: chromedp run failed: %w", err)
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("snapshot: failed to write PNG: %w", err)
	}

	return nil
}
