// Package browser - browser.go
//
// This file implements a game client backend running in Chrome through
// chromedp.
//
// Key Responsibilities:
//   - Chrome lifecycle (allocator, browser context, navigation, close)
//   - Viewport screenshots with timeout protection
//   - Mouse and keyboard input through CDP Input.dispatch* events
//
// Browser Architecture:
// The Client uses nested contexts for resource management:
//   - allocCtx: allocator context owning the browser process
//   - ctx: browser tab context for page operations
//
// Timeout Strategy:
//   - Navigation: 60 seconds (slow network tolerance)
//   - Screenshot: 5 seconds
//   - Input events and viewport queries: 2 seconds
//
// Coordinates are CSS pixels of the viewport; the client window is the whole
// viewport at (0, 0).
package browser

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"

	"scape-bot/internal/client"
	"scape-bot/internal/dispatch"
	"scape-bot/internal/geometry"
	"scape-bot/internal/observability"
	"scape-bot/internal/vision"
)

// Options configures Start.
type Options struct {
	URL      string
	Width    int
	Height   int
	Headless bool
}

// Client is a Chrome tab running the game.
type Client struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	width       int
	height      int

	mu  sync.Mutex
	pos geometry.Point
}

var _ client.Client = (*Client)(nil)

// Start launches Chrome and navigates to opts.URL.
func Start(opts Options) (*Client, error) {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", false),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(opts.Width, opts.Height),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), execOpts...)
	observability.LogInfo("Browser allocator context created")

	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
		observability.LogDebug(format, args...)
	}))
	c := &Client{ctx: ctx, cancel: cancel, allocCancel: allocCancel, width: opts.Width, height: opts.Height}

	observability.LogInfo("Navigating to %s", opts.URL)
	navCtx, navCancel := context.WithTimeout(ctx, 60*time.Second)
	defer navCancel()
	if err := chromedp.Run(navCtx, chromedp.Navigate(opts.URL)); err != nil {
		observability.LogError("Navigation error: %v", err)
		c.Close()
		return nil, fmt.Errorf("failed to open %s: %w", opts.URL, err)
	}
	observability.LogInfo("Navigation completed successfully")
	return c, nil
}

func (c *Client) valid() error {
	if c.ctx == nil || c.ctx.Err() != nil {
		return fmt.Errorf("browser context is invalid")
	}
	return nil
}

// run executes actions on the tab, bounded by timeout and the caller's ctx.
func (c *Client) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := c.valid(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// Window returns the viewport rect, falling back to the configured size.
func (c *Client) Window(ctx context.Context) (geometry.Rect, error) {
	var size []int
	err := c.run(ctx, 2*time.Second, chromedp.Evaluate(`[window.innerWidth, window.innerHeight]`, &size))
	if err != nil || len(size) != 2 || size[0] <= 0 || size[1] <= 0 {
		if err != nil {
			observability.LogDebug("Viewport query failed: %v", err)
		}
		return geometry.R(0, 0, c.width, c.height), nil
	}
	return geometry.R(0, 0, size[0], size[1]), nil
}

// Capture takes a screenshot of the viewport.
func (c *Client) Capture(ctx context.Context) (*image.RGBA, error) {
	var buf []byte
	if err := c.run(ctx, 5*time.Second, chromedp.CaptureScreenshot(&buf)); err != nil {
		observability.LogDebug("Screenshot failed: %v", err)
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}
	return vision.ToRGBA(img), nil
}

func (c *Client) mouse(ctx context.Context, typ input.MouseType, b dispatch.Button, p geometry.Point) error {
	ev := input.DispatchMouseEvent(typ, float64(p.X), float64(p.Y))
	if typ == input.MousePressed || typ == input.MouseReleased {
		ev = ev.WithButton(mouseButton(b)).WithClickCount(1)
	}
	return c.run(ctx, 2*time.Second, ev)
}

func (c *Client) position() geometry.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

func (c *Client) MoveTo(ctx context.Context, p geometry.Point) error {
	if err := c.mouse(ctx, input.MouseMoved, dispatch.Left, p); err != nil {
		return err
	}
	c.mu.Lock()
	c.pos = p
	c.mu.Unlock()
	return nil
}

func (c *Client) Down(ctx context.Context, b dispatch.Button) error {
	return c.mouse(ctx, input.MousePressed, b, c.position())
}

func (c *Client) Up(ctx context.Context, b dispatch.Button) error {
	return c.mouse(ctx, input.MouseReleased, b, c.position())
}

func (c *Client) KeyDown(ctx context.Context, key string) error {
	k := lookupKey(key)
	ev := input.DispatchKeyEvent(input.KeyDown).
		WithKey(k.key).
		WithCode(k.code).
		WithWindowsVirtualKeyCode(k.vk)
	if k.text != "" {
		ev = ev.WithText(k.text)
	}
	return c.run(ctx, 2*time.Second, ev)
}

func (c *Client) KeyUp(ctx context.Context, key string) error {
	k := lookupKey(key)
	ev := input.DispatchKeyEvent(input.KeyUp).
		WithKey(k.key).
		WithCode(k.code).
		WithWindowsVirtualKeyCode(k.vk)
	return c.run(ctx, 2*time.Second, ev)
}

// Scroll sends wheel events; positive clicks scroll up.
func (c *Client) Scroll(ctx context.Context, clicks int) error {
	p := c.position()
	ev := input.DispatchMouseEvent(input.MouseWheel, float64(p.X), float64(p.Y)).
		WithDeltaX(0).
		WithDeltaY(float64(-clicks * wheelDelta))
	return c.run(ctx, 2*time.Second, ev)
}

// Position returns the last position the cursor was moved to; the page does
// not expose the real cursor.
func (c *Client) Position(ctx context.Context) (geometry.Point, error) {
	return c.position(), ctx.Err()
}

// Close closes the tab and the browser process.
func (c *Client) Close() error {
	observability.LogInfo("Closing browser...")
	if c.cancel != nil {
		c.cancel()
	}
	if c.allocCancel != nil {
		c.allocCancel()
	}
	observability.LogInfo("Browser closed successfully")
	return nil
}
