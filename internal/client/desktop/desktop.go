// Package desktop drives a native game client window with robotgo and
// captures it with kbinani/screenshot.
package desktop

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"

	"scape-bot/internal/client"
	"scape-bot/internal/dispatch"
	"scape-bot/internal/geometry"
	"scape-bot/internal/observability"
)

// Client is a native window located by its title.
type Client struct {
	title string
	pid   int
}

var _ client.Client = (*Client)(nil)

// Open finds the first process whose window title contains title and brings
// it to the front.
func Open(ctx context.Context, title string) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pids, err := robotgo.FindIds(title)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	for _, pid := range pids {
		if !strings.Contains(robotgo.GetTitle(pid), title) {
			continue
		}
		c := &Client{title: title, pid: pid}
		if err := robotgo.ActivePid(pid); err != nil {
			observability.LogWarn("Could not focus %q (pid %d): %v", title, pid, err)
		}
		observability.LogInfo("Found client window %q (pid %d)", title, pid)
		return c, nil
	}
	return nil, fmt.Errorf("no window titled %q found", title)
}

// Window returns the window rect in screen coordinates.
func (c *Client) Window(ctx context.Context) (geometry.Rect, error) {
	if err := ctx.Err(); err != nil {
		return geometry.Rect{}, err
	}
	x, y, w, h := robotgo.GetBounds(c.pid)
	if w <= 0 || h <= 0 {
		return geometry.Rect{}, fmt.Errorf("window %q has no size", c.title)
	}
	return geometry.R(x, y, w, h), nil
}

// Capture grabs the window area of the screen.
func (c *Client) Capture(ctx context.Context) (*image.RGBA, error) {
	win, err := c.Window(ctx)
	if err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(win.Image())
	if err != nil {
		return nil, fmt.Errorf("failed to capture window: %w", err)
	}
	// Shift the frame into screen coordinates.
	img.Rect = image.Rect(win.X, win.Y, win.X+img.Rect.Dx(), win.Y+img.Rect.Dy())
	return img, nil
}

func (c *Client) MoveTo(ctx context.Context, p geometry.Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	robotgo.Move(p.X, p.Y)
	return nil
}

func (c *Client) Down(ctx context.Context, b dispatch.Button) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return robotgo.Toggle(b.String())
}

func (c *Client) Up(ctx context.Context, b dispatch.Button) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return robotgo.Toggle(b.String(), "up")
}

func (c *Client) KeyDown(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return robotgo.KeyToggle(key)
}

func (c *Client) KeyUp(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return robotgo.KeyToggle(key, "up")
}

func (c *Client) Scroll(ctx context.Context, clicks int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	robotgo.Scroll(0, clicks)
	return nil
}

func (c *Client) Position(ctx context.Context) (geometry.Point, error) {
	if err := ctx.Err(); err != nil {
		return geometry.Point{}, err
	}
	x, y := robotgo.Location()
	return geometry.Pt(x, y), nil
}

// Close is a no-op; the window belongs to the user.
func (c *Client) Close() error { return nil }
