// Package clienttest provides an in-memory Screen for tests.
package clienttest

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"

	"scape-bot/internal/client"
	"scape-bot/internal/geometry"
)

// Screen serves a mutable frame.
type Screen struct {
	mu     sync.Mutex
	frame  *image.RGBA
	window geometry.Rect
	// Captures counts Capture calls.
	Captures int
	// OnCapture, if set, may repaint the frame before each capture.
	OnCapture func(frame *image.RGBA, n int)
}

var _ client.Screen = (*Screen)(nil)

// NewScreen returns a window of w by h at (x, y) filled with bg.
func NewScreen(x, y, w, h int, bg color.RGBA) *Screen {
	r := image.Rect(x, y, x+w, y+h)
	img := image.NewRGBA(r)
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			img.SetRGBA(px, py, bg)
		}
	}
	return &Screen{frame: img, window: geometry.FromImage(r)}
}

func (s *Screen) Window(context.Context) (geometry.Rect, error) {
	return s.window, nil
}

func (s *Screen) Capture(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Captures++
	if s.OnCapture != nil {
		s.OnCapture(s.frame, s.Captures)
	}
	if s.frame == nil {
		return nil, errors.New("no frame")
	}
	out := image.NewRGBA(s.frame.Rect)
	copy(out.Pix, s.frame.Pix)
	return out, nil
}

// Paint fills r with c.
func (s *Screen) Paint(r geometry.Rect, c color.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			s.frame.SetRGBA(x, y, c)
		}
	}
}

// Draw copies img onto the frame with its top-left at p.
func (s *Screen) Draw(p geometry.Point, img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			s.frame.Set(p.X+x, p.Y+y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
}
