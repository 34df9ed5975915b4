// Package vision - color.go
//
// Pixel-level sensors over captured client frames.
//
// Key Responsibilities:
//   - Color matching with per-channel tolerance
//   - Region scans returning matching pixel coordinates
//   - Binary masks for connected-component search
//
// All scans clip the requested region to the image bounds, so callers can
// pass layout rects without checking them against the frame first.
package vision

import (
	"image"
	"image/color"
	"image/draw"

	"scape-bot/internal/geometry"
)

// Color is an opaque RGB color.
type Color struct {
	R, G, B uint8
}

// RGB creates a Color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// RGBA converts c to an opaque color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Matches reports whether px is within tolerance of c on every channel.
// Pixels that are mostly transparent never match.
func (c Color) Matches(px color.RGBA, tolerance uint8) bool {
	if px.A < 250 {
		return false
	}
	return absDiff(px.R, c.R) <= tolerance &&
		absDiff(px.G, c.G) <= tolerance &&
		absDiff(px.B, c.B) <= tolerance
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// ToRGBA returns img as *image.RGBA, copying only when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba
}

// clip intersects region with the image bounds.
func clip(img *image.RGBA, region geometry.Rect) image.Rectangle {
	if region.Empty() {
		return img.Bounds()
	}
	return region.Image().Intersect(img.Bounds())
}

// Scan returns every pixel in region matching any of colors. An empty
// region scans the whole image.
func Scan(img *image.RGBA, region geometry.Rect, colors []Color, tolerance uint8) []geometry.Point {
	var points []geometry.Point
	r := clip(img, region)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := img.RGBAAt(x, y)
			for _, target := range colors {
				if target.Matches(c, tolerance) {
					points = append(points, geometry.Point{X: x, Y: y})
					break
				}
			}
		}
	}
	return points
}

// Count returns how many pixels in region match any of colors.
func Count(img *image.RGBA, region geometry.Rect, colors []Color, tolerance uint8) int {
	return len(Scan(img, region, colors, tolerance))
}

// Mask is a binary image over a region of a frame.
type Mask struct {
	Bounds image.Rectangle
	bits   []bool
}

// NewMask returns an empty mask over r.
func NewMask(r image.Rectangle) *Mask {
	return &Mask{Bounds: r, bits: make([]bool, r.Dx()*r.Dy())}
}

func (m *Mask) index(x, y int) int {
	return (y-m.Bounds.Min.Y)*m.Bounds.Dx() + (x - m.Bounds.Min.X)
}

// Set marks (x, y). Points outside the mask are ignored.
func (m *Mask) Set(x, y int) {
	if (image.Point{X: x, Y: y}).In(m.Bounds) {
		m.bits[m.index(x, y)] = true
	}
}

// At reports whether (x, y) is set.
func (m *Mask) At(x, y int) bool {
	if !(image.Point{X: x, Y: y}).In(m.Bounds) {
		return false
	}
	return m.bits[m.index(x, y)]
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// ColorMask marks every pixel in region matching any of colors.
func ColorMask(img *image.RGBA, region geometry.Rect, colors []Color, tolerance uint8) *Mask {
	m := NewMask(clip(img, region))
	for _, p := range Scan(img, region, colors, tolerance) {
		m.Set(p.X, p.Y)
	}
	return m
}
