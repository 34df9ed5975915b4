// Package geometry defines screen-space primitives shared by sensors and actuators.
//
// Types:
//   - Point: 2D coordinate with Euclidean distance
//   - Rect: axis-aligned rectangle (top-left + size) with center, containment,
//     growth and randomized interior points
//
// All coordinates are absolute screen pixels unless a doc comment says otherwise.
package geometry

import (
	"fmt"
	"image"
	"math"
	"math/rand"
)

// Point represents a 2D coordinate in screen space.
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Distance calculates Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Rect represents a rectangular area
type Rect struct {
	X int // Top-left X coordinate
	Y int // Top-left Y coordinate
	W int // Width
	H int // Height
}

// R creates a new Rect
func R(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// FromImage converts an image.Rectangle to a Rect.
func FromImage(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Image converts the rect to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// TopLeft returns the top-left corner.
func (r Rect) TopLeft() Point {
	return Point{X: r.X, Y: r.Y}
}

// Center returns the center point of the rect
func (r Rect) Center() Point {
	return Point{
		X: r.X + r.W/2,
		Y: r.Y + r.H/2,
	}
}

// Area returns W*H.
func (r Rect) Area() int {
	return r.W * r.H
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains checks if a point is within the rect. The right and bottom edges
// are exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W &&
		p.Y >= r.Y && p.Y < r.Y+r.H
}

// Grow expands the rect by the given amount in all directions
func (r Rect) Grow(amount int) Rect {
	return Rect{
		X: r.X - amount/2,
		Y: r.Y - amount/2,
		W: r.W + amount,
		H: r.H + amount,
	}
}

// Offset translates the rect by p.
func (r Rect) Offset(p Point) Rect {
	return Rect{X: r.X + p.X, Y: r.Y + p.Y, W: r.W, H: r.H}
}

// Intersect returns the overlap of r and o (zero Rect when disjoint).
func (r Rect) Intersect(o Rect) Rect {
	ir := r.Image().Intersect(o.Image())
	if ir.Empty() {
		return Rect{}
	}
	return FromImage(ir)
}

// Overlaps reports whether r and o share any pixel.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W &&
		r.X+r.W > o.X &&
		r.Y < o.Y+o.H &&
		r.Y+r.H > o.Y
}

// RandomPoint returns a point inside the rect drawn from a normal
// distribution centered on the rect center (sigma = a sixth of each side),
// truncated to the rect. Degenerate rects return their top-left corner.
func (r Rect) RandomPoint(rng *rand.Rand) Point {
	if r.Empty() {
		return r.TopLeft()
	}
	return Point{
		X: r.X + truncatedNormal(rng, r.W),
		Y: r.Y + truncatedNormal(rng, r.H),
	}
}

// truncatedNormal samples an offset in [0, size) around size/2.
func truncatedNormal(rng *rand.Rand, size int) int {
	if size <= 1 {
		return 0
	}
	mean := float64(size-1) / 2
	sigma := float64(size) / 6
	for i := 0; i < 8; i++ {
		v := math.Round(mean + rng.NormFloat64()*sigma)
		if v >= 0 && v < float64(size) {
			return int(v)
		}
	}
	return int(math.Round(mean))
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d %dx%d]", r.X, r.Y, r.W, r.H)
}

// Bounding returns the smallest rect containing all points. Width and height
// are inclusive of both extreme pixels.
func Bounding(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}
}

// Nearest returns the index of the rect whose center is closest to p, or -1.
func Nearest(rects []Rect, p Point) int {
	best := -1
	bestDist := math.MaxFloat64
	for i, r := range rects {
		if d := r.Center().Distance(p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
