package vision

import (
	"image"
	"sort"

	"scape-bot/internal/geometry"
)

// Mark describes an object-marker highlight color. RGB is used by the pixel
// finder; the HSV range (OpenCV scale: H 0-180, S and V 0-255) by the
// OpenCV finder.
type Mark struct {
	Name   string
	RGB    Color
	HSVLow [3]float64
	HSVHi  [3]float64
}

// MarkFinder locates highlighted objects in a frame.
type MarkFinder interface {
	FindMarks(img *image.RGBA, mark Mark, region geometry.Rect) []geometry.Rect
}

// ColorMarks finds marks by exact-ish RGB match and connected components.
type ColorMarks struct {
	Tolerance uint8
	// MinArea drops components whose bounding rect is smaller, which filters
	// stray pixels of the same color.
	MinArea int
}

var _ MarkFinder = ColorMarks{}

// FindMarks returns mark outlines in region, largest first.
func (f ColorMarks) FindMarks(img *image.RGBA, mark Mark, region geometry.Rect) []geometry.Rect {
	blobs := Blobs(ColorMask(img, region, []Color{mark.RGB}, f.Tolerance))
	out := blobs[:0]
	for _, b := range blobs {
		if b.Area() >= f.MinArea {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Area() > out[j].Area() })
	return out
}

// NearestMark returns the mark whose center is closest to p.
func NearestMark(marks []geometry.Rect, p geometry.Point) (geometry.Rect, bool) {
	i := geometry.Nearest(marks, p)
	if i < 0 {
		return geometry.Rect{}, false
	}
	return marks[i], true
}
