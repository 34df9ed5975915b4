package vision

import (
	"image"
	"sort"

	"scape-bot/internal/geometry"
)

// Cluster groups points into bounding rects: first into runs along X whose
// gaps are at most distanceX, then each run into runs along Y whose gaps are
// at most distanceY. It suits horizontal text lines, where glyphs on a line
// are close together horizontally.
func Cluster(points []geometry.Point, distanceX, distanceY int) []geometry.Rect {
	if len(points) == 0 {
		return nil
	}
	sorted := append([]geometry.Point(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var xClusters [][]geometry.Point
	current := []geometry.Point{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].X-sorted[i-1].X <= distanceX {
			current = append(current, sorted[i])
		} else {
			xClusters = append(xClusters, current)
			current = []geometry.Point{sorted[i]}
		}
	}
	xClusters = append(xClusters, current)

	var rects []geometry.Rect
	for _, xc := range xClusters {
		sort.SliceStable(xc, func(i, j int) bool { return xc[i].Y < xc[j].Y })
		yc := []geometry.Point{xc[0]}
		for i := 1; i < len(xc); i++ {
			if xc[i].Y-xc[i-1].Y <= distanceY {
				yc = append(yc, xc[i])
			} else {
				rects = append(rects, geometry.Bounding(yc))
				yc = []geometry.Point{xc[i]}
			}
		}
		rects = append(rects, geometry.Bounding(yc))
	}
	return rects
}

// Blobs returns the bounding rects of the 8-connected components of m,
// ordered by their top-left corner (row-major).
func Blobs(m *Mask) []geometry.Rect {
	seen := make([]bool, len(m.bits))
	var rects []geometry.Rect
	var stack []image.Point
	b := m.Bounds
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := m.index(x, y)
			if !m.bits[i] || seen[i] {
				continue
			}
			seen[i] = true
			stack = append(stack[:0], image.Point{X: x, Y: y})
			minX, minY, maxX, maxY := x, y, x, y
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				minX, maxX = min(minX, p.X), max(maxX, p.X)
				minY, maxY = min(minY, p.Y), max(maxY, p.Y)
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := p.X+dx, p.Y+dy
						if !m.At(nx, ny) {
							continue
						}
						j := m.index(nx, ny)
						if !seen[j] {
							seen[j] = true
							stack = append(stack, image.Point{X: nx, Y: ny})
						}
					}
				}
			}
			rects = append(rects, geometry.Rect{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1})
		}
	}
	return rects
}
