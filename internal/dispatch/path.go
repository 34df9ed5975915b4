package dispatch

import (
	"math"

	"scape-bot/internal/geometry"
)

// EaseInOutQuad maps t in [0, 1] onto an accelerate-then-decelerate curve.
func EaseInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

// Path returns the intermediate points from 'from' to 'to' in at most steps
// moves. The last point is always 'to'; consecutive duplicates are dropped.
func Path(from, to geometry.Point, steps int) []geometry.Point {
	if steps < 1 {
		steps = 1
	}
	dist := from.Distance(to)
	if dist < 1 {
		return []geometry.Point{to}
	}
	// Short hops do not need every step.
	if n := int(math.Ceil(dist / 2)); n < steps {
		steps = n
	}
	out := make([]geometry.Point, 0, steps)
	last := from
	for i := 1; i <= steps; i++ {
		e := EaseInOutQuad(float64(i) / float64(steps))
		p := geometry.Point{
			X: from.X + int(math.Round(float64(to.X-from.X)*e)),
			Y: from.Y + int(math.Round(float64(to.Y-from.Y)*e)),
		}
		if p == last {
			continue
		}
		out = append(out, p)
		last = p
	}
	if len(out) == 0 || out[len(out)-1] != to {
		out = append(out, to)
	}
	return out
}
