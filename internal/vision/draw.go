package vision

import (
	"image"
	"image/color"
	"image/draw"

	"scape-bot/internal/geometry"
)

// Annotate returns a copy of img with each rect outlined in col.
func Annotate(img image.Image, rects []geometry.Rect, col color.RGBA, thickness int) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	for _, r := range rects {
		DrawRect(out, r, col, thickness)
	}
	return out
}

// DrawRect draws a rectangle outline of the given thickness, clipped to img.
func DrawRect(img *image.RGBA, r geometry.Rect, col color.RGBA, thickness int) {
	b := img.Bounds()
	set := func(x, y int) {
		if (image.Point{X: x, Y: y}).In(b) {
			img.SetRGBA(x, y, col)
		}
	}
	for t := 0; t < thickness; t++ {
		for x := r.X; x < r.X+r.W; x++ {
			set(x, r.Y+t)
			set(x, r.Y+r.H-t-1)
		}
		for y := r.Y; y < r.Y+r.H; y++ {
			set(r.X+t, y)
			set(r.X+r.W-t-1, y)
		}
	}
}
