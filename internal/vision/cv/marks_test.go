package cv

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scape-bot/internal/geometry"
	"scape-bot/internal/vision"
)

var purpleMark = vision.Mark{
	Name:   "purple",
	RGB:    vision.RGB(170, 0, 255),
	HSVLow: [3]float64{130, 200, 200},
	HSVHi:  [3]float64{145, 255, 255},
}

func frame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 200, 150))
	bg := color.RGBA{R: 40, G: 60, B: 30, A: 255}
	for y := 0; y < 150; y++ {
		for x := 0; x < 200; x++ {
			img.SetRGBA(x, y, bg)
		}
	}
	outline := func(r geometry.Rect) {
		for x := r.X; x < r.X+r.W; x++ {
			img.SetRGBA(x, r.Y, purpleMark.RGB.RGBA())
			img.SetRGBA(x, r.Y+r.H-1, purpleMark.RGB.RGBA())
		}
		for y := r.Y; y < r.Y+r.H; y++ {
			img.SetRGBA(r.X, y, purpleMark.RGB.RGBA())
			img.SetRGBA(r.X+r.W-1, y, purpleMark.RGB.RGBA())
		}
	}
	outline(geometry.R(20, 20, 40, 30))
	outline(geometry.R(120, 90, 20, 20))
	return img
}

func TestMarksMatchesPixelFinder(t *testing.T) {
	img := frame()
	got := Marks{MinArea: 50}.FindMarks(img, purpleMark, geometry.Rect{})
	want := vision.ColorMarks{Tolerance: 5, MinArea: 50}.FindMarks(img, purpleMark, geometry.Rect{})
	require.Len(t, got, 2)
	assert.Equal(t, want, got)
}

func TestMarksRespectsRegion(t *testing.T) {
	got := Marks{MinArea: 50}.FindMarks(frame(), purpleMark, geometry.R(100, 80, 100, 70))
	require.Len(t, got, 1)
	assert.Equal(t, geometry.R(120, 90, 20, 20), got[0])
}
