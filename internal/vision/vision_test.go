package vision

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcaesar/imgo"

	"scape-bot/internal/geometry"
)

var purple = RGB(170, 0, 255)

func blank(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 20, 30, 40, 255
	}
	return img
}

func fill(img *image.RGBA, r geometry.Rect, c Color) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			img.SetRGBA(x, y, c.RGBA())
		}
	}
}

func TestColorMatches(t *testing.T) {
	c := RGB(100, 100, 100)
	assert.True(t, c.Matches(color.RGBA{R: 105, G: 95, B: 100, A: 255}, 5))
	assert.False(t, c.Matches(color.RGBA{R: 106, G: 100, B: 100, A: 255}, 5))
	assert.False(t, c.Matches(color.RGBA{R: 100, G: 100, B: 100, A: 10}, 5))
}

func TestScanClipsRegion(t *testing.T) {
	img := blank(50, 50)
	fill(img, geometry.R(45, 45, 5, 5), purple)

	pts := Scan(img, geometry.R(40, 40, 100, 100), []Color{purple}, 0)
	assert.Len(t, pts, 25)
	assert.Equal(t, 25, Count(img, geometry.Rect{}, []Color{purple}, 0))
	assert.Empty(t, Scan(img, geometry.R(0, 0, 10, 10), []Color{purple}, 0))
}

func TestClusterSplitsTextLines(t *testing.T) {
	var pts []geometry.Point
	for x := 10; x < 40; x += 2 {
		pts = append(pts, geometry.Pt(x, 10), geometry.Pt(x, 40))
	}
	pts = append(pts, geometry.Pt(200, 10))

	rects := Cluster(pts, 5, 3)
	require.Len(t, rects, 3)
	assert.Contains(t, rects, geometry.R(10, 10, 29, 1))
	assert.Contains(t, rects, geometry.R(10, 40, 29, 1))
	assert.Contains(t, rects, geometry.R(200, 10, 1, 1))
	assert.Nil(t, Cluster(nil, 1, 1))
}

func TestBlobsFollowOutlines(t *testing.T) {
	img := blank(100, 100)
	// Hollow outline: one component.
	outline := geometry.R(10, 10, 30, 20)
	fill(img, geometry.R(10, 10, 30, 1), purple)
	fill(img, geometry.R(10, 29, 30, 1), purple)
	fill(img, geometry.R(10, 10, 1, 20), purple)
	fill(img, geometry.R(39, 10, 1, 20), purple)
	// A separate small square.
	fill(img, geometry.R(70, 70, 3, 3), purple)

	blobs := Blobs(ColorMask(img, geometry.Rect{}, []Color{purple}, 0))
	require.Len(t, blobs, 2)
	assert.Equal(t, outline, blobs[0])
	assert.Equal(t, geometry.R(70, 70, 3, 3), blobs[1])
}

func TestColorMarksFiltersSmallBlobs(t *testing.T) {
	img := blank(200, 200)
	fill(img, geometry.R(100, 100, 20, 20), purple)
	fill(img, geometry.R(10, 10, 10, 10), purple)
	fill(img, geometry.R(150, 20, 2, 2), purple)

	f := ColorMarks{Tolerance: 10, MinArea: 50}
	marks := f.FindMarks(img, Mark{Name: "purple", RGB: purple}, geometry.Rect{})
	require.Len(t, marks, 2)
	assert.Equal(t, geometry.R(100, 100, 20, 20), marks[0])

	near, ok := NearestMark(marks, geometry.Pt(0, 0))
	require.True(t, ok)
	assert.Equal(t, geometry.R(10, 10, 10, 10), near)

	_, ok = NearestMark(nil, geometry.Pt(0, 0))
	assert.False(t, ok)
}

func checker(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(((x + y) % 3) * 100)
			img.SetRGBA(x, y, color.RGBA{R: v, G: 255 - v, B: v / 2, A: 255})
		}
	}
	return img
}

func TestMatcherFindsTemplate(t *testing.T) {
	frame := blank(120, 80)
	tpl := checker(8, 6)
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			frame.SetRGBA(60+x, 30+y, tpl.RGBAAt(x, y))
		}
	}
	m := Matcher{ColorTolerance: 10, PixelTolerance: 0.05}

	r, ok := m.Find(frame, tpl, geometry.Rect{})
	require.True(t, ok)
	assert.Equal(t, geometry.R(60, 30, 8, 6), r)

	_, ok = m.Find(frame, tpl, geometry.R(0, 0, 50, 50))
	assert.False(t, ok)

	// Three corrupted pixels exceed 5% of 48 but not 10%.
	frame.SetRGBA(61, 31, color.RGBA{A: 255})
	frame.SetRGBA(62, 32, color.RGBA{A: 255})
	frame.SetRGBA(63, 33, color.RGBA{A: 255})
	_, ok = m.Find(frame, tpl, geometry.Rect{})
	assert.False(t, ok)
	loose := Matcher{ColorTolerance: 10, PixelTolerance: 0.1}
	r, ok = loose.Find(frame, tpl, geometry.Rect{})
	require.True(t, ok)
	assert.Equal(t, geometry.R(60, 30, 8, 6), r)
}

func TestMatcherIgnoresTransparentTemplatePixels(t *testing.T) {
	frame := blank(40, 40)
	fill(frame, geometry.R(10, 10, 4, 4), purple)
	tpl := image.NewRGBA(image.Rect(0, 0, 6, 6))
	fill(tpl, geometry.R(1, 1, 4, 4), purple)

	r, ok := Matcher{ColorTolerance: 5}.Find(frame, tpl, geometry.Rect{})
	require.True(t, ok)
	assert.Equal(t, geometry.R(9, 9, 6, 6), r)
}

func TestTemplatesLoadAndCache(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, imgo.Save(filepath.Join(dir, "spot.png"), checker(4, 4)))

	lib := NewTemplates(dir)
	img, err := lib.Get("spot.png")
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	_, err = lib.Get("missing.png")
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	// A miss is remembered; the file is not read again.
	require.NoError(t, imgo.Save(filepath.Join(dir, "missing.png"), checker(3, 3)))
	_, err = lib.Get("missing.png")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	lib.Add("missing.png", checker(3, 3))
	img, err = lib.Get("missing.png")
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())

	lib.Add("mem", checker(2, 2))
	img, err = lib.Get("mem")
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dy())
}

func TestAnnotate(t *testing.T) {
	img := blank(20, 20)
	red := color.RGBA{R: 255, A: 255}
	out := Annotate(img, []geometry.Rect{geometry.R(5, 5, 10, 10)}, red, 1)
	assert.Equal(t, red, out.RGBAAt(5, 5))
	assert.Equal(t, red, out.RGBAAt(14, 14))
	assert.NotEqual(t, red, out.RGBAAt(10, 10))
	assert.NotEqual(t, red, img.RGBAAt(5, 5))
}
