package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scape-bot/internal/geometry"
	"scape-bot/internal/vision"
)

var red = vision.RGB(255, 0, 0)

// scriptEngine returns queued answers and records the images it saw.
type scriptEngine struct {
	answers []string
	seen    []image.Image
	err     error
}

func (e *scriptEngine) Recognize(_ context.Context, img image.Image, _ Hint) (string, error) {
	e.seen = append(e.seen, img)
	if e.err != nil {
		return "", e.err
	}
	if len(e.answers) == 0 {
		return "", nil
	}
	a := e.answers[0]
	e.answers = e.answers[1:]
	return a, nil
}

func frameWithText(lines ...geometry.Rect) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 10, G: 10, B: 10, A: 255})
		}
	}
	for _, l := range lines {
		// Fake glyphs: vertical bars two pixels apart.
		for x := l.X; x < l.X+l.W; x += 2 {
			for y := l.Y; y < l.Y+l.H; y++ {
				img.SetRGBA(x, y, red.RGBA())
			}
		}
	}
	return img
}

func TestPrepareBinarizesAndScales(t *testing.T) {
	img := frameWithText(geometry.R(10, 10, 9, 11))
	r := NewReader(&scriptEngine{}, 10)

	out := r.Prepare(img, geometry.R(10, 10, 10, 12), Plain12, []vision.Color{red})
	b := out.Bounds()
	// 36/12 = 3x upscale plus 20px padding on each side.
	assert.Equal(t, 10*3+40, b.Dx())
	assert.Equal(t, 12*3+40, b.Dy())

	gray := out.(*image.Gray)
	assert.Equal(t, uint8(255), gray.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), gray.GrayAt(20, 20).Y)
	assert.Equal(t, uint8(255), gray.GrayAt(20+3, 20).Y)
}

func TestExtractSkipsEmptyRegions(t *testing.T) {
	eng := &scriptEngine{answers: []string{"  350 \n"}}
	r := NewReader(eng, 10)
	img := frameWithText(geometry.R(10, 10, 20, 11))

	text, err := r.Extract(context.Background(), img, geometry.R(100, 100, 50, 50), Plain11, []vision.Color{red})
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Empty(t, eng.seen)

	text, err = r.Extract(context.Background(), img, geometry.R(0, 0, 100, 200), Plain11, []vision.Color{red})
	require.NoError(t, err)
	assert.Equal(t, "350", text)
}

func TestExtractErrors(t *testing.T) {
	img := frameWithText(geometry.R(10, 10, 20, 11))

	_, err := NewReader(nil, 10).Extract(context.Background(), img, geometry.Rect{}, Plain11, []vision.Color{red})
	assert.ErrorIs(t, err, ErrNoEngine)

	boom := errors.New("boom")
	_, err = NewReader(&scriptEngine{err: boom}, 10).Extract(context.Background(), img, geometry.Rect{}, Plain11, []vision.Color{red})
	assert.ErrorIs(t, err, boom)
}

func TestFindReturnsMatchingLines(t *testing.T) {
	first := geometry.R(10, 10, 40, 12)
	second := geometry.R(10, 100, 40, 12)
	eng := &scriptEngine{answers: []string{"Chop down Tree", "Attack Goblin (level-2)"}}
	r := NewReader(eng, 10)

	found, err := r.Find(context.Background(), frameWithText(first, second), []string{"attack"}, geometry.Rect{}, Plain12, []vision.Color{red})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, second.Y, found[0].Y)
	assert.Len(t, eng.seen, 2)
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("Cook Fire", []string{"cook"}))
	assert.True(t, ContainsAny("Use Fire", []string{"Cook", "Fire"}))
	assert.False(t, ContainsAny("Walk here", []string{"Attack"}))
	assert.False(t, ContainsAny("anything", nil))
	assert.False(t, ContainsAny("anything", []string{""}))
}
