package inspect

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcaesar/imgo"

	"scape-bot/internal/game"
	"scape-bot/internal/geometry"
	"scape-bot/internal/ocr"
	"scape-bot/internal/vision"
)

func sprite() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(10 + x*30), G: uint8(10 + y*40), B: 100, A: 255})
		}
	}
	return img
}

func screenshot(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, geometry.BaseWidth, geometry.BaseHeight))
	for y := 0; y < geometry.BaseHeight; y++ {
		for x := 0; x < geometry.BaseWidth; x++ {
			img.SetRGBA(x, y, color.RGBA{A: 255})
		}
	}
	s := sprite()
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(600+x, 300+y, s.RGBAAt(x, y))
		}
	}
	purple := game.PurpleMark.RGB.RGBA()
	for y := 100; y < 120; y++ {
		for x := 100; x < 120; x++ {
			img.SetRGBA(x, y, purple)
		}
	}
	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, imgo.Save(path, img))
	return path
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "shots/a.annotated.png", OutputPath("shots/a.png"))
	assert.Equal(t, "b.annotated.png", OutputPath("b"))
}

func TestRunFindsSpriteAndMark(t *testing.T) {
	input := screenshot(t)
	tpl := vision.NewTemplates(t.TempDir())
	tpl.Add("test/sprite.png", sprite())

	rep, err := Run(context.Background(), Request{
		Input:      input,
		Templates:  tpl,
		Matcher:    vision.Matcher{ColorTolerance: 10, PixelTolerance: 0.05},
		Sprites:    []string{"test/sprite.png", "test/missing.png"},
		Finder:     vision.ColorMarks{Tolerance: 5, MinArea: 10},
		Marks:      []vision.Mark{game.PurpleMark, game.CyanMark},
		DrawLayout: true,
	})
	require.NoError(t, err)

	assert.Equal(t, geometry.R(0, 0, geometry.BaseWidth, geometry.BaseHeight), rep.Size)
	require.Contains(t, rep.Sprites, "test/sprite.png")
	assert.Equal(t, geometry.Pt(600, 300), rep.Sprites["test/sprite.png"].TopLeft())
	assert.NotContains(t, rep.Sprites, "test/missing.png")

	require.Len(t, rep.Marks["purple"], 1)
	assert.True(t, rep.Marks["purple"][0].Contains(geometry.Pt(110, 110)))
	assert.Empty(t, rep.Marks["cyan"])

	assert.Equal(t, OutputPath(input), rep.Output)
	_, err = os.Stat(rep.Output)
	assert.NoError(t, err)
}

func TestRunRejectsUnknownRegion(t *testing.T) {
	_, err := Run(context.Background(), Request{
		Input:  screenshot(t),
		Reader: ocr.NewReader(nil, 10),
		Text:   []TextQuery{{Region: "bank", Font: ocr.Plain12}},
	})
	assert.ErrorContains(t, err, `unknown region "bank"`)
}

func TestRunMissingInput(t *testing.T) {
	_, err := Run(context.Background(), Request{Input: filepath.Join(t.TempDir(), "nope.png")})
	assert.Error(t, err)
}
