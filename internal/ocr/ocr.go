// Package ocr reads game text from screen regions.
//
// Game fonts are small bitmap fonts in flat colors, so text is isolated by
// color before recognition: pixels matching one of the requested text colors
// become black, everything else white. The binarized crop is upscaled with
// nfnt/resize and padded before being handed to the Engine.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/nfnt/resize"

	"scape-bot/internal/geometry"
	"scape-bot/internal/observability"
	"scape-bot/internal/vision"
)

// ErrNoEngine is returned when text recognition is disabled.
var ErrNoEngine = errors.New("ocr engine not configured")

// Font describes a game bitmap font by its glyph height in pixels.
type Font struct {
	Name   string
	Height int
}

// Game fonts.
var (
	Plain11 = Font{Name: "PLAIN_11", Height: 11}
	Plain12 = Font{Name: "PLAIN_12", Height: 12}
	Bold12  = Font{Name: "BOLD_12", Height: 12}
	Quill8  = Font{Name: "QUILL_8", Height: 8}
)

// Hint tunes a single recognition call.
type Hint struct {
	Whitelist  string
	SingleLine bool
}

// Engine recognizes text in a prepared black-on-white image.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, hint Hint) (string, error)
}

// targetHeight is the glyph height the engine reads most reliably.
const (
	targetHeight = 36
	padding      = 20
)

// Reader prepares crops and runs an Engine over them.
type Reader struct {
	engine    Engine
	tolerance uint8
}

// NewReader returns a Reader. A nil engine makes every read fail with
// ErrNoEngine.
func NewReader(engine Engine, tolerance uint8) *Reader {
	return &Reader{engine: engine, tolerance: tolerance}
}

// Prepare binarizes rect of img by colors, scales it for font and pads it.
func (r *Reader) Prepare(img *image.RGBA, rect geometry.Rect, font Font, colors []vision.Color) image.Image {
	mask := vision.ColorMask(img, rect, colors, r.tolerance)
	b := mask.Bounds
	bin := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := color.White
			if mask.At(x, y) {
				v = color.Black
			}
			bin.Set(x-b.Min.X, y-b.Min.Y, v)
		}
	}

	scale := 1
	if font.Height > 0 && font.Height < targetHeight {
		scale = (targetHeight + font.Height - 1) / font.Height
	}
	var scaled image.Image = bin
	if scale > 1 && b.Dx() > 0 && b.Dy() > 0 {
		scaled = resize.Resize(uint(b.Dx()*scale), uint(b.Dy()*scale), bin, resize.NearestNeighbor)
	}

	sb := scaled.Bounds()
	out := image.NewGray(image.Rect(0, 0, sb.Dx()+2*padding, sb.Dy()+2*padding))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(out, sb.Sub(sb.Min).Add(image.Pt(padding, padding)), scaled, sb.Min, draw.Src)
	return out
}

// Extract returns the text of the given colors inside rect, trimmed. An
// empty string means no text was found.
func (r *Reader) Extract(ctx context.Context, img *image.RGBA, rect geometry.Rect, font Font, colors []vision.Color) (string, error) {
	if r.engine == nil {
		return "", ErrNoEngine
	}
	if vision.Count(img, rect, colors, r.tolerance) == 0 {
		return "", nil
	}
	text, err := r.engine.Recognize(ctx, r.Prepare(img, rect, font, colors), Hint{SingleLine: true})
	if err != nil {
		return "", fmt.Errorf("failed to recognize text in %s: %w", rect, err)
	}
	return strings.TrimSpace(text), nil
}

// Find returns the rects of text lines inside rect whose text contains any
// of words (case-insensitive).
func (r *Reader) Find(ctx context.Context, img *image.RGBA, words []string, rect geometry.Rect, font Font, colors []vision.Color) ([]geometry.Rect, error) {
	if r.engine == nil {
		return nil, ErrNoEngine
	}
	points := vision.Scan(img, rect, colors, r.tolerance)
	// Glyphs on one line sit within half a glyph of each other.
	lines := vision.Cluster(points, max(font.Height/2, 2), max(font.Height/3, 2))

	var found []geometry.Rect
	for _, line := range lines {
		if line.H < 3 {
			continue
		}
		text, err := r.Extract(ctx, img, line.Grow(1), font, colors)
		if err != nil {
			return found, err
		}
		if ContainsAny(text, words) {
			observability.LogDebug("OCR match %q at %s", text, line)
			found = append(found, line)
		}
	}
	return found, nil
}

// ContainsAny reports whether text contains any of words, ignoring case.
// An empty words list never matches.
func ContainsAny(text string, words []string) bool {
	lower := strings.ToLower(text)
	for _, w := range words {
		if w != "" && strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}
