// Package session - sensors.go
//
// This file implements the sensor helpers bots use to look at the client:
// template sprites, marked objects, OCR text and the status feed.
//
// Sensor misses are normal results. Capture and OCR failures are logged at
// debug level and reported as "not found" so a bot loop can retry on the
// next pass.
package session

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vcaesar/imgo"

	"scape-bot/internal/geometry"
	"scape-bot/internal/observability"
	"scape-bot/internal/ocr"
	"scape-bot/internal/poll"
	"scape-bot/internal/status"
	"scape-bot/internal/vision"
)

// Capture grabs the current client frame.
func (s *Session) Capture(ctx context.Context) (*image.RGBA, error) {
	return s.caps.Screen.Capture(ctx)
}

func (s *Session) frame(ctx context.Context) *image.RGBA {
	img, err := s.Capture(ctx)
	if err != nil {
		observability.LogDebug("Capture failed: %v", err)
		return nil
	}
	return img
}

// FindSprite searches rect for the named template.
func (s *Session) FindSprite(ctx context.Context, name string, rect geometry.Rect) (geometry.Rect, bool) {
	tpl, err := s.templates.Get(name)
	if err != nil {
		return geometry.Rect{}, false
	}
	img := s.frame(ctx)
	if img == nil {
		return geometry.Rect{}, false
	}
	r, ok := s.matcher.Find(img, tpl, rect)
	if !ok {
		s.dumpMiss(name, img, rect)
	}
	return r, ok
}

// dumpMiss saves the searched frame with the search area outlined when
// vision.debug_dir is set.
func (s *Session) dumpMiss(name string, img *image.RGBA, rect geometry.Rect) {
	dir := s.cfg.Vision.DebugDir
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		observability.LogDebug("Debug dir unavailable: %v", err)
		return
	}
	file := fmt.Sprintf("%s-%s.png", strings.NewReplacer("/", "_", ".png", "").Replace(name), s.clock.Now().Format("20060102-150405.000"))
	out := vision.Annotate(img, []geometry.Rect{rect}, color.RGBA{R: 255, A: 255}, 1)
	if err := imgo.Save(filepath.Join(dir, file), out); err != nil {
		observability.LogDebug("Failed to save debug frame: %v", err)
	}
}

// Marked returns every object outlined in mark inside rect, largest first.
func (s *Session) Marked(ctx context.Context, mark vision.Mark, rect geometry.Rect) []geometry.Rect {
	img := s.frame(ctx)
	if img == nil {
		return nil
	}
	return s.marks.FindMarks(img, mark, rect)
}

// NearestMarked returns the object outlined in mark closest to the player,
// who stands at the center of the game view.
func (s *Session) NearestMarked(ctx context.Context, mark vision.Mark, rect geometry.Rect) (geometry.Rect, bool) {
	return vision.NearestMark(s.Marked(ctx, mark, rect), s.layout.GameView.Center())
}

// FindMarkedWithText hovers the nearest object outlined in mark until the
// mouseover text contains any of texts, making at most retries attempts one
// second apart.
func (s *Session) FindMarkedWithText(ctx context.Context, mark vision.Mark, texts []string, colors []vision.Color, retries int) (geometry.Rect, bool) {
	res := poll.Retry(ctx, s.poller, max(retries, 1), time.Second, func(ctx context.Context) (geometry.Rect, bool) {
		r, ok := s.NearestMarked(ctx, mark, s.layout.GameView)
		if !ok {
			return r, false
		}
		s.input.MoveInto(ctx, r)
		return r, s.MouseoverText(ctx, texts, colors)
	})
	return res.Value, res.Found
}

// ReadText returns the text drawn in colors inside rect.
func (s *Session) ReadText(ctx context.Context, rect geometry.Rect, font ocr.Font, colors []vision.Color) string {
	img := s.frame(ctx)
	if img == nil {
		return ""
	}
	text, err := s.reader.Extract(ctx, img, rect, font, colors)
	if err != nil {
		observability.LogDebug("ReadText %s: %v", rect, err)
		return ""
	}
	return text
}

// FindText returns the lines inside rect, drawn in colors, that contain any
// of words.
func (s *Session) FindText(ctx context.Context, words []string, rect geometry.Rect, font ocr.Font, colors []vision.Color) []geometry.Rect {
	img := s.frame(ctx)
	if img == nil {
		return nil
	}
	found, err := s.reader.Find(ctx, img, words, rect, font, colors)
	if err != nil {
		observability.LogDebug("FindText %v in %s: %v", words, rect, err)
	}
	return found
}

// MouseoverText reports whether the hover text contains any of texts.
func (s *Session) MouseoverText(ctx context.Context, texts []string, colors []vision.Color) bool {
	return ocr.ContainsAny(s.ReadText(ctx, s.layout.Mouseover, ocr.Bold12, colors), texts)
}

// IsDoing reports whether the skilling overlay names action.
func (s *Session) IsDoing(ctx context.Context, action string, colors []vision.Color) bool {
	return ocr.ContainsAny(s.ReadText(ctx, s.layout.CurrentAction, ocr.Plain12, colors), []string{action})
}

// Snapshot returns the latest game state from the status feed.
func (s *Session) Snapshot(ctx context.Context) (status.Snapshot, error) {
	if s.caps.Status == nil {
		return status.Snapshot{}, status.ErrNoSnapshot
	}
	return s.caps.Status.Snapshot(ctx)
}
