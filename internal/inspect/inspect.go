// Package inspect - inspect.go
//
// Offline detection debugging. Loads a client screenshot, runs the sprite,
// object-marker and text detectors over it, outlines every hit and saves
// the annotated copy.
//
// Usage:
//  1. Save a screenshot of the client area, e.g. shot.png
//  2. Run: scape-bot inspect shot.png --sprite fish_fryer/fishing-spot.png --mark purple
//  3. Check shot.annotated.png and the log for detection details
package inspect

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vcaesar/imgo"

	"scape-bot/internal/geometry"
	"scape-bot/internal/observability"
	"scape-bot/internal/ocr"
	"scape-bot/internal/vision"
)

// Outline colors.
var (
	spriteColor = color.RGBA{R: 255, G: 255, A: 255}
	markColor   = color.RGBA{R: 255, G: 128, A: 255}
	textColor   = color.RGBA{G: 255, B: 128, A: 255}
	layoutColor = color.RGBA{R: 96, G: 96, B: 96, A: 255}
)

// TextQuery asks for the words of one color in one layout region.
type TextQuery struct {
	Region string
	Font   ocr.Font
	Colors []vision.Color
}

// Request describes one inspection.
type Request struct {
	Input  string
	Output string

	Templates *vision.Templates
	Matcher   vision.Matcher
	Sprites   []string

	Finder vision.MarkFinder
	Marks  []vision.Mark

	Reader *ocr.Reader
	Text   []TextQuery

	// DrawLayout outlines the layout regions too.
	DrawLayout bool
}

// Report lists what was detected.
type Report struct {
	Size    geometry.Rect
	Sprites map[string]geometry.Rect
	Marks   map[string][]geometry.Rect
	Text    map[string]string
	Output  string
}

// Regions returns the named layout regions usable in a TextQuery.
func Regions(l geometry.Layout) map[string]geometry.Rect {
	return map[string]geometry.Rect{
		"game":          l.GameView,
		"mouseover":     l.Mouseover,
		"action":        l.CurrentAction,
		"chat":          l.Chat,
		"minimap":       l.Minimap,
		"control-panel": l.ControlPanel,
	}
}

// OutputPath derives the annotated image path for input.
func OutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".annotated.png"
}

// Run performs the inspection. The screenshot is taken to be the client
// area, so the layout is computed over the whole image.
func Run(ctx context.Context, req Request) (*Report, error) {
	observability.LogInfo("=== Inspection Started ===")
	defer observability.NewTimer("inspect").Stop()

	if _, err := os.Stat(req.Input); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	src, err := imgo.Read(req.Input)
	if err != nil || src == nil {
		return nil, fmt.Errorf("read %s: %v", req.Input, err)
	}
	img := vision.ToRGBA(src)
	size := geometry.FromImage(img.Bounds())
	observability.LogInfo("Image loaded: %dx%d", size.W, size.H)

	layout := geometry.NewLayout(size)
	regions := Regions(layout)
	out := vision.Annotate(img, nil, layoutColor, 1)
	rep := &Report{
		Size:    size,
		Sprites: make(map[string]geometry.Rect),
		Marks:   make(map[string][]geometry.Rect),
		Text:    make(map[string]string),
	}

	if req.DrawLayout {
		names := make([]string, 0, len(regions))
		for n := range regions {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			vision.DrawRect(out, regions[n], layoutColor, 1)
		}
	}

	for _, name := range req.Sprites {
		if req.Templates == nil {
			break
		}
		tpl, err := req.Templates.Get(name)
		if err != nil {
			observability.LogWarn("Sprite %s: %v", name, err)
			continue
		}
		r, ok := req.Matcher.Find(img, tpl, geometry.Rect{})
		if !ok {
			observability.LogInfo("Sprite %s: not found", name)
			continue
		}
		observability.LogInfo("Sprite %s: %s", name, r)
		rep.Sprites[name] = r
		vision.DrawRect(out, r, spriteColor, 2)
	}

	for _, mark := range req.Marks {
		if req.Finder == nil {
			break
		}
		found := req.Finder.FindMarks(img, mark, layout.GameView)
		observability.LogInfo("Mark %s: %d found", mark.Name, len(found))
		rep.Marks[mark.Name] = found
		for _, r := range found {
			vision.DrawRect(out, r, markColor, 2)
		}
	}

	for _, query := range req.Text {
		if req.Reader == nil {
			break
		}
		r, ok := regions[query.Region]
		if !ok {
			return nil, fmt.Errorf("unknown region %q", query.Region)
		}
		text, err := req.Reader.Extract(ctx, img, r, query.Font, query.Colors)
		if err != nil {
			observability.LogWarn("Text %s: %v", query.Region, err)
			continue
		}
		observability.LogInfo("Text %s (%s): %q", query.Region, query.Font.Name, text)
		rep.Text[query.Region] = text
		vision.DrawRect(out, r, textColor, 1)
	}

	output := req.Output
	if output == "" {
		output = OutputPath(req.Input)
	}
	if dir := filepath.Dir(output); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if err := imgo.Save(output, image.Image(out)); err != nil {
		return nil, fmt.Errorf("save %s: %w", output, err)
	}
	rep.Output = output
	observability.LogInfo("=== Inspection Completed: %s ===", output)
	return rep, nil
}
