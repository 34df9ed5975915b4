package vision

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/vcaesar/imgo"

	"scape-bot/internal/geometry"
	"scape-bot/internal/observability"
)

// ErrTemplateNotFound is returned when a template image cannot be loaded.
var ErrTemplateNotFound = errors.New("template not found")

// Matcher finds a template inside a frame.
//
// A position matches when at most PixelTolerance (fraction) of the template's
// opaque pixels differ from the frame by more than ColorTolerance, where the
// difference of a pixel is the sum of its absolute channel differences
// divided by three. Template pixels with alpha below 128 are ignored.
type Matcher struct {
	ColorTolerance int
	PixelTolerance float64
}

// Find scans area top-to-bottom, left-to-right and returns the rect of the
// first match. An empty area searches the whole frame.
func (m Matcher) Find(frame, tpl image.Image, area geometry.Rect) (geometry.Rect, bool) {
	src := ToRGBA(frame)
	t := ToRGBA(tpl)
	tb := t.Bounds()
	if tb.Empty() {
		return geometry.Rect{}, false
	}

	type px struct {
		dx, dy  int
		r, g, b int
	}
	opaque := make([]px, 0, tb.Dx()*tb.Dy())
	for y := tb.Min.Y; y < tb.Max.Y; y++ {
		for x := tb.Min.X; x < tb.Max.X; x++ {
			c := t.RGBAAt(x, y)
			if c.A < 128 {
				continue
			}
			opaque = append(opaque, px{dx: x - tb.Min.X, dy: y - tb.Min.Y, r: int(c.R), g: int(c.G), b: int(c.B)})
		}
	}
	if len(opaque) == 0 {
		return geometry.Rect{}, false
	}
	maxMisses := int(float64(len(opaque)) * m.PixelTolerance)

	search := clip(src, area)
	for y := search.Min.Y; y+tb.Dy() <= search.Max.Y; y++ {
		for x := search.Min.X; x+tb.Dx() <= search.Max.X; x++ {
			misses := 0
			for _, p := range opaque {
				c := src.RGBAAt(x+p.dx, y+p.dy)
				diff := abs(int(c.R)-p.r) + abs(int(c.G)-p.g) + abs(int(c.B)-p.b)
				if diff > 3*m.ColorTolerance {
					misses++
					if misses > maxMisses {
						break
					}
				}
			}
			if misses <= maxMisses {
				return geometry.Rect{X: x, Y: y, W: tb.Dx(), H: tb.Dy()}, true
			}
		}
	}
	return geometry.Rect{}, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Templates loads and caches template images from a directory. Names are
// slash-separated paths relative to the directory, e.g.
// "fish_fryer/fishing-spot.png". A template that fails to load is reported
// once and stays missing until Add registers it.
type Templates struct {
	dir     string
	mu      sync.Mutex
	cache   map[string]image.Image
	missing map[string]bool
}

// NewTemplates returns a template library rooted at dir.
func NewTemplates(dir string) *Templates {
	return &Templates{dir: dir, cache: make(map[string]image.Image), missing: make(map[string]bool)}
}

// Add registers an in-memory template under name.
func (t *Templates) Add(name string, img image.Image) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache[name] = img
	delete(t.missing, name)
}

// Get returns the named template, loading it on first use.
func (t *Templates) Get(name string) (image.Image, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if img, ok := t.cache[name]; ok {
		return img, nil
	}
	if t.missing[name] {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	path := filepath.Join(t.dir, filepath.FromSlash(name))
	img, err := imgo.Read(path)
	if err != nil || img == nil {
		observability.LogWarn("Template %s could not be read: %v", path, err)
		t.missing[name] = true
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	t.cache[name] = img
	return img, nil
}
