// Package tesseract adapts gosseract to the ocr.Engine interface.
package tesseract

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"

	"github.com/otiai10/gosseract"

	"scape-bot/internal/ocr"
)

// Engine runs Tesseract through a single gosseract client. Calls are
// serialized because the client is not safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	client   *gosseract.Client
	language string
}

var _ ocr.Engine = (*Engine)(nil)

// New creates an Engine for language (e.g. "eng").
func New(language string) *Engine {
	c := gosseract.NewClient()
	if language != "" {
		c.SetLanguage(language)
	}
	return &Engine{client: c, language: language}
}

// Recognize writes img to a temporary PNG and returns the recognized text.
func (e *Engine) Recognize(ctx context.Context, img image.Image, hint ocr.Hint) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "scape-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp image: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to encode temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write temp image: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.client.SetImage(path)
	e.client.SetWhitelist(hint.Whitelist)
	if hint.SingleLine {
		e.client.SetPageSegMode(gosseract.PSM_SINGLE_LINE)
	} else {
		e.client.SetPageSegMode(gosseract.PSM_AUTO)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return text, nil
}

// Close releases the Tesseract client.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}
