package cmd

import (
	"context"
	"fmt"

	"scape-bot/internal/client"
	"scape-bot/internal/client/browser"
	"scape-bot/internal/client/desktop"
	"scape-bot/internal/config"
	"scape-bot/internal/ocr"
	"scape-bot/internal/ocr/tesseract"
	"scape-bot/internal/vision"
	"scape-bot/internal/vision/cv"
)

// openClient attaches to the configured game client.
func openClient(ctx context.Context, cfg *config.Config) (client.Client, error) {
	switch cfg.Client.Backend {
	case config.BackendBrowser:
		c, err := browser.Start(browser.Options{
			URL:      cfg.Client.URL,
			Width:    cfg.Client.Width,
			Height:   cfg.Client.Height,
			Headless: cfg.Client.Headless,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.BackendDesktop:
		c, err := desktop.Open(ctx, cfg.Client.WindowTitle)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown client backend %q", cfg.Client.Backend)
}

// markFinder returns the configured object-marker detector.
func markFinder(cfg *config.Config) vision.MarkFinder {
	if cfg.Vision.Backend == config.VisionOpenCV {
		return cv.Marks{MinArea: cfg.Vision.MinMarkArea}
	}
	return vision.ColorMarks{Tolerance: uint8(min(max(cfg.Vision.ColorTolerance, 0), 255)), MinArea: cfg.Vision.MinMarkArea}
}

// ocrEngine returns the text engine and its release function. A nil engine
// means text recognition is disabled.
func ocrEngine(cfg *config.Config) (ocr.Engine, func()) {
	if !cfg.OCR.Enabled {
		return nil, func() {}
	}
	e := tesseract.New(cfg.OCR.Language)
	return e, func() { _ = e.Close() }
}
