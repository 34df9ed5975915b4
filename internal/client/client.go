// Package client defines what a game client backend provides: the client
// window geometry, frame capture and low-level input.
//
// Coordinates are shared: the rect returned by Window, the bounds of every
// captured frame and every Input coordinate live in one space, so a point
// found in a frame can be clicked directly.
package client

import (
	"context"
	"image"

	"scape-bot/internal/dispatch"
	"scape-bot/internal/geometry"
)

// Screen captures the client.
type Screen interface {
	// Window returns the client canvas rect.
	Window(ctx context.Context) (geometry.Rect, error)
	// Capture returns the current client frame. Its bounds equal Window.
	Capture(ctx context.Context) (*image.RGBA, error)
}

// Client is a complete backend.
type Client interface {
	Screen
	dispatch.Input
	Close() error
}
