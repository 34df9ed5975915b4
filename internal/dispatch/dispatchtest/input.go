// Package dispatchtest provides a recording Input for tests.
package dispatchtest

import (
	"context"
	"fmt"
	"sync"

	"scape-bot/internal/dispatch"
	"scape-bot/internal/geometry"
)

// Input records every actuator call. Moves update the reported position.
type Input struct {
	mu     sync.Mutex
	pos    geometry.Point
	events []string
	clicks []geometry.Point
	// Err, if set, is returned by every call.
	Err error
	// OnClick runs after every button release with the click position.
	OnClick func(b dispatch.Button, p geometry.Point)
	// OnKey runs after every key release.
	OnKey func(key string)
}

var _ dispatch.Input = (*Input)(nil)

func (in *Input) record(format string, args ...any) {
	in.events = append(in.events, fmt.Sprintf(format, args...))
}

func (in *Input) MoveTo(_ context.Context, p geometry.Point) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.Err != nil {
		return in.Err
	}
	in.pos = p
	return nil
}

func (in *Input) Down(_ context.Context, b dispatch.Button) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.Err != nil {
		return in.Err
	}
	in.record("down %s %s", b, in.pos)
	return nil
}

func (in *Input) Up(_ context.Context, b dispatch.Button) error {
	in.mu.Lock()
	if in.Err != nil {
		in.mu.Unlock()
		return in.Err
	}
	in.record("up %s %s", b, in.pos)
	if b == dispatch.Left {
		in.clicks = append(in.clicks, in.pos)
	}
	hook, pos := in.OnClick, in.pos
	in.mu.Unlock()
	if hook != nil {
		hook(b, pos)
	}
	return nil
}

func (in *Input) KeyDown(_ context.Context, key string) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.Err != nil {
		return in.Err
	}
	in.record("keydown %s", key)
	return nil
}

func (in *Input) KeyUp(_ context.Context, key string) error {
	in.mu.Lock()
	if in.Err != nil {
		in.mu.Unlock()
		return in.Err
	}
	in.record("keyup %s", key)
	hook := in.OnKey
	in.mu.Unlock()
	if hook != nil {
		hook(key)
	}
	return nil
}

func (in *Input) Scroll(_ context.Context, clicks int) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.Err != nil {
		return in.Err
	}
	in.record("scroll %d", clicks)
	return nil
}

func (in *Input) Position(context.Context) (geometry.Point, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.Err != nil {
		return geometry.Point{}, in.Err
	}
	return in.pos, nil
}

// SetPosition places the cursor without recording an event.
func (in *Input) SetPosition(p geometry.Point) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.pos = p
}

// Events returns all recorded non-move events.
func (in *Input) Events() []string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]string(nil), in.events...)
}

// Clicks returns the positions of completed left clicks.
func (in *Input) Clicks() []geometry.Point {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]geometry.Point(nil), in.clicks...)
}

// Count returns how many recorded events start with prefix.
func (in *Input) Count(prefix string) int {
	n := 0
	for _, e := range in.Events() {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}
