// Package session - actions.go
//
// This file implements common in-game actions shared by every bot.
package session

import (
	"context"
	"fmt"
	"time"

	"scape-bot/internal/dispatch"
	"scape-bot/internal/geometry"
	"scape-bot/internal/ocr"
	"scape-bot/internal/vision"
)

const (
	autoRetaliateOn  = "combat/autoretal_on.png"
	autoRetaliateOff = "combat/autoretal_off.png"
	zoomOutNotches   = 25
)

// OpenTab clicks the control panel tab at index (see geometry.Tab*).
func (s *Session) OpenTab(ctx context.Context, index int) {
	if index < 0 || index >= len(s.layout.Tabs) {
		return
	}
	s.input.ClickIn(ctx, s.layout.Tabs[index])
}

// Logout opens the logout tab and presses the logout button.
func (s *Session) Logout(ctx context.Context) {
	s.Log("Logging out...")
	s.OpenTab(ctx, geometry.TabLogout)
	_ = s.Sleep(ctx, time.Second)
	s.input.ClickIn(ctx, s.layout.LogoutButton)
	_ = s.Sleep(ctx, time.Second)
}

// DropSlots shift-clicks the given inventory slots, sweeping the grid in
// geometry.DropOrder. Slots outside the inventory are ignored.
func (s *Session) DropSlots(ctx context.Context, slots []int) {
	if len(slots) == 0 {
		return
	}
	want := make(map[int]bool, len(slots))
	for _, i := range slots {
		want[i] = true
	}
	s.input.WithKeyHeld(ctx, dispatch.KeyShift, func() {
		for _, i := range geometry.DropOrder() {
			if !want[i] || ctx.Err() != nil {
				continue
			}
			s.input.ClickIn(ctx, s.layout.InventorySlots[i])
		}
	})
}

// PitchDown holds the up arrow until the camera looks straight down.
func (s *Session) PitchDown(ctx context.Context) {
	s.Log("Adjusting camera pitch...")
	s.input.HoldKey(ctx, dispatch.KeyUp, s.breaks.Sample(1500*time.Millisecond, 2*time.Second))
}

// ZoomOut scrolls the game view out as far as it goes.
func (s *Session) ZoomOut(ctx context.Context) {
	s.Log("Zooming out...")
	s.input.MoveInto(ctx, s.layout.GameView)
	s.input.Scroll(ctx, -zoomOutNotches)
}

// ToggleAutoRetaliate sets auto-retaliate on or off. It returns false when
// the current state cannot be read.
func (s *Session) ToggleAutoRetaliate(ctx context.Context, on bool) bool {
	state := "on"
	want, other := autoRetaliateOn, autoRetaliateOff
	if !on {
		state = "off"
		want, other = autoRetaliateOff, autoRetaliateOn
	}
	s.Logf("Toggling auto retaliate %s...", state)
	s.OpenTab(ctx, geometry.TabCombat)
	_ = s.Sleep(ctx, 500*time.Millisecond)

	if _, ok := s.FindSprite(ctx, want, s.layout.ControlPanel); ok {
		return true
	}
	if _, ok := s.FindSprite(ctx, other, s.layout.ControlPanel); !ok {
		s.Log("Could not find the auto retaliate button.")
		return false
	}
	s.input.ClickIn(ctx, s.layout.AutoRetaliate)
	return true
}

// PickUpLoot clicks the nearest ground item label, drawn in highlight,
// whose text names any of items. It reports whether a label was clicked.
func (s *Session) PickUpLoot(ctx context.Context, items []string, highlight vision.Color) bool {
	if len(items) == 0 {
		return false
	}
	labels := s.FindText(ctx, items, s.layout.GameView, ocr.Plain11, []vision.Color{highlight})
	if len(labels) == 0 {
		return false
	}
	i := geometry.Nearest(labels, s.layout.GameView.Center())
	if i < 0 {
		return false
	}
	s.input.ClickIn(ctx, labels[i])
	return true
}

// InventorySlot returns the rect of inventory slot i.
func (s *Session) InventorySlot(i int) (geometry.Rect, error) {
	if i < 0 || i >= len(s.layout.InventorySlots) {
		return geometry.Rect{}, fmt.Errorf("inventory slot %d out of range", i)
	}
	return s.layout.InventorySlots[i], nil
}
