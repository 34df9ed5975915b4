// Package status receives game state pushed by a client-side plugin.
//
// The plugin posts JSON snapshots (inventory, animation, combat and idle
// flags, hitpoints) over a websocket or plain HTTP. The Feed keeps the most
// recent one; bots read it through the Source interface and treat a missing
// or stale snapshot as "unknown".
package status

import (
	"context"
	"errors"
	"slices"
	"time"
)

// ErrNoSnapshot is returned when no fresh snapshot is available.
var ErrNoSnapshot = errors.New("no fresh status snapshot")

// InventorySize is the number of inventory slots.
const InventorySize = 28

// Item is one inventory slot. An ID of zero or less is an empty slot.
type Item struct {
	ID       int `json:"id"`
	Quantity int `json:"quantity"`
}

// Snapshot is the game state at a point in time.
type Snapshot struct {
	Inventory   []Item `json:"inventory"`
	AnimationID int    `json:"animation_id"`
	InCombat    bool   `json:"in_combat"`
	Idle        bool   `json:"idle"`
	HP          int    `json:"hp"`
	MaxHP       int    `json:"max_hp"`

	Received time.Time `json:"-"`
}

// Source provides snapshots.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// ItemCount returns the number of occupied inventory slots.
func (s Snapshot) ItemCount() int {
	n := 0
	for _, it := range s.Inventory {
		if it.ID > 0 {
			n++
		}
	}
	return n
}

// InvFull reports whether every inventory slot is occupied.
func (s Snapshot) InvFull() bool {
	return s.ItemCount() >= InventorySize
}

// InvIndices returns the slots holding any of ids, in slot order.
func (s Snapshot) InvIndices(ids ...int) []int {
	var out []int
	for i, it := range s.Inventory {
		if it.ID > 0 && slices.Contains(ids, it.ID) {
			out = append(out, i)
		}
	}
	return out
}

// Has reports whether any slot holds one of ids.
func (s Snapshot) Has(ids ...int) bool {
	return len(s.InvIndices(ids...)) > 0
}

// Animating reports whether the player's animation is one of ids.
func (s Snapshot) Animating(ids ...int) bool {
	return slices.Contains(ids, s.AnimationID)
}

// HPPercent returns hitpoints as 0-100. Unknown max HP reads as 100.
func (s Snapshot) HPPercent() int {
	if s.MaxHP <= 0 {
		return 100
	}
	p := s.HP * 100 / s.MaxHP
	return max(0, min(100, p))
}
