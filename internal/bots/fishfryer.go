package bots

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"scape-bot/internal/config"
	"scape-bot/internal/dispatch"
	"scape-bot/internal/game"
	"scape-bot/internal/geometry"
	"scape-bot/internal/options"
	"scape-bot/internal/poll"
	"scape-bot/internal/session"
	"scape-bot/internal/status"
	"scape-bot/internal/vision"
)

const (
	spriteFishingSpot   = "fish_fryer/fishing-spot.png"
	spriteCookingWindow = "fish_fryer/cooking-window-open.png"
)

// FishFryer fly-fishes trout and salmon, cooks the catch on a marked fire
// and drops the cooked fish.
//
// Requirements: fly fishing rod and feathers in the inventory, the fire
// outlined purple with an object marker, the cooking-window and
// fishing-spot sprites in the template directory.
type FishFryer struct {
	base
	takeBreaks bool
	breakMax   time.Duration
	dropped    int
}

// NewFishFryer returns the fish fryer bot.
func NewFishFryer(cfg *config.Config) *FishFryer {
	return &FishFryer{
		base: base{
			title:       "Fish Fryer",
			description: "Fishes at a fly-fishing spot, cooks the catch on a fire and drops it.",
			runFor:      time.Minute,
		},
		breakMax: cfg.Breaks.Max,
	}
}

func (b *FishFryer) Options() *options.Set {
	return options.NewBuilder().
		AddSlider("run_time", "How long to run (minutes)?", 1, 600).
		AddCheckbox("take_breaks", "Take breaks?", []string{" "}).
		MustBuild()
}

func (b *FishFryer) Apply(v options.Values, log options.Logger) error {
	b.runFor = minutes(v.Int("run_time"))
	b.takeBreaks = v.Bool("take_breaks")
	log.Log(fmt.Sprintf("[RUN TIME] %d MIN", v.Int("run_time")), true)
	breaks := fmt.Sprintf("  [BREAKS] %s", strings.ToUpper(fmt.Sprint(b.takeBreaks)))
	if b.takeBreaks {
		breaks += fmt.Sprintf(" (MAX %ds)", int(b.breakMax.Seconds()))
	}
	log.Log(breaks, false)
	return nil
}

func (b *FishFryer) Setup(ctx context.Context, s *session.Session) error {
	s.Logf("[START] (%s)", hoursMinutes(b.runFor))
	s.PitchDown(ctx)
	s.ZoomOut(ctx)
	s.OpenTab(ctx, geometry.TabInventory)
	return nil
}

func (b *FishFryer) MainLoop(ctx context.Context, s *session.Session) error {
	for s.Running(ctx) {
		if b.takeBreaks {
			_ = s.MaybeBreak(ctx)
		}

		snap, err := s.Snapshot(ctx)
		if err != nil {
			s.LogOverwrite("Waiting for game state...")
			_ = s.Sleep(ctx, time.Second)
			s.Report()
			continue
		}
		switch {
		case snap.InvFull():
			if snap.Has(game.RawFish...) {
				b.cook(ctx, s)
			}
			b.drop(ctx, s)
		case snap.Has(game.Feather):
			b.fish(ctx, s)
		}
		// Feathers are checked after cooking and dropping.
		if snap, err := s.Snapshot(ctx); err == nil && !snap.Has(game.Feather) {
			s.LogoutAndStop(ctx, "Out of feathers.")
		}

		s.Report()
	}
	s.Log("[END]")
	return nil
}

func (b *FishFryer) isFishing(ctx context.Context, s *session.Session) bool {
	if snap, err := s.Snapshot(ctx); err == nil && snap.Animating(game.FishingAnimations...) {
		return true
	}
	return s.IsDoing(ctx, "Fishing", []vision.Color{game.OffGreenText})
}

func (b *FishFryer) isCooking(ctx context.Context, s *session.Session) bool {
	snap, err := s.Snapshot(ctx)
	return err == nil && snap.Animating(game.CookingAnimations...)
}

func idle(ctx context.Context, s *session.Session) bool {
	snap, err := s.Snapshot(ctx)
	return err == nil && snap.Idle
}

func invFull(ctx context.Context, s *session.Session) bool {
	snap, err := s.Snapshot(ctx)
	return err == nil && snap.InvFull()
}

func (b *FishFryer) fish(ctx context.Context, s *session.Session) {
	s.Log("Searching for fishing spot...")
	spot, ok := s.FindSprite(ctx, spriteFishingSpot, s.Layout().GameView)
	if !ok {
		s.LogOverwrite("Fishing spot not found.")
		_ = s.Sleep(ctx, time.Second)
		return
	}
	s.Input().ClickIn(ctx, spot)
	s.LogOverwrite("Found fishing spot. Moving toward it...")

	p := s.Poller()
	every := s.Config().Timing.PollInterval
	p.Wait(ctx, poll.Every(every, time.Minute), func(ctx context.Context) bool {
		return b.isFishing(ctx, s) || idle(ctx, s)
	})
	s.LogOverwrite("Arrived at fishing spot.")
	_ = s.TakeBreak(ctx, 5*time.Second, 6*time.Second, false)

	p.Wait(ctx, poll.Every(every, s.Remaining()), func(ctx context.Context) bool {
		return invFull(ctx, s) || !b.isFishing(ctx, s)
	})
	if invFull(ctx, s) {
		s.LogOverwrite("Inventory is full. Heading off to cook.")
	}
}

func (b *FishFryer) cook(ctx context.Context, s *session.Session) {
	textColors := []vision.Color{game.OffWhiteText, game.OffCyanText}
	if _, ok := s.FindMarkedWithText(ctx, game.PurpleMark, []string{"Cook", "Fire"}, textColors, 10); !ok {
		s.Log("Could not find a fire.")
		return
	}
	s.Input().Click(ctx)
	s.Log("Traveling to fire...")

	// Re-click the fire every 4 to 5 seconds until the window opens.
	res := poll.Until(ctx, s.Poller(), poll.Config{Timeout: time.Minute, Interval: 4 * time.Second, Jitter: 0.25},
		func(ctx context.Context) (struct{}, bool) {
			if _, open := s.FindSprite(ctx, spriteCookingWindow, s.Layout().Chat); open {
				return struct{}{}, true
			}
			if fire, ok := s.NearestMarked(ctx, game.PurpleMark, s.Layout().GameView); ok {
				s.Input().ClickIn(ctx, fire)
			}
			return struct{}{}, false
		})
	if !res.Found {
		s.Log("Cooking window did not open.")
		return
	}

	s.LogOverwrite("Arrived at fire and opened cooking window.")
	s.Input().PressKey(ctx, dispatch.KeySpace)
	_ = s.Sleep(ctx, time.Second)
	if !b.isCooking(ctx, s) {
		s.Input().PressKey(ctx, dispatch.KeySpace)
	}
	s.Log("Cooking fish...")
	s.Poller().While(ctx, poll.Every(time.Second, 3*time.Minute), func(ctx context.Context) bool {
		snap, err := s.Snapshot(ctx)
		return err == nil && snap.Has(game.RawFish...) && b.isCooking(ctx, s)
	})
}

func (b *FishFryer) drop(ctx context.Context, s *session.Session) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return
	}
	slots := snap.InvIndices(game.CookedFish...)
	if len(slots) == 0 {
		return
	}
	s.Logf("Dropping %d fish...", len(slots))
	s.DropSlots(ctx, slots)
	_ = s.Sleep(ctx, 600*time.Millisecond)

	if after, err := s.Snapshot(ctx); err == nil && remaining(after, slots) > 0 {
		s.Log("Failed to drop fish.")
		return
	}
	b.dropped += len(slots)
	s.LogOverwrite(fmt.Sprintf("Dropped %d fish.", len(slots)))
	s.Logf("Total fish dropped: %d", b.dropped)
}

// remaining counts how many of slots still hold cooked or burnt fish.
func remaining(snap status.Snapshot, slots []int) int {
	left := 0
	for _, i := range slots {
		if i < len(snap.Inventory) && slices.Contains(game.CookedFish, snap.Inventory[i].ID) {
			left++
		}
	}
	return left
}
