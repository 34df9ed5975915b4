package bots

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scape-bot/internal/game"
	"scape-bot/internal/geometry"
	"scape-bot/internal/options"
	"scape-bot/internal/poll"
	"scape-bot/internal/session"
	"scape-bot/internal/status"
	"scape-bot/internal/vision"
)

const (
	maxFailedSearches = 60
	maxLootPerKill    = 10
)

// Combat attacks NPCs tagged in cyan, eats below a hitpoint threshold and
// picks up highlighted loot.
type Combat struct {
	base
	loot        []string
	hpThreshold int
}

// NewCombat returns the combat bot.
func NewCombat() *Combat {
	return &Combat{base: base{
		title:       "Combat",
		description: "Attacks NPCs tagged in cyan, eats when hitpoints run low and loots highlighted items.",
		runFor:      time.Minute,
	}}
}

func (b *Combat) Options() *options.Set {
	return options.NewBuilder().
		AddSlider("running_time", "How long to run (minutes)?", 1, 600).
		AddText("loot_items", "Loot items (requires re-launch):", "E.g., Coins, Dragon bones").
		AddSlider("hp_threshold", "Low HP threshold (0-100)?", 0, 100).
		MustBuild()
}

func (b *Combat) Apply(v options.Values, log options.Logger) error {
	b.runFor = minutes(v.Int("running_time"))
	b.loot = splitItems(v.String("loot_items"))
	b.hpThreshold = v.Int("hp_threshold")

	log.Log(fmt.Sprintf("Running time: %d minutes.", v.Int("running_time")), false)
	if len(b.loot) > 0 {
		log.Log(fmt.Sprintf("Loot items: %s.", strings.Join(b.loot, ", ")), false)
	} else {
		log.Log("Loot items: None.", false)
	}
	log.Log(fmt.Sprintf("Bot will eat when HP is below: %d.", b.hpThreshold), false)
	return nil
}

func splitItems(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (b *Combat) Setup(ctx context.Context, s *session.Session) error {
	s.Log("WARNING: This bot only attacks NPCs tagged in cyan. Tag your targets with the NPC Indicators plugin.")
	s.ToggleAutoRetaliate(ctx, true)
	s.Log("Selecting inventory...")
	s.OpenTab(ctx, geometry.TabInventory)
	return nil
}

func (b *Combat) MainLoop(ctx context.Context, s *session.Session) error {
	failed := 0
	for s.Running(ctx) {
		snap, err := s.Snapshot(ctx)
		known := err == nil
		if known && snap.InvFull() {
			s.Log("Inventory is full. Idk what to do.")
			s.Stop()
			break
		}

		if !known || !snap.InCombat {
			found, clicked := b.attack(ctx, s)
			if !found {
				failed++
				if failed%10 == 0 {
					s.Log("Searching for targets...")
				}
				if failed > maxFailedSearches {
					s.LogoutAndStop(ctx, "No tagged targets found. Logging out.")
					break
				}
				_ = s.Sleep(ctx, time.Second)
				continue
			}
			failed = 0
			if !clicked {
				// Hovered something else; look again.
				_ = s.Sleep(ctx, s.Config().Timing.PollInterval)
				continue
			}
			_ = s.Sleep(ctx, 500*time.Millisecond)
		}

		s.Poller().While(ctx, poll.Every(time.Second, s.Remaining()), func(ctx context.Context) bool {
			snap, err := s.Snapshot(ctx)
			if err != nil || !snap.InCombat {
				return false
			}
			if snap.HPPercent() < b.hpThreshold && !b.eat(ctx, s, snap) {
				return false
			}
			return true
		})
		if s.Stopped() {
			break
		}

		b.pickUpLoot(ctx, s)
		s.Report()
	}
	if !s.Stopped() && ctx.Err() == nil {
		s.Log("Finished.")
		s.Logout(ctx)
	}
	return nil
}

// attack hovers the nearest tagged NPC and clicks it when the hover text
// offers an attack. found is false when no tagged NPC is visible.
func (b *Combat) attack(ctx context.Context, s *session.Session) (found, clicked bool) {
	target, ok := s.NearestMarked(ctx, game.CyanMark, s.Layout().GameView)
	if !ok {
		return false, false
	}
	s.Input().MoveInto(ctx, target)
	if !s.MouseoverText(ctx, []string{"Attack"}, []vision.Color{game.OffWhiteText}) {
		return true, false
	}
	s.Input().Click(ctx)
	return true, true
}

// eat clicks the first food item. It stops the session and returns false
// when there is none.
func (b *Combat) eat(ctx context.Context, s *session.Session, snap status.Snapshot) bool {
	s.Log("HP is low.")
	slots := snap.InvIndices(game.AllFood...)
	if len(slots) == 0 {
		s.Log("No food found. Pls tell me what to do...")
		s.Stop()
		return false
	}
	s.Log("Eating food...")
	if slot, err := s.InventorySlot(slots[0]); err == nil {
		s.Input().ClickIn(ctx, slot)
	}
	return true
}

func (b *Combat) pickUpLoot(ctx context.Context, s *session.Session) {
	for i := 0; i < maxLootPerKill && s.PickUpLoot(ctx, b.loot, game.PinkMark.RGB); i++ {
		snap, err := s.Snapshot(ctx)
		if err == nil && snap.InvFull() {
			s.LogoutAndStop(ctx, "Inventory full. Cannot loot.")
			return
		}
		s.Log("Picking up loot...")
		before := snap.ItemCount()
		picked := s.Poller().Wait(ctx, poll.Every(time.Second, 5*time.Second), func(ctx context.Context) bool {
			after, err := s.Snapshot(ctx)
			return err == nil && after.ItemCount() != before
		})
		if picked {
			s.Log("Loot picked up.")
		}
	}
}
