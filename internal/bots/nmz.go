package bots

import (
	"context"
	"fmt"
	"time"

	"scape-bot/internal/game"
	"scape-bot/internal/geometry"
	"scape-bot/internal/ocr"
	"scape-bot/internal/options"
	"scape-bot/internal/session"
	"scape-bot/internal/vision"
)

const spriteAbsorption = "nmz/absorption4.png"

// NMZ keeps absorption points topped up inside Nightmare Zone. The points
// counter turns red when it drops below the plugin threshold.
type NMZ struct {
	base
}

// NewNMZ returns the Nightmare Zone bot.
func NewNMZ() *NMZ {
	return &NMZ{base: base{
		title:       "NMZ",
		description: "Drinks absorption potions whenever the points counter turns red.",
		runFor:      time.Minute,
	}}
}

func (b *NMZ) Options() *options.Set {
	return options.NewBuilder().
		AddSlider("running_time", "How long to run (minutes)?", 1, 500).
		MustBuild()
}

func (b *NMZ) Apply(v options.Values, log options.Logger) error {
	b.runFor = minutes(v.Int("running_time"))
	log.Log(fmt.Sprintf("Running time: %d minutes.", v.Int("running_time")), false)
	return nil
}

func (b *NMZ) Setup(context.Context, *session.Session) error { return nil }

func (b *NMZ) MainLoop(ctx context.Context, s *session.Session) error {
	for s.Running(ctx) {
		gv := s.Layout().GameView
		counter := geometry.R(gv.X, gv.Y, 100, 200)

		low := false
		for _, font := range []ocr.Font{ocr.Plain11, ocr.Plain12} {
			if s.ReadText(ctx, counter, font, []vision.Color{game.RedText}) == "" {
				continue
			}
			low = true
			for round := 0; round < 4; round++ {
				if !b.drink(ctx, s) {
					return nil
				}
			}
			break
		}
		if !low {
			s.Log("Points are not below threshold.")
		}

		_ = s.TakeBreak(ctx, 30*time.Second, 40*time.Second, true)
		s.Report()
	}
	s.Log("Finished.")
	return nil
}

// drink clicks a full absorption potion four times.
func (b *NMZ) drink(ctx context.Context, s *session.Session) bool {
	pot, ok := s.FindSprite(ctx, spriteAbsorption, s.Layout().ControlPanel)
	if !ok {
		s.LogoutAndStop(ctx, "Absorb pot not found")
		return false
	}
	s.Input().MoveInto(ctx, pot)
	s.Log("Absorb pot found.")
	for i := 0; i < 4; i++ {
		s.Input().Click(ctx)
		_ = s.Nap(ctx)
	}
	return true
}
