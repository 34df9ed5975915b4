// Package bots contains the automation scripts and the registry the CLI
// selects them from.
//
// Every bot reads the client through its session: template sprites and
// marked objects for navigation, OCR for hover and overlay text and the
// status feed for inventory, animation and hitpoints.
package bots

import (
	"fmt"
	"sort"
	"time"

	"scape-bot/internal/config"
	"scape-bot/internal/session"
)

// Constructor builds a bot.
type Constructor func(cfg *config.Config) session.Bot

var registry = map[string]Constructor{
	"fish-fryer": func(cfg *config.Config) session.Bot { return NewFishFryer(cfg) },
	"combat":     func(*config.Config) session.Bot { return NewCombat() },
	"nmz":        func(*config.Config) session.Bot { return NewNMZ() },
}

// Names returns the registered bot names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named bot.
func New(name string, cfg *config.Config) (session.Bot, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown bot %q (available: %v)", name, Names())
	}
	return ctor(cfg), nil
}

// base carries the fields every bot shares.
type base struct {
	title       string
	description string
	runFor      time.Duration
}

func (b *base) Title() string         { return b.title }
func (b *base) Description() string   { return b.description }
func (b *base) RunFor() time.Duration { return b.runFor }

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

// hoursMinutes formats d as "Xh Ym".
func hoursMinutes(d time.Duration) string {
	total := int(d.Round(time.Minute).Minutes())
	return fmt.Sprintf("%dh %dm", total/60, total%60)
}
