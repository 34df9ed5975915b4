package bots

import (
	"context"
	"fmt"
	"sort"
	"time"

	"scape-bot/internal/session"
)

// Profile adapts the bots to one game client.
type Profile struct {
	Name        string
	WindowTitle string
	// Hook runs before every bot setup. It may be nil.
	Hook session.Hook
}

var profiles = map[string]Profile{
	"runelite":     {Name: "RuneLite", WindowTitle: "RuneLite"},
	"near-reality": {Name: "Near-Reality", WindowTitle: "Near-Reality", Hook: DisablePrivateChat},
}

// LookupProfile returns the named client profile.
func LookupProfile(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		names := make([]string, 0, len(profiles))
		for n := range profiles {
			names = append(names, n)
		}
		sort.Strings(names)
		return Profile{}, fmt.Errorf("unknown client profile %q (available: %v)", name, names)
	}
	return p, nil
}

// DisablePrivateChat turns private chat off from the private chat tab's
// context menu.
func DisablePrivateChat(ctx context.Context, s *session.Session) error {
	s.Log("Disabling private chat...")
	in := s.Input()
	in.MoveInto(ctx, s.Layout().ChatTabs[3])
	in.RightClick(ctx)
	_ = s.Sleep(ctx, 50*time.Millisecond)
	in.MoveRel(ctx, 0, -28, 5, 2)
	in.Click(ctx)
	return nil
}
