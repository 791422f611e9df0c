package main

import (
	"fmt"
	"strconv"
	"strings"

	"osbc/internal/bot"
	"osbc/internal/gamestate"
	"osbc/internal/pathfinder"
	"osbc/internal/walker"
)

// walkScript walks the player to a configured world tile and stops.
type walkScript struct {
	state *gamestate.PollClient
	paths *pathfinder.Client

	dest    pathfinder.Tile
	profile string
}

func newWalkScript(state *gamestate.PollClient, paths *pathfinder.Client, profile string) *walkScript {
	return &walkScript{state: state, paths: paths, profile: profile}
}

func (s *walkScript) CreateOptions(b *bot.OptionsBuilder) {
	b.AddText("destination", "Destination tile", "x,y,plane — e.g. 3165,3487,0")
}

func (s *walkScript) SaveOptions(values map[string]any) error {
	raw, _ := values["destination"].(string)
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return fmt.Errorf("destination %q: want x,y,plane", raw)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return fmt.Errorf("destination %q: %w", raw, err)
		}
		nums[i] = n
	}
	s.dest = pathfinder.Tile{X: nums[0], Y: nums[1], Z: nums[2]}
	return nil
}

func (s *walkScript) MainLoop(b *bot.Bot) {
	w := walker.New(b.Window, b.Mouse, s.state, s.paths)
	w.Profile = s.profile

	b.LogMsg("Walking to (%d, %d) plane %d", s.dest.X, s.dest.Y, s.dest.Z)
	err := w.WalkTo(s.dest, func() bool { return !b.StatusCheck() })
	switch err {
	case nil:
		b.UpdateProgress(1)
		b.LogMsg("Arrived")
	case walker.ErrCancelled:
		b.LogMsg("Walk cancelled")
	default:
		b.LogMsg("Walk failed: %v", err)
	}
}
