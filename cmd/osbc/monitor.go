package main

import (
	"fmt"
	"time"

	"osbc/internal/bot"
	"osbc/internal/gamestate"
)

// monitorScript is the built-in smoke-test script: it polls the state
// plugin and reports player position or skills without touching the
// mouse. Useful for verifying the plugin wiring before trusting a real
// script with input.
type monitorScript struct {
	state *gamestate.PollClient

	iterations int
	report     string
}

func newMonitorScript(state *gamestate.PollClient) *monitorScript {
	return &monitorScript{state: state}
}

func (s *monitorScript) CreateOptions(b *bot.OptionsBuilder) {
	b.AddSlider("iterations", "How many reports", 1, 500)
	b.AddDropdown("report", "What to report", []string{"position", "skills"})
}

func (s *monitorScript) SaveOptions(values map[string]any) error {
	s.iterations = 10
	s.report = "position"

	if v, ok := values["iterations"]; ok {
		switch n := v.(type) {
		case int:
			s.iterations = n
		case float64:
			s.iterations = int(n)
		}
	}
	if v, ok := values["report"].(string); ok {
		s.report = v
	}
	if s.iterations < 1 {
		return fmt.Errorf("iterations must be positive")
	}
	return nil
}

func (s *monitorScript) MainLoop(b *bot.Bot) {
	b.SetIterationTarget(s.iterations)

	for b.StatusCheck() {
		switch s.report {
		case "skills":
			total, err := s.state.TotalXP()
			if err != nil {
				b.LogMsg("State read failed: %v", err)
			} else {
				b.LogMsg("Total xp: %d", total)
			}
		default:
			pos, err := s.state.PlayerPosition()
			if err != nil {
				b.LogMsg("State read failed: %v", err)
			} else {
				b.LogMsg("Player at (%d, %d) plane %d", pos.X, pos.Y, pos.Plane)
			}
		}

		if b.IncrementIteration() >= s.iterations {
			return
		}
		time.Sleep(time.Second)
	}
}
