package window

import (
	"fmt"
	"strconv"
	"strings"

	"gocv.io/x/gocv"

	"osbc/internal/colors"
	"osbc/internal/input"
	"osbc/internal/logging"
	"osbc/internal/ocr"
)

// ReadOrb reads an orb's numeric display. Orb numerals render green and
// flip to red when the stat is drained or poisoned, so both colors are
// accepted.
func (w *Window) ReadOrb(o Orb, font *ocr.Font) (int, error) {
	text, err := ocr.ExtractText(o.Text, font, colors.OrbText)
	if err != nil {
		return 0, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("orb text is empty")
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("orb text %q is not a number", text)
	}
	return n, nil
}

// Hitpoints reads the health orb.
func (w *Window) Hitpoints(fonts *ocr.Fonts) (int, error) {
	return w.ReadOrb(w.HPOrb, fonts.Plain11)
}

// PrayerPoints reads the prayer orb.
func (w *Window) PrayerPoints(fonts *ocr.Fonts) (int, error) {
	return w.ReadOrb(w.PrayerOrb, fonts.Plain11)
}

// RunEnergy reads the run orb.
func (w *Window) RunEnergy(fonts *ocr.Fonts) (int, error) {
	return w.ReadOrb(w.RunOrb, fonts.Plain11)
}

// SpecEnergy reads the special attack orb.
func (w *Window) SpecEnergy(fonts *ocr.Fonts) (int, error) {
	return w.ReadOrb(w.SpecOrb, fonts.Plain11)
}

// TotalXPValue reads the experience counter next to the minimap.
func (w *Window) TotalXPValue(fonts *ocr.Fonts) (int, error) {
	text, err := ocr.ExtractText(w.TotalXP, fonts.Plain11, []colors.Color{colors.White})
	if err != nil {
		return 0, err
	}
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if text == "" {
		return 0, fmt.Errorf("xp counter is empty")
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("xp counter %q is not a number", text)
	}
	return n, nil
}

// ToggleRun clicks the run orb.
func (w *Window) ToggleRun(m *input.Mouse) {
	logging.Debug("Toggling run")
	m.MoveTo(w.RunOrb.Icon.RandomPointUniform())
	m.Click("left", false, false)
}

// runEnabledMinPixels filters out stray gold pixels from compression
// artifacts around the orb edge.
const runEnabledMinPixels = 20

// RunEnabled reports whether run mode is currently on, read from the
// gold tint of the run orb icon.
func (w *Window) RunEnabled() (bool, error) {
	frame, err := w.RunOrb.Icon.Screenshot()
	if err != nil {
		return false, err
	}
	defer frame.Close()

	mask := colors.Isolate(frame, colors.RunOrbOn)
	defer mask.Close()
	return gocv.CountNonZero(mask) >= runEnabledMinPixels, nil
}

// ChatText reads the visible chat body.
func (w *Window) ChatText(fonts *ocr.Fonts, cs []colors.Color) (string, error) {
	if len(cs) == 0 {
		cs = []colors.Color{colors.Black, colors.Blue, colors.Red}
	}
	return ocr.ExtractText(w.Chat, fonts.Plain12, cs)
}

// ChatContains looks for any of the needles in the chat body and returns
// the screen rectangles of the hits.
func (w *Window) ChatContains(fonts *ocr.Fonts, needles []string, cs []colors.Color) (bool, error) {
	if len(cs) == 0 {
		cs = []colors.Color{colors.Black, colors.Blue, colors.Red}
	}
	hits, err := ocr.FindText(needles, w.Chat, fonts.Plain12, cs)
	if err != nil {
		return false, err
	}
	return len(hits) > 0, nil
}
