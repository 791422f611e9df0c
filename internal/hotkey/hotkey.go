// Package hotkey turns a global key combination into bot start/stop
// toggles. The listener consumes OS-level key events, tracks which of the
// configured keys are currently held, and fires the toggle exactly once
// per full press of the combination; releasing any member key re-arms it.
package hotkey

import (
	"strings"

	hook "github.com/robotn/gohook"

	"osbc/internal/botutil"
	"osbc/internal/logging"
)

// DefaultCombo is the out-of-the-box start/stop combination.
var DefaultCombo = []string{"shift", "enter"}

// keyAliases maps settings identifiers to the spellings gohook's keycode
// table may use for them. The identifier itself is always tried first, so
// character keys and most named keys need no entry here.
var keyAliases = map[string][]string{
	"enter":     {"return"},
	"esc":       {"escape"},
	"ctrl":      {"control"},
	"cmd":       {"command"},
	"caps_lock": {"capslock", "caps"},
	"backspace": {"delete"},
}

// resolveKeycode turns a key identifier (a character, or a named key such
// as shift, enter, caps_lock) into a gohook keycode.
func resolveKeycode(name string) (uint16, bool) {
	if code, ok := hook.Keycode[name]; ok {
		return code, true
	}
	for _, alias := range keyAliases[name] {
		if code, ok := hook.Keycode[alias]; ok {
			return code, true
		}
	}
	return 0, false
}

// Listener watches the global keyboard for one combination.
type Listener struct {
	combo   map[string]bool
	codes   map[uint16]string
	pressed map[string]bool
	armed   bool
	onFire  func()

	// Events feeds the listener. Defaults to the OS hook; tests inject
	// their own channel.
	Events chan hook.Event
}

// New builds a listener for the given combination. An empty combo falls
// back to DefaultCombo. onFire runs on the listener goroutine, so it must
// not block.
func New(combo []string, onFire func()) *Listener {
	if len(combo) == 0 {
		combo = DefaultCombo
	}
	l := &Listener{
		combo:   make(map[string]bool, len(combo)),
		codes:   make(map[uint16]string, len(combo)),
		pressed: make(map[string]bool, len(combo)),
		armed:   true,
		onFire:  onFire,
	}
	for _, key := range combo {
		name := strings.ToLower(key)
		l.combo[name] = true
		if code, ok := resolveKeycode(name); ok {
			l.codes[code] = name
		} else {
			logging.Warn("Hotkey %q is not a recognized key; the combination cannot fire", name)
		}
	}
	return l
}

// Combo returns the watched key identifiers in an unspecified order.
func (l *Listener) Combo() []string {
	out := make([]string, 0, len(l.combo))
	for key := range l.combo {
		out = append(out, key)
	}
	return out
}

// Start begins consuming key events on a background goroutine. The hook
// dying takes the hotkey with it but never the bot; that failure mode is
// logged and tolerated.
func (l *Listener) Start() {
	if l.Events == nil {
		l.Events = hook.Start()
	}
	logging.Info("Hotkey listener armed on %v", l.Combo())
	botutil.SafeGo("hotkey_listener", l.run)
}

// Stop detaches the OS hook.
func (l *Listener) Stop() {
	hook.End()
}

func (l *Listener) run() {
	for ev := range l.Events {
		l.Handle(ev)
	}
	logging.Warn("Hotkey event stream closed; start/stop toggling is disabled")
}

// Handle advances the listener state machine by one event. Exposed so
// tests can drive the listener synchronously.
func (l *Listener) Handle(ev hook.Event) {
	if ev.Kind != hook.KeyDown && ev.Kind != hook.KeyHold && ev.Kind != hook.KeyUp {
		return
	}
	name, ok := l.codes[ev.Rawcode]
	if !ok {
		name, ok = l.codes[ev.Keycode]
	}
	if !ok {
		return
	}

	switch ev.Kind {
	case hook.KeyDown, hook.KeyHold:
		l.pressed[name] = true
		if l.armed && len(l.pressed) == len(l.combo) {
			// Fire once; holding the combination must not retrigger.
			l.armed = false
			logging.Debug("Hotkey fired")
			l.onFire()
		}
	case hook.KeyUp:
		delete(l.pressed, name)
		l.armed = true
	}
}
