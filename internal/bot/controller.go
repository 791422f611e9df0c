package bot

import (
	"fmt"
	"sync"

	"osbc/internal/input"
	"osbc/internal/logging"
	"osbc/internal/window"
)

// View is the UI surface the controller talks to. Implementations must
// tolerate calls from worker goroutines.
type View interface {
	LogLine(msg string)
	SetProgress(fraction float64)
	SetStatus(s Status)
	OptionsSchema(opts []Option)
}

// Controller owns the script registry and binds exactly one selected
// script to the view at a time. Selection is locked while a bot runs.
type Controller struct {
	view     View
	win      *window.Window
	mouse    *input.Mouse
	keyboard *input.Keyboard

	mu       sync.Mutex
	names    []string
	scripts  map[string]Script
	selected string
	bot      *Bot
	builder  *OptionsBuilder
}

// NewController builds a controller over shared window and input devices.
func NewController(view View, win *window.Window, mouse *input.Mouse, kb *input.Keyboard) *Controller {
	return &Controller{
		view:     view,
		win:      win,
		mouse:    mouse,
		keyboard: kb,
		scripts:  make(map[string]Script),
	}
}

// Register adds a script under a display name. Registration order is the
// display order.
func (c *Controller) Register(name string, s Script) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.scripts[name]; !dup {
		c.names = append(c.names, name)
	}
	c.scripts[name] = s
}

// Names returns the registered script names in display order.
func (c *Controller) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Selected returns the current script name, empty when none is selected.
func (c *Controller) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Select makes a script current, builds its options schema, and pushes
// the schema to the view. Refused while the current bot is running.
func (c *Controller) Select(name string) error {
	c.mu.Lock()
	if c.bot != nil && c.bot.Status() == StatusRunning {
		c.mu.Unlock()
		return fmt.Errorf("cannot switch scripts while %q is running", c.selected)
	}
	script, ok := c.scripts[name]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("unknown script %q", name)
	}

	c.selected = name
	c.builder = NewOptionsBuilder()
	script.CreateOptions(c.builder)

	b := NewBot(script, c.win, c.mouse, c.keyboard)
	b.onLog = c.view.LogLine
	b.onProgress = c.view.SetProgress
	b.onStatus = c.view.SetStatus
	c.bot = b
	schema := c.builder.Options()
	c.mu.Unlock()

	logging.Info("Selected script %q", name)
	c.view.OptionsSchema(schema)
	c.view.SetStatus(StatusStopped)
	return nil
}

// Bot returns the currently bound bot, nil when nothing is selected.
func (c *Controller) Bot() *Bot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bot
}

// SaveOptions validates a value map against the selected script's schema
// and hands it to the script. On success the bot becomes playable.
func (c *Controller) SaveOptions(values map[string]any) error {
	c.mu.Lock()
	b, builder := c.bot, c.builder
	c.mu.Unlock()
	if b == nil {
		return fmt.Errorf("no script selected")
	}

	if err := builder.Validate(values); err != nil {
		return err
	}
	if err := b.Script().SaveOptions(values); err != nil {
		return err
	}
	b.MarkOptionsSet()
	b.LogMsg("Options saved")
	return nil
}

// Play starts the selected bot.
func (c *Controller) Play() error {
	b := c.Bot()
	if b == nil {
		return fmt.Errorf("no script selected")
	}
	return b.Play()
}

// Stop stops the selected bot.
func (c *Controller) Stop() {
	if b := c.Bot(); b != nil {
		b.Stop()
	}
}

// Toggle flips the selected bot between running and stopped; this is the
// hotkey entry point. Errors are surfaced through the view, not returned,
// because the hotkey has no caller to report to.
func (c *Controller) Toggle() {
	b := c.Bot()
	if b == nil {
		c.view.LogLine("Hotkey pressed but no script is selected")
		return
	}
	if b.Status() == StatusRunning {
		b.Stop()
		return
	}
	if err := b.Play(); err != nil {
		c.view.LogLine(fmt.Sprintf("Could not start: %v", err))
	}
}
