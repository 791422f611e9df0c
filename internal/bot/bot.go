// Package bot holds the script lifecycle: the two-state status machine,
// the options contract every script implements, and the controller that
// binds one selected script to a view.
package bot

import (
	"fmt"
	"sync"
	"time"

	"osbc/internal/botutil"
	"osbc/internal/input"
	"osbc/internal/logging"
	"osbc/internal/window"
)

// Status is the bot lifecycle state.
type Status int

const (
	StatusStopped Status = iota
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "STOPPED"
	case StatusRunning:
		return "RUNNING"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Script is one automation behavior. CreateOptions declares the script's
// configuration schema, SaveOptions applies a validated value map, and
// MainLoop runs on a worker goroutine until it returns or StatusCheck
// goes false.
type Script interface {
	CreateOptions(b *OptionsBuilder)
	SaveOptions(values map[string]any) error
	MainLoop(b *Bot)
}

// Bot wraps one Script with its runtime state. All exported methods are
// safe to call from the UI thread and the worker concurrently.
type Bot struct {
	Window   *window.Window
	Mouse    *input.Mouse
	Keyboard *input.Keyboard

	script Script

	mu               sync.Mutex
	status           Status
	optionsSet       bool
	iterations       int
	targetIterations int
	timeBudget       time.Duration
	startedAt        time.Time

	onLog      func(string)
	onProgress func(float64)
	onStatus   func(Status)
}

// NewBot wires a script to its window and input devices. The callbacks
// may be nil; they surface activity to a view layer.
func NewBot(script Script, win *window.Window, mouse *input.Mouse, kb *input.Keyboard) *Bot {
	return &Bot{
		Window:   win,
		Mouse:    mouse,
		Keyboard: kb,
		script:   script,
	}
}

// Script returns the wrapped behavior.
func (b *Bot) Script() Script { return b.script }

// Status returns the current lifecycle state.
func (b *Bot) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// StatusCheck reports whether the main loop should keep going. Scripts
// call this at the top of every iteration. An expired wall-clock budget
// stops the bot here.
func (b *Bot) StatusCheck() bool {
	b.mu.Lock()
	running := b.status == StatusRunning
	expired := running && b.timeBudget > 0 && time.Since(b.startedAt) > b.timeBudget
	b.mu.Unlock()

	if expired {
		b.LogMsg("Time budget reached")
		b.Stop()
		return false
	}
	return running
}

// SetTimeBudget bounds a run by wall-clock time. Zero disables the
// budget.
func (b *Bot) SetTimeBudget(d time.Duration) {
	b.mu.Lock()
	b.timeBudget = d
	b.mu.Unlock()
}

// MarkOptionsSet records that the script accepted a saved options map.
func (b *Bot) MarkOptionsSet() {
	b.mu.Lock()
	b.optionsSet = true
	b.mu.Unlock()
}

// OptionsSet reports whether the script has been configured.
func (b *Bot) OptionsSet() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.optionsSet
}

// SetIterationTarget sets the denominator for iteration-based progress.
func (b *Bot) SetIterationTarget(n int) {
	b.mu.Lock()
	b.targetIterations = n
	b.iterations = 0
	b.mu.Unlock()
}

// Play takes the bot from STOPPED to RUNNING: refuses when options are
// unset, resolves the window anchors, then spawns the worker. Any
// failure leaves the bot stopped.
func (b *Bot) Play() error {
	b.mu.Lock()
	if b.status == StatusRunning {
		b.mu.Unlock()
		return fmt.Errorf("bot is already running")
	}
	if !b.optionsSet {
		b.mu.Unlock()
		b.LogMsg("Options not set; configure the script before playing")
		return fmt.Errorf("options not set")
	}
	b.mu.Unlock()

	if b.Window != nil {
		if err := b.Window.Initialize(); err != nil {
			b.LogMsg("Could not resolve the game window: %v", err)
			return err
		}
	}

	b.mu.Lock()
	b.startedAt = time.Now()
	b.iterations = 0
	b.mu.Unlock()

	b.setStatus(StatusRunning)
	b.LogMsg("Bot started")

	botutil.SafeGo("bot_main_loop", func() {
		defer b.Stop()
		b.script.MainLoop(b)
	})
	return nil
}

// Stop takes the bot to STOPPED. Safe to call from any goroutine and
// idempotent; the worker observes the transition via StatusCheck.
func (b *Bot) Stop() {
	b.mu.Lock()
	if b.status == StatusStopped {
		b.mu.Unlock()
		return
	}
	b.status = StatusStopped
	cb := b.onStatus
	started := b.startedAt
	b.mu.Unlock()

	if started.IsZero() {
		b.LogMsg("Bot stopped")
	} else {
		b.LogMsg("Bot stopped after %s", botutil.FormatDuration(time.Since(started)))
	}
	if cb != nil {
		cb(StatusStopped)
	}
}

func (b *Bot) setStatus(s Status) {
	b.mu.Lock()
	b.status = s
	cb := b.onStatus
	b.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}

// LogMsg writes a line to the log file and mirrors it to the view.
func (b *Bot) LogMsg(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logging.Info("%s", msg)

	b.mu.Lock()
	cb := b.onLog
	b.mu.Unlock()
	if cb != nil {
		cb(msg)
	}
}

// UpdateProgress pushes a 0..1 completion fraction to the view.
func (b *Bot) UpdateProgress(fraction float64) {
	fraction = botutil.ClampFloat(fraction, 0, 1)

	b.mu.Lock()
	cb := b.onProgress
	b.mu.Unlock()
	if cb != nil {
		cb(fraction)
	}
}

// IncrementIteration bumps the iteration counter and reports progress
// against the iteration target, or failing that the time budget. Returns
// the new count.
func (b *Bot) IncrementIteration() int {
	b.mu.Lock()
	b.iterations++
	n := b.iterations
	target := b.targetIterations
	budget := b.timeBudget
	elapsed := time.Since(b.startedAt)
	b.mu.Unlock()

	switch {
	case target > 0:
		b.UpdateProgress(float64(n) / float64(target))
	case budget > 0:
		b.UpdateProgress(elapsed.Seconds() / budget.Seconds())
	}
	return n
}

// Iterations returns the completed loop count.
func (b *Bot) Iterations() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.iterations
}
