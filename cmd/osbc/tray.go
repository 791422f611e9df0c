// Tray UI: script selection, start/stop, status and progress readouts.
//
// Menu structure:
//   OSBC
//   ├─ Status: STOPPED (read-only)
//   ├─ Progress: — (read-only)
//   ├─ Last: <most recent log line> (read-only)
//   ├─ Scripts
//   │  └─ one checkbox per registered script (radio behavior)
//   ├─ Play / Stop
//   └─ Quit
//
// Every menu item click is served by its own goroutine, forwarding into
// the controller; the controller pushes status, progress, and log lines
// back through the View interface.
package main

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"osbc/internal/bot"
	"osbc/internal/logging"
	"osbc/internal/settings"
)

// TrayView renders controller state in the system tray.
type TrayView struct {
	mu         sync.Mutex
	controller *bot.Controller
	cfg        *settings.Settings
	onQuit     func()

	statusItem   *systray.MenuItem
	progressItem *systray.MenuItem
	lastLogItem  *systray.MenuItem
	toggleItem   *systray.MenuItem
	scriptItems  map[string]*systray.MenuItem
}

// NewTrayView builds an empty view; the controller is attached after
// construction because each needs the other.
func NewTrayView(cfg *settings.Settings, onQuit func()) *TrayView {
	return &TrayView{cfg: cfg, onQuit: onQuit, scriptItems: make(map[string]*systray.MenuItem)}
}

// Attach binds the controller the menu forwards into.
func (v *TrayView) Attach(c *bot.Controller) {
	v.controller = c
}

// OnReady builds the menu. Runs on the systray goroutine.
func (v *TrayView) OnReady() {
	systray.SetTitle("OSBC")
	systray.SetTooltip("Color bot for the game client")

	v.statusItem = systray.AddMenuItem("Status: STOPPED", "Current bot status")
	v.statusItem.Disable()
	v.progressItem = systray.AddMenuItem("Progress: —", "Current script progress")
	v.progressItem.Disable()
	v.lastLogItem = systray.AddMenuItem("Last: (no activity)", "Most recent log line")
	v.lastLogItem.Disable()

	systray.AddSeparator()

	scriptsMenu := systray.AddMenuItem("Scripts", "Select a script")
	for _, name := range v.controller.Names() {
		item := scriptsMenu.AddSubMenuItemCheckbox(name, "", false)
		v.scriptItems[name] = item
		go v.handleScriptClick(name, item)
	}

	systray.AddSeparator()

	v.toggleItem = systray.AddMenuItem("Play / Stop", "Toggle the selected script")
	quitItem := systray.AddMenuItem("Quit", "Quit the application")

	go v.handleEvents(quitItem)

	logging.Info("Tray initialized with %d scripts", len(v.scriptItems))
}

func (v *TrayView) handleEvents(quitItem *systray.MenuItem) {
	for {
		select {
		case <-v.toggleItem.ClickedCh:
			v.controller.Toggle()
		case <-quitItem.ClickedCh:
			logging.Info("Quit requested by user")
			v.controller.Stop()
			if v.onQuit != nil {
				v.onQuit()
			}
			systray.Quit()
			return
		}
	}
}

func (v *TrayView) handleScriptClick(name string, item *systray.MenuItem) {
	for range item.ClickedCh {
		if err := v.controller.Select(name); err != nil {
			v.LogLine(err.Error())
			continue
		}

		v.mu.Lock()
		for other, mi := range v.scriptItems {
			if other == name {
				mi.Check()
			} else {
				mi.Uncheck()
			}
		}
		v.mu.Unlock()

		// Options come from the settings file; the tray has no form
		// surface for editing them.
		if saved := v.cfg.ScriptOptions(name); saved != nil {
			if err := v.controller.SaveOptions(saved); err != nil {
				v.LogLine(fmt.Sprintf("Saved options for %q are invalid: %v", name, err))
			}
		} else {
			v.LogLine(fmt.Sprintf("No saved options for %q; add them to the settings file", name))
		}
	}
}

// LogLine implements bot.View.
func (v *TrayView) LogLine(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.lastLogItem != nil {
		v.lastLogItem.SetTitle("Last: " + msg)
	}
}

// SetProgress implements bot.View.
func (v *TrayView) SetProgress(fraction float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.progressItem != nil {
		v.progressItem.SetTitle(fmt.Sprintf("Progress: %.0f%%", fraction*100))
	}
}

// SetStatus implements bot.View.
func (v *TrayView) SetStatus(s bot.Status) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.statusItem != nil {
		v.statusItem.SetTitle("Status: " + s.String())
	}
}

// OptionsSchema implements bot.View. The tray cannot render forms, so
// the schema is surfaced through the log for the user to mirror in the
// settings file.
func (v *TrayView) OptionsSchema(opts []bot.Option) {
	for _, opt := range opts {
		logging.Info("Option %q (%s): %s", opt.Key, opt.Type, opt.Title)
	}
}
