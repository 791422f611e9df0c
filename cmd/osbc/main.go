// OSBC is a perception and actuation engine for the game client: it
// reads the screen and the state plugins, and drives the mouse and
// keyboard through humanized input. Scripts plug into the controller and
// are toggled from the tray or the global hotkey.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getlantern/systray"
	"github.com/kbinani/screenshot"

	"osbc/internal/bot"
	"osbc/internal/gamestate"
	"osbc/internal/geometry"
	"osbc/internal/hotkey"
	"osbc/internal/input"
	"osbc/internal/logging"
	"osbc/internal/pathfinder"
	"osbc/internal/settings"
	"osbc/internal/window"
)

const (
	logPath      = "osbc.log"
	settingsPath = "settings.yaml"
)

func main() {
	if err := logging.Init(logPath); err != nil {
		os.Stderr.WriteString("could not open log file: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logging.Close()
	logging.Info("OSBC starting")

	cfg, err := settings.Load(settingsPath)
	if err != nil {
		logging.Error("Settings: %v", err)
		os.Exit(1)
	}

	store := gamestate.NewStateStore()
	store.Start()

	anchors, err := window.LoadAnchors(cfg.TemplateDir())
	if err != nil {
		logging.Error("Anchor templates: %v", err)
		os.Exit(1)
	}
	defer anchors.Close()

	// Anchors are searched inside the primary display; the client can
	// sit anywhere on it.
	display := screenshot.GetDisplayBounds(0)
	client := geometry.NewRectangle(display.Min.X, display.Min.Y, display.Dx(), display.Dy())
	win := window.New(cfg.WindowTitle(), client, anchors)

	mouse := input.NewMouse()
	if err := mouse.LoadClickTemplates(cfg.TemplateDir()); err != nil {
		logging.Warn("Click feedback sprites unavailable: %v", err)
	}
	keyboard := input.NewKeyboard()

	state := gamestate.NewPollClient()
	paths := pathfinder.NewClient()

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		store.Stop(ctx)
	}

	view := NewTrayView(cfg, shutdown)
	controller := bot.NewController(view, win, mouse, keyboard)
	controller.Register("State Monitor", newMonitorScript(state))
	controller.Register("Walk To", newWalkScript(state, paths, cfg.PathProfile()))
	view.Attach(controller)

	listener := hotkey.New(cfg.HotkeyCombo(), controller.Toggle)
	listener.Start()
	defer listener.Stop()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		logging.Info("Signal received; shutting down")
		controller.Stop()
		shutdown()
		systray.Quit()
	}()

	systray.Run(view.OnReady, func() {
		logging.Info("OSBC exiting")
	})
}
