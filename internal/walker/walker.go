// Package walker moves the player across the world by clicking the
// minimap. Routes come from the pathfinder, positions from the state
// plugin; each hop is projected onto the minimap through the current
// camera yaw.
package walker

import (
	"fmt"
	"math"
	"time"

	"osbc/internal/botutil"
	"osbc/internal/gamestate"
	"osbc/internal/geometry"
	"osbc/internal/input"
	"osbc/internal/logging"
	"osbc/internal/pathfinder"
	"osbc/internal/window"
)

// ErrCancelled reports that the caller's cancel check fired mid-walk.
var ErrCancelled = fmt.Errorf("walk cancelled")

const (
	// pixelsPerTile is the minimap scale at default zoom.
	pixelsPerTile = 4
	// maxHop is the furthest tile worth clicking in one minimap hop.
	// Beyond ~12 tiles the projection leaves the minimap circle.
	maxHop = 12
	// hopArrival is how close the player must get to the clicked tile
	// before the next hop fires.
	hopArrival = 5
	// runEnergyThreshold is the energy above which run gets toggled on.
	runEnergyThreshold = 60
	// yawUnits is the client's full-circle camera yaw range.
	yawUnits = 2048
)

// pollInterval paces position checks between clicks.
var pollInterval = 300 * time.Millisecond

// hopTimeout bounds how long one minimap click may take to play out.
var hopTimeout = 20 * time.Second

// clickInterval is the minimum spacing between minimap clicks, so a run
// of instantly-satisfied hops never machine-guns the map.
var clickInterval = 500 * time.Millisecond

// Walker drives minimap travel.
type Walker struct {
	Window *window.Window
	Mouse  *input.Mouse
	State  *gamestate.PollClient
	Paths  *pathfinder.Client

	// Profile is the routing profile handed to the path service.
	Profile string

	// RunState overrides the visual run-orb read. Tests inject it; a nil
	// RunState falls back to Window.RunEnabled.
	RunState func() (bool, error)

	clicks *botutil.RateLimiter
}

// New wires a walker over shared devices.
func New(win *window.Window, mouse *input.Mouse, state *gamestate.PollClient, paths *pathfinder.Client) *Walker {
	return &Walker{
		Window:  win,
		Mouse:   mouse,
		State:   state,
		Paths:   paths,
		Profile: "NORMAL",
		clicks:  botutil.NewRateLimiter(clickInterval),
	}
}

// WalkTo routes from the player's position to dest and walks the route.
// cancel is polled between hops and while waiting on movement; a true
// return aborts within one poll. A nil cancel never aborts.
func (w *Walker) WalkTo(dest pathfinder.Tile, cancel func() bool) error {
	pos, err := w.State.PlayerPosition()
	if err != nil {
		return err
	}
	start := pathfinder.Tile{X: pos.X, Y: pos.Y, Z: pos.Plane}

	path, err := w.Paths.FindPath(start, dest, w.Profile)
	if err != nil {
		return err
	}
	return w.WalkPath(path, cancel)
}

// WalkPath walks an explicit tile route. The route is densified so every
// hop fits on the minimap.
func (w *Walker) WalkPath(tiles []pathfinder.Tile, cancel func() bool) error {
	if len(tiles) == 0 {
		return nil
	}
	if cancel == nil {
		cancel = func() bool { return false }
	}

	tiles = pathfinder.Densify(tiles, maxHop-1)
	dest := tiles[len(tiles)-1]
	logging.Info("Walking %d tiles to (%d, %d)", len(tiles), dest.X, dest.Y)

	idx := 0
	for idx < len(tiles) {
		if cancel() {
			return ErrCancelled
		}

		if err := w.checkRun(); err != nil {
			// Run is an optimization; never fail a walk over it.
			logging.Warn("Could not check run state: %v", err)
		}

		pos, err := w.State.PlayerPosition()
		if err != nil {
			return err
		}
		player := pathfinder.Tile{X: pos.X, Y: pos.Y, Z: pos.Plane}

		if w.AtDestination(dest, player) {
			return nil
		}

		// Furthest remaining tile still reachable in one hop.
		next := idx
		for i := len(tiles) - 1; i >= idx; i-- {
			if pathfinder.Chebyshev(player, tiles[i]) <= maxHop {
				next = i
				break
			}
		}
		target := tiles[next]
		idx = next + 1

		// Yaw is re-read before every click; the user may rotate the
		// camera mid-walk.
		cam, err := w.State.Camera()
		if err != nil {
			return err
		}
		for w.clicks != nil && !w.clicks.Allow() {
			if cancel() {
				return ErrCancelled
			}
			time.Sleep(pollInterval)
		}
		click := w.minimapPoint(player, target, cam.Yaw)
		w.Mouse.MoveTo(click)
		w.Mouse.Click("left", true, false)

		if err := w.awaitHop(target, cancel); err != nil {
			return err
		}
	}

	// Route exhausted; the player may still be in motion after the
	// final click, so arrival gets a full hop window.
	deadline := time.Now().Add(hopTimeout)
	for {
		if cancel() {
			return ErrCancelled
		}
		pos, err := w.State.PlayerPosition()
		if err != nil {
			return err
		}
		player := pathfinder.Tile{X: pos.X, Y: pos.Y, Z: pos.Plane}
		if w.AtDestination(dest, player) {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("route ended %d tiles from (%d, %d)",
				pathfinder.Chebyshev(dest, player), dest.X, dest.Y)
		}
		time.Sleep(pollInterval)
	}
}

// awaitHop spins until the player is within hopArrival tiles of target.
func (w *Walker) awaitHop(target pathfinder.Tile, cancel func() bool) error {
	deadline := time.Now().Add(hopTimeout)
	for {
		if cancel() {
			return ErrCancelled
		}
		pos, err := w.State.PlayerPosition()
		if err != nil {
			return err
		}
		player := pathfinder.Tile{X: pos.X, Y: pos.Y, Z: pos.Plane}
		if pathfinder.Chebyshev(player, target) <= hopArrival {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("stuck walking toward (%d, %d)", target.X, target.Y)
		}
		time.Sleep(pollInterval)
	}
}

// AtDestination reports arrival within one tile on both axes.
func (w *Walker) AtDestination(dest, player pathfinder.Tile) bool {
	dx := dest.X - player.X
	dy := dest.Y - player.Y
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}

// checkRun turns run on when energy allows it and run is currently off.
// Checked every loop pass: a walk started with run disabled or toggled
// off mid-route picks it back up as energy recovers. A run already on is
// never clicked, so a user who walks with run enabled keeps it.
func (w *Walker) checkRun() error {
	if w.Window == nil || w.Mouse == nil {
		return nil
	}
	energy, err := w.State.RunEnergy()
	if err != nil {
		return err
	}
	if energy <= runEnergyThreshold {
		return nil
	}

	on, err := w.runEnabled()
	if err != nil {
		return err
	}
	if on {
		return nil
	}
	logging.Debug("Enabling run at %d%% energy", energy)
	w.Window.ToggleRun(w.Mouse)
	return nil
}

func (w *Walker) runEnabled() (bool, error) {
	if w.RunState != nil {
		return w.RunState()
	}
	return w.Window.RunEnabled()
}

// minimapPoint projects the vector from player to target onto the
// minimap. World north is screen-up only at yaw 0; the delta is rotated
// back by the camera yaw to land on the rotated map.
func (w *Walker) minimapPoint(player, target pathfinder.Tile, yaw int) geometry.Point {
	vx := float64(target.X-player.X) * pixelsPerTile
	vy := float64(player.Y-target.Y) * pixelsPerTile

	degrees := float64(yaw) * 360.0 / yawUnits
	theta := (360.0 - degrees) * math.Pi / 180.0
	rx := vx*math.Cos(theta) - vy*math.Sin(theta)
	ry := vx*math.Sin(theta) + vy*math.Cos(theta)

	center := w.Window.Minimap.Center()
	return geometry.Point{
		X: center.X + int(math.Round(rx)),
		Y: center.Y + int(math.Round(ry)),
	}
}
