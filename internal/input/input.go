// Package input generates humanized mouse and keyboard events.
//
// Mouse movement follows a Bézier curve through randomized knots, sampled
// at a truncated-normal number of points per speed band, with optional
// per-point distortion. Clicks can carry a randomized press dwell and an
// optional red-click verification that template-matches the client's
// cursor feedback sprites around the click location.
//
// All events go through the Driver interface; RobotDriver emits real OS
// events and Recorder captures them for tests.
package input

import (
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-vgo/robotgo"

	"osbc/internal/botutil"
	"osbc/internal/geometry"
	"osbc/internal/imgsearch"
	"osbc/internal/logging"
	"osbc/internal/rng"
)

// Driver is the raw event sink.
type Driver interface {
	Position() (x, y int)
	MoveTo(x, y int)
	Toggle(button string, down bool)
	Tap(key string, modifiers ...string)
	KeyToggle(key string, down bool)
	TypeStr(text string)
}

// RobotDriver sends events to the operating system.
type RobotDriver struct{}

func (RobotDriver) Position() (int, int) { return robotgo.Location() }
func (RobotDriver) MoveTo(x, y int)      { robotgo.Move(x, y) }

func (RobotDriver) Toggle(button string, down bool) {
	if down {
		robotgo.Toggle(button)
	} else {
		robotgo.Toggle(button, "up")
	}
}

func (RobotDriver) Tap(key string, modifiers ...string) {
	args := make([]interface{}, len(modifiers))
	for i, m := range modifiers {
		args[i] = m
	}
	if err := robotgo.KeyTap(key, args...); err != nil {
		logging.Warn("Key tap %q failed: %v", key, err)
	}
}

func (RobotDriver) KeyToggle(key string, down bool) {
	state := "down"
	if !down {
		state = "up"
	}
	if err := robotgo.KeyToggle(key, state); err != nil {
		logging.Warn("Key toggle %q failed: %v", key, err)
	}
}

func (RobotDriver) TypeStr(text string) { robotgo.TypeStr(text) }

// Event is one recorded driver call.
type Event struct {
	Kind      string // "move", "toggle", "tap", "keytoggle", "type"
	X, Y      int
	Button    string
	Key       string
	Modifiers []string
	Down      bool
	Text      string
}

// Recorder is a Driver that records instead of emitting.
type Recorder struct {
	mu     sync.Mutex
	x, y   int
	events []Event
}

func (r *Recorder) Position() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.x, r.y
}

func (r *Recorder) MoveTo(x, y int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.x, r.y = x, y
	r.events = append(r.events, Event{Kind: "move", X: x, Y: y})
}

func (r *Recorder) Toggle(button string, down bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: "toggle", Button: button, Down: down})
}

func (r *Recorder) Tap(key string, modifiers ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: "tap", Key: key, Modifiers: modifiers})
}

func (r *Recorder) KeyToggle(key string, down bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: "keytoggle", Key: key, Down: down})
}

func (r *Recorder) TypeStr(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: "type", Text: text})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Speed selects how many points the movement curve is sampled at. More
// points means a slower, smoother glide.
type Speed string

const (
	SpeedSlowest Speed = "slowest"
	SpeedSlow    Speed = "slow"
	SpeedMedium  Speed = "medium"
	SpeedFast    Speed = "fast"
	SpeedFastest Speed = "fastest"
)

var speedBands = map[Speed][2]float64{
	SpeedSlowest: {85, 100},
	SpeedSlow:    {65, 80},
	SpeedMedium:  {45, 60},
	SpeedFast:    {20, 40},
	SpeedFastest: {10, 15},
}

// knotOffsetBoundary caps how far a curve knot may wander from the
// straight line between start and destination.
const knotOffsetBoundary = 100

// moveStepDelay paces the sampled curve points.
var moveStepDelay = time.Millisecond

type moveConfig struct {
	speed          Speed
	knots          int
	knotsSet       bool
	distortionMean float64
	distortionStd  float64
	distortionFreq float64
}

// MoveOption tweaks a single movement.
type MoveOption func(*moveConfig)

// WithSpeed overrides the mouse's default speed band.
func WithSpeed(s Speed) MoveOption { return func(c *moveConfig) { c.speed = s } }

// WithKnots pins the knot count instead of deriving it from distance.
func WithKnots(n int) MoveOption {
	return func(c *moveConfig) { c.knots = n; c.knotsSet = true }
}

// WithDistortion sets the per-point jitter parameters.
func WithDistortion(mean, stdev, frequency float64) MoveOption {
	return func(c *moveConfig) {
		c.distortionMean = mean
		c.distortionStd = stdev
		c.distortionFreq = frequency
	}
}

// ClickKind classifies the client's cursor feedback after a click. Red
// means the click landed on an interactable target, yellow means bare
// ground.
type ClickKind int

const (
	ClickNone ClickKind = iota
	ClickRed
	ClickYellow
)

func (k ClickKind) String() string {
	switch k {
	case ClickRed:
		return "red"
	case ClickYellow:
		return "yellow"
	default:
		return "none"
	}
}

// Mouse issues humanized pointer actions through a Driver.
type Mouse struct {
	Driver Driver
	// DefaultSpeed applies when a movement names no speed.
	DefaultSpeed Speed
	// RedClicks and YellowClicks are the cursor feedback sprites used
	// to classify verified clicks.
	RedClicks    []*imgsearch.Template
	YellowClicks []*imgsearch.Template
}

// NewMouse returns a mouse over the OS driver at the fast speed band.
func NewMouse() *Mouse {
	return &Mouse{Driver: RobotDriver{}, DefaultSpeed: SpeedFast}
}

// LoadClickTemplates loads the cursor feedback sprites from a template
// directory. Each color has four animation frames.
func (m *Mouse) LoadClickTemplates(dir string) error {
	load := func(prefix string) ([]*imgsearch.Template, error) {
		var out []*imgsearch.Template
		for i := 1; i <= 4; i++ {
			tpl, err := imgsearch.LoadTemplate(filepath.Join(dir, fmt.Sprintf("%s_%d.png", prefix, i)))
			if err != nil {
				return nil, err
			}
			out = append(out, tpl)
		}
		return out, nil
	}

	red, err := load("red")
	if err != nil {
		return err
	}
	yellow, err := load("yellow")
	if err != nil {
		return err
	}
	m.RedClicks, m.YellowClicks = red, yellow
	return nil
}

// MoveTo glides the pointer to dest along a randomized Bézier curve.
func (m *Mouse) MoveTo(dest geometry.Point, opts ...MoveOption) {
	cfg := moveConfig{
		speed:          m.DefaultSpeed,
		distortionMean: 1,
		distortionStd:  1,
		distortionFreq: 0.5,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.speed == "" {
		cfg.speed = SpeedFast
	}

	sx, sy := m.Driver.Position()
	start := geometry.Point{X: sx, Y: sy}
	dist := start.Distance(dest)
	if dist < 1 {
		m.Driver.MoveTo(dest.X, dest.Y)
		return
	}

	if !cfg.knotsSet {
		cfg.knots = knotCount(dist)
	}
	control := controlPoints(start, dest, cfg.knots)

	band := speedBands[cfg.speed]
	steps := rng.TruncatedNormalInt(band[0], band[1], math.NaN(), 0)
	if steps < 2 {
		steps = 2
	}

	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := bezierPoint(control, t)
		if i < steps && rng.Chance(cfg.distortionFreq) {
			p.X += rng.TruncatedNormalInt(
				-3*cfg.distortionStd, 3*cfg.distortionStd, cfg.distortionMean, cfg.distortionStd)
			p.Y += rng.TruncatedNormalInt(
				-3*cfg.distortionStd, 3*cfg.distortionStd, cfg.distortionMean, cfg.distortionStd)
		}
		if i == steps {
			p = dest
		}
		m.Driver.MoveTo(p.X, p.Y)
		time.Sleep(moveStepDelay)
	}
}

// MoveRel moves relative to the current position. xvar and yvar widen the
// landing spot with a truncated-normal deviation.
func (m *Mouse) MoveRel(dx, dy, xvar, yvar int, opts ...MoveOption) {
	if xvar > 0 {
		dx += rng.TruncatedNormalInt(float64(-xvar), float64(xvar), 0, float64(xvar)/2)
	}
	if yvar > 0 {
		dy += rng.TruncatedNormalInt(float64(-yvar), float64(yvar), 0, float64(yvar)/2)
	}
	x, y := m.Driver.Position()
	m.MoveTo(geometry.Point{X: x + dx, Y: y + dy}, opts...)
}

// Click presses and releases a mouse button at the current position.
// With forceDelay the press dwells a truncated-normal 30-200 ms centered
// on 60. With checkRed the area around the click is captured afterwards
// and matched against the red cursor feedback sprites; the return value
// then reports whether the click registered. Without the check it is
// always false.
func (m *Mouse) Click(button string, forceDelay, checkRed bool) bool {
	if button == "" {
		button = "left"
	}
	px, py := m.Driver.Position()

	m.Driver.Toggle(button, true)
	if forceDelay {
		dwell := rng.TruncatedNormal(30, 200, 60, 30)
		time.Sleep(time.Duration(dwell) * time.Millisecond)
	}
	m.Driver.Toggle(button, false)

	if !checkRed {
		return false
	}
	qx, qy := m.Driver.Position()
	kind := m.classifyClick(geometry.Point{X: px, Y: py}, geometry.Point{X: qx, Y: qy})
	return kind == ClickRed
}

// ClickChecked clicks and classifies the cursor feedback.
func (m *Mouse) ClickChecked(button string, forceDelay bool) ClickKind {
	if button == "" {
		button = "left"
	}
	px, py := m.Driver.Position()

	m.Driver.Toggle(button, true)
	if forceDelay {
		dwell := rng.TruncatedNormal(30, 200, 60, 30)
		time.Sleep(time.Duration(dwell) * time.Millisecond)
	}
	m.Driver.Toggle(button, false)

	qx, qy := m.Driver.Position()
	return m.classifyClick(geometry.Point{X: px, Y: py}, geometry.Point{X: qx, Y: qy})
}

// LeftClick is Click("left", false, false).
func (m *Mouse) LeftClick() { m.Click("left", false, false) }

// RightClick is Click("right", false, false).
func (m *Mouse) RightClick() { m.Click("right", false, false) }

func (m *Mouse) classifyClick(pre, post geometry.Point) ClickKind {
	if len(m.RedClicks) == 0 && len(m.YellowClicks) == 0 {
		logging.Warn("Click check requested but no feedback sprites are loaded")
		return ClickNone
	}

	// The feedback sprite renders where the press happened; the pointer
	// may have drifted by release, so capture the union of both spots.
	const pad = 15
	lo := geometry.Point{X: min(pre.X, post.X) - pad, Y: min(pre.Y, post.Y) - pad}
	hi := geometry.Point{X: max(pre.X, post.X) + pad, Y: max(pre.Y, post.Y) + pad}
	area := geometry.FromPoints(lo, hi)

	frame, err := area.Screenshot()
	if err != nil {
		logging.Warn("Click feedback capture failed: %v", err)
		return ClickNone
	}
	defer frame.Close()

	for _, tpl := range m.RedClicks {
		if _, ok := imgsearch.SearchMat(frame, tpl, imgsearch.DefaultConfidence); ok {
			return ClickRed
		}
	}
	for _, tpl := range m.YellowClicks {
		if _, ok := imgsearch.SearchMat(frame, tpl, imgsearch.DefaultConfidence); ok {
			return ClickYellow
		}
	}
	return ClickNone
}

// controlPoints builds the Bézier control polygon: start, n knots
// scattered near the travel segment, destination.
func controlPoints(start, dest geometry.Point, knots int) []geometry.Point {
	control := make([]geometry.Point, 0, knots+2)
	control = append(control, start)
	for i := 1; i <= knots; i++ {
		t := float64(i) / float64(knots+1)
		base := geometry.Point{
			X: start.X + int(t*float64(dest.X-start.X)),
			Y: start.Y + int(t*float64(dest.Y-start.Y)),
		}
		base.X += rng.TruncatedNormalInt(-knotOffsetBoundary, knotOffsetBoundary, 0, knotOffsetBoundary/3)
		base.Y += rng.TruncatedNormalInt(-knotOffsetBoundary, knotOffsetBoundary, 0, knotOffsetBoundary/3)
		control = append(control, base)
	}
	return append(control, dest)
}

// knotCount derives the curve complexity from travel distance.
func knotCount(dist float64) int {
	return botutil.Clamp(int(dist/200), 0, 3)
}

// bezierPoint evaluates the curve at t using De Casteljau reduction.
func bezierPoint(control []geometry.Point, t float64) geometry.Point {
	xs := make([]float64, len(control))
	ys := make([]float64, len(control))
	for i, p := range control {
		xs[i] = float64(p.X)
		ys[i] = float64(p.Y)
	}
	for n := len(xs) - 1; n > 0; n-- {
		for i := 0; i < n; i++ {
			xs[i] += t * (xs[i+1] - xs[i])
			ys[i] += t * (ys[i+1] - ys[i])
		}
	}
	return geometry.Point{X: int(math.Round(xs[0])), Y: int(math.Round(ys[0]))}
}

// Keyboard issues key events through a Driver.
type Keyboard struct {
	Driver Driver
}

// NewKeyboard returns a keyboard over the OS driver.
func NewKeyboard() *Keyboard { return &Keyboard{Driver: RobotDriver{}} }

// PressKey taps a key, optionally while holding modifiers.
func (k *Keyboard) PressKey(key string, modifiers ...string) {
	k.Driver.Tap(key, modifiers...)
}

// HoldKey holds a key down for the given duration.
func (k *Keyboard) HoldKey(key string, d time.Duration) {
	k.Driver.KeyToggle(key, true)
	time.Sleep(d)
	k.Driver.KeyToggle(key, false)
}

// Type enters a string with a short humanized pause between keystrokes.
func (k *Keyboard) Type(text string) {
	for _, r := range text {
		k.Driver.TypeStr(string(r))
		time.Sleep(time.Duration(rng.TruncatedNormal(20, 80, 40, 15)) * time.Millisecond)
	}
}
