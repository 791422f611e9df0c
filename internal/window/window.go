// Package window models the game client as a set of semantic screen
// regions: game view, minimap, chatbox, inventory slots, prayer and spell
// grids, status orbs, and control-panel tabs.
//
// Nothing here is hardcoded to a screen position. Four anchor sprites are
// template-matched inside the client rectangle at play time — the minimap
// (one template per layout), the chatbox, and the control panel — and
// every other region is derived from the hits via fixed offset tables.
// The tables differ between the fixed and resizable client layouts; the
// layout is detected by which minimap template matches.
//
// Regions are only valid for the lifetime of one client position and
// size. After a user resize, the window must be re-initialized or the bot
// stopped.
package window

import (
	"fmt"
	"path/filepath"

	"github.com/go-vgo/robotgo"
	"gocv.io/x/gocv"

	"osbc/internal/botutil"
	"osbc/internal/geometry"
	"osbc/internal/imgsearch"
	"osbc/internal/logging"
)

// Region counts, pinned by the client UI.
const (
	InventorySlotCount = 28
	CPTabCount         = 14
	PrayerCount        = 29
	NormalSpellCount   = 70
	ChatTabCount       = 7
)

// Fixed-layout game view size.
const (
	FixedViewWidth  = 517
	FixedViewHeight = 337
)

// Resizable-layout client padding before the 3-D view starts.
const (
	paddingLeft = 4
	paddingTop  = 4
)

// Anchors holds the four sprite templates resolved against the client.
type Anchors struct {
	MinimapFixed     *imgsearch.Template
	MinimapResizable *imgsearch.Template
	Chat             *imgsearch.Template
	ControlPanel     *imgsearch.Template
}

// LoadAnchors loads the anchor sprites from a template directory.
func LoadAnchors(dir string) (*Anchors, error) {
	load := func(name string) (*imgsearch.Template, error) {
		return imgsearch.LoadTemplate(filepath.Join(dir, name))
	}

	a := &Anchors{}
	var err error
	if a.MinimapFixed, err = load("minimap_fixed.png"); err != nil {
		return nil, err
	}
	if a.MinimapResizable, err = load("minimap.png"); err != nil {
		return nil, err
	}
	if a.Chat, err = load("chat.png"); err != nil {
		return nil, err
	}
	if a.ControlPanel, err = load("inv.png"); err != nil {
		return nil, err
	}
	return a, nil
}

// Close releases the anchor templates.
func (a *Anchors) Close() {
	a.MinimapFixed.Close()
	a.MinimapResizable.Close()
	a.Chat.Close()
	a.ControlPanel.Close()
}

// Orb is a round status indicator: the icon that gets clicked and the
// numeric readout next to it.
type Orb struct {
	Icon geometry.Rectangle
	Text geometry.Rectangle
}

// offset positions a derived region relative to an anchor hit.
type offset struct {
	dx, dy, w, h int
}

func (o offset) at(p geometry.Point) geometry.Rectangle {
	return geometry.NewRectangle(p.X+o.dx, p.Y+o.dy, o.w, o.h)
}

// minimapTable carries every region hung off the minimap anchor. The
// numbers are tied to the current client skin and differ between the two
// layouts.
type minimapTable struct {
	compass     offset
	minimap     offset
	minimapBite offset
	hpIcon      offset
	hpText      offset
	prayerIcon  offset
	prayerText  offset
	runIcon     offset
	runText     offset
	specIcon    offset
	specText    offset
	totalXP     offset
}

var fixedMinimapTable = minimapTable{
	compass:     offset{25, 6, 33, 33},
	minimap:     offset{52, 5, 155, 155},
	minimapBite: offset{52, 125, 45, 35},
	hpIcon:      offset{0, 47, 26, 26},
	hpText:      offset{3, 63, 21, 13},
	prayerIcon:  offset{0, 81, 26, 26},
	prayerText:  offset{3, 97, 21, 13},
	runIcon:     offset{10, 113, 26, 26},
	runText:     offset{13, 129, 21, 13},
	specIcon:    offset{32, 140, 26, 26},
	specText:    offset{35, 156, 21, 13},
	totalXP:     offset{-110, 8, 104, 26},
}

var resizableMinimapTable = minimapTable{
	compass:     offset{17, 4, 33, 33},
	minimap:     offset{44, 3, 155, 155},
	minimapBite: offset{44, 123, 45, 35},
	hpIcon:      offset{-8, 45, 26, 26},
	hpText:      offset{-5, 61, 21, 13},
	prayerIcon:  offset{-8, 79, 26, 26},
	prayerText:  offset{-5, 95, 21, 13},
	runIcon:     offset{2, 111, 26, 26},
	runText:     offset{5, 127, 21, 13},
	specIcon:    offset{24, 138, 26, 26},
	specText:    offset{27, 154, 21, 13},
	totalXP:     offset{-118, 6, 104, 26},
}

// Chat geometry: the anchor hits the top-left of the chatbox; the seven
// tab buttons sit below it at a fixed stride.
const (
	chatWidth     = 519
	chatHeight    = 142
	chatTabStride = 62
	chatTabWidth  = 52
	chatTabHeight = 19
)

// Control-panel geometry, panel-relative.
const (
	cpWidth  = 240
	cpHeight = 335

	invSlotW, invSlotH       = 36, 32
	invGapX, invGapY         = 5, 3
	invOriginX, invOriginY   = 40, 44
	cpTabW                   = 30
	cpTabTopH, cpTabBottomH  = 33, 34
	cpTabStride              = 33
	cpTabOriginX             = 8
	cpTabTopY, cpTabBottomY  = 5, 301
	prayerW, prayerH         = 33, 33
	prayerStride             = 37
	prayerOriginX            = 17
	prayerOriginY            = 50
	spellW, spellH           = 24, 24
	spellStride              = 26
	spellOriginX             = 14
	spellOriginY             = 40
)

// Window is the resolved coordinate system of one client instance.
// Anchors are resolved at play time, not construction time; every region
// field is zero until Initialize succeeds.
type Window struct {
	Title   string
	Client  geometry.Rectangle
	anchors *Anchors

	ClientFixed bool

	Compass      geometry.Rectangle
	Minimap      geometry.Rectangle
	HPOrb        Orb
	PrayerOrb    Orb
	RunOrb       Orb
	SpecOrb      Orb
	TotalXP      geometry.Rectangle
	Chat         geometry.Rectangle
	ChatTabs     []geometry.Rectangle
	ControlPanel geometry.Rectangle
	InvSlots     []geometry.Rectangle
	CPTabs       []geometry.Rectangle
	Prayers      []geometry.Rectangle
	SpellsNormal []geometry.Rectangle
	GameView     geometry.Rectangle

	initialized bool
}

// New creates an uninitialized window over the given client rectangle.
func New(title string, client geometry.Rectangle, anchors *Anchors) *Window {
	return &Window{Title: title, Client: client, anchors: anchors}
}

// Initialized reports whether the semantic regions are currently valid.
func (w *Window) Initialized() bool {
	return w.initialized
}

// focusFunc raises a window by title; substitutable in tests.
var focusFunc = robotgo.ActiveName

// Focus raises the client window. Best effort: a failure is logged but
// anchor resolution decides whether the window is actually usable.
func (w *Window) Focus() {
	if w.Title == "" {
		return
	}
	if err := focusFunc(w.Title); err != nil {
		logging.Warn("Could not focus window %q: %v", w.Title, err)
	}
}

// Initialize captures the client rectangle and resolves all semantic
// regions from the anchors. An error means the client is not visible in
// the expected state and the bot must not run.
func (w *Window) Initialize() error {
	timer := botutil.NewTimer("window_initialize")
	defer timer.Log()

	w.Focus()
	frame, err := w.Client.Screenshot()
	if err != nil {
		return fmt.Errorf("could not capture client: %w", err)
	}
	defer frame.Close()

	return w.InitializeFrom(frame)
}

// InitializeFrom resolves the window against a pre-captured client frame.
// Exposed so static frames can drive initialization in tests.
func (w *Window) InitializeFrom(frame gocv.Mat) error {
	w.initialized = false

	minimapHit, fixed, ok := w.findMinimap(frame)
	if !ok {
		return fmt.Errorf("minimap anchor not found; is the client visible and logged in?")
	}
	w.ClientFixed = fixed

	chatHit, ok := imgsearch.SearchMat(frame, w.anchors.Chat, imgsearch.DefaultConfidence)
	if !ok {
		return fmt.Errorf("chat anchor not found")
	}
	cpHit, ok := imgsearch.SearchMat(frame, w.anchors.ControlPanel, imgsearch.DefaultConfidence)
	if !ok {
		return fmt.Errorf("control panel anchor not found")
	}

	// Translate frame-relative hits to screen coordinates.
	origin := w.Client.TopLeft()
	w.deriveMinimapRegions(minimapHit.Translate(origin.X, origin.Y).TopLeft())
	w.deriveChatRegions(chatHit.Translate(origin.X, origin.Y).TopLeft())
	w.deriveControlPanel(cpHit.Translate(origin.X, origin.Y).TopLeft())
	w.deriveGameView()

	w.initialized = true
	layout := "resizable"
	if w.ClientFixed {
		layout = "fixed"
	}
	logging.Info("Window initialized (%s layout): view=%s inv[0]=%s", layout, w.GameView, w.InvSlots[0])
	return nil
}

func (w *Window) findMinimap(frame gocv.Mat) (geometry.Rectangle, bool, bool) {
	if hit, ok := imgsearch.SearchMat(frame, w.anchors.MinimapResizable, imgsearch.DefaultConfidence); ok {
		return hit, false, true
	}
	if hit, ok := imgsearch.SearchMat(frame, w.anchors.MinimapFixed, imgsearch.DefaultConfidence); ok {
		return hit, true, true
	}
	return geometry.Rectangle{}, false, false
}

func (w *Window) deriveMinimapRegions(anchor geometry.Point) {
	table := resizableMinimapTable
	if w.ClientFixed {
		table = fixedMinimapTable
	}

	w.Compass = table.compass.at(anchor)
	w.Minimap = table.minimap.at(anchor)
	// The stacked orb numerals overlap the minimap's bottom-left; the
	// bite hole keeps them out of minimap captures.
	w.Minimap.Holes = []geometry.Rectangle{table.minimapBite.at(anchor)}
	w.HPOrb = Orb{Icon: table.hpIcon.at(anchor), Text: table.hpText.at(anchor)}
	w.PrayerOrb = Orb{Icon: table.prayerIcon.at(anchor), Text: table.prayerText.at(anchor)}
	w.RunOrb = Orb{Icon: table.runIcon.at(anchor), Text: table.runText.at(anchor)}
	w.SpecOrb = Orb{Icon: table.specIcon.at(anchor), Text: table.specText.at(anchor)}
	w.TotalXP = table.totalXP.at(anchor)
}

func (w *Window) deriveChatRegions(anchor geometry.Point) {
	w.Chat = geometry.NewRectangle(anchor.X, anchor.Y, chatWidth, chatHeight)
	w.ChatTabs = make([]geometry.Rectangle, ChatTabCount)
	for i := range w.ChatTabs {
		w.ChatTabs[i] = geometry.NewRectangle(
			anchor.X+5+i*chatTabStride, anchor.Y+chatHeight+1,
			chatTabWidth, chatTabHeight)
	}
}

func (w *Window) deriveControlPanel(anchor geometry.Point) {
	w.ControlPanel = geometry.NewRectangle(anchor.X, anchor.Y, cpWidth, cpHeight)

	w.InvSlots = make([]geometry.Rectangle, InventorySlotCount)
	for i := range w.InvSlots {
		col := i % 4
		row := i / 4
		w.InvSlots[i] = geometry.NewRectangle(
			anchor.X+invOriginX+col*(invSlotW+invGapX),
			anchor.Y+invOriginY+row*(invSlotH+invGapY),
			invSlotW, invSlotH)
	}

	// 14 panel tabs in two rows; the bottom row is one pixel taller.
	w.CPTabs = make([]geometry.Rectangle, CPTabCount)
	for i := 0; i < 7; i++ {
		w.CPTabs[i] = geometry.NewRectangle(
			anchor.X+cpTabOriginX+i*cpTabStride, anchor.Y+cpTabTopY,
			cpTabW, cpTabTopH)
		w.CPTabs[i+7] = geometry.NewRectangle(
			anchor.X+cpTabOriginX+i*cpTabStride, anchor.Y+cpTabBottomY,
			cpTabW, cpTabBottomH)
	}

	// 29 prayers: a 5-wide grid with the last cell elided.
	w.Prayers = make([]geometry.Rectangle, PrayerCount)
	for i := range w.Prayers {
		col := i % 5
		row := i / 5
		w.Prayers[i] = geometry.NewRectangle(
			anchor.X+prayerOriginX+col*prayerStride,
			anchor.Y+prayerOriginY+row*prayerStride,
			prayerW, prayerH)
	}

	// 70 normal spells on a 7x10 grid.
	w.SpellsNormal = make([]geometry.Rectangle, NormalSpellCount)
	for i := range w.SpellsNormal {
		col := i % 7
		row := i / 7
		w.SpellsNormal[i] = geometry.NewRectangle(
			anchor.X+spellOriginX+col*spellStride,
			anchor.Y+spellOriginY+row*spellStride,
			spellW, spellH)
	}
}

func (w *Window) deriveGameView() {
	if w.ClientFixed {
		// The fixed client renders the world in a constant-size region
		// directly above the chatbox.
		w.GameView = geometry.NewRectangle(
			w.Chat.Left, w.Chat.Top-FixedViewHeight,
			FixedViewWidth, FixedViewHeight)
		w.GameView.Parent = &w.Client
		return
	}

	// Resizable: the world fills the client from the padded top-left
	// down to the control panel's bottom-right, with the overlaid UI
	// registered as capture holes.
	topLeft := geometry.Point{X: w.Client.Left + paddingLeft, Y: w.Client.Top + paddingTop}
	bottomRight := w.ControlPanel.BottomRight()
	w.GameView = geometry.FromPoints(topLeft, bottomRight)
	w.GameView.Parent = &w.Client

	minimapArea := geometry.FromPoints(
		geometry.Point{X: w.TotalXP.Left, Y: w.Client.Top},
		geometry.Point{X: w.Client.Left + w.Client.Width, Y: w.SpecOrb.Icon.Top + w.SpecOrb.Icon.Height},
	)
	chatArea := w.Chat
	chatArea.Height = chatHeight + chatTabHeight + 2
	w.GameView.Holes = []geometry.Rectangle{minimapArea, chatArea, w.ControlPanel}
}
