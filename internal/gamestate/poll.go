// Package gamestate reads live player data out of the client's companion
// plugins. Two transports exist: PollClient pulls JSON from the HTTP
// endpoint plugin on port 8081, and StateStore accepts pushes from the
// socket plugin on port 5000. The poll client is the authority; the
// store is a secondary feed for scripts that want push-rate data.
package gamestate

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"osbc/internal/geometry"
)

// ErrLoggedOut is returned by derived queries when the endpoint reports
// no player data.
var ErrLoggedOut = fmt.Errorf("player is not logged in")

// InvSlot is one inventory or equipment slot. ID -1 means empty.
type InvSlot struct {
	ID       int `json:"id"`
	Quantity int `json:"quantity"`
}

// Empty reports whether the slot holds nothing.
func (s InvSlot) Empty() bool { return s.ID == -1 || s.ID == 0 && s.Quantity == 0 }

// Stat is one row of the skill table.
type Stat struct {
	Stat         string `json:"stat"`
	Level        int    `json:"level"`
	BoostedLevel int    `json:"boostedLevel"`
	XP           int    `json:"xp"`
}

// CameraState mirrors the plugin's camera block. x/y/z is the camera
// position, x2/y2/z2 the focal point it looks at.
type CameraState struct {
	Yaw   int `json:"yaw"`
	Pitch int `json:"pitch"`
	X     int `json:"x"`
	Y     int `json:"y"`
	Z     int `json:"z"`
	X2    int `json:"x2"`
	Y2    int `json:"y2"`
	Z2    int `json:"z2"`
}

// MouseState is the in-client mouse position.
type MouseState struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// WorldPoint locates the player on the world grid.
type WorldPoint struct {
	X        int `json:"x"`
	Y        int `json:"y"`
	Plane    int `json:"plane"`
	RegionID int `json:"regionID"`
	RegionX  int `json:"regionX"`
	RegionY  int `json:"regionY"`
}

// Events is the plugin's grab-bag endpoint: animation, energy, combat
// and camera state in one payload.
type Events struct {
	AnimationID     int         `json:"animation"`
	AnimationPose   int         `json:"animation pose"`
	LatestMsg       string      `json:"latest msg"`
	RunEnergy       int         `json:"run energy"`
	GameTick        int         `json:"game tick"`
	InteractingCode string      `json:"interacting code"`
	NPCName         string      `json:"npc name"`
	NPCHealth       string      `json:"npc health"`
	Health          string      `json:"health"`
	Camera          CameraState `json:"camera"`
	Mouse           MouseState  `json:"mouse"`
	WorldPoint      WorldPoint  `json:"worldPoint"`
}

// RegionData is the player's region and intra-region coordinates.
type RegionData struct {
	ID int
	X  int
	Y  int
}

// Idle animation poses. The standing pose differs between genders.
var idlePoses = map[int]bool{808: true, 813: true}

// PollClient pulls player state from the HTTP endpoint plugin.
type PollClient struct {
	BaseURL string
	HTTP    *http.Client

	mu       sync.Mutex
	baseline map[string]int
}

// NewPollClient targets the plugin's default port with a short timeout;
// a hung client must never hang a script.
func NewPollClient() *PollClient {
	return &PollClient{
		BaseURL:  "http://localhost:8081",
		HTTP:     &http.Client{Timeout: time.Second},
		baseline: make(map[string]int),
	}
}

// get decodes one endpoint. ok=false without error means the plugin
// answered 204: nobody is logged in.
func (c *PollClient) get(path string, out any) (bool, error) {
	resp, err := c.HTTP.Get(c.BaseURL + path)
	if err != nil {
		return false, fmt.Errorf("state endpoint %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("state endpoint %s: decoding: %w", path, err)
		}
		return true, nil
	case http.StatusNoContent:
		io.Copy(io.Discard, resp.Body)
		return false, nil
	default:
		io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("state endpoint %s: unexpected status %d", path, resp.StatusCode)
	}
}

// Inventory returns the 28 inventory slots.
func (c *PollClient) Inventory() ([]InvSlot, bool, error) {
	var slots []InvSlot
	ok, err := c.get("/inv", &slots)
	return slots, ok, err
}

// Stats returns the skill table, "Overall" first.
func (c *PollClient) Stats() ([]Stat, bool, error) {
	var stats []Stat
	ok, err := c.get("/stats", &stats)
	return stats, ok, err
}

// Equipment returns the 11 worn slots.
func (c *PollClient) Equipment() ([]InvSlot, bool, error) {
	var slots []InvSlot
	ok, err := c.get("/equip", &slots)
	return slots, ok, err
}

// Events returns the combined events payload.
func (c *PollClient) Events() (Events, bool, error) {
	var ev Events
	ok, err := c.get("/events", &ev)
	return ev, ok, err
}

func (c *PollClient) events() (Events, error) {
	ev, ok, err := c.Events()
	if err != nil {
		return Events{}, err
	}
	if !ok {
		return Events{}, ErrLoggedOut
	}
	return ev, nil
}

func (c *PollClient) stat(name string) (Stat, error) {
	stats, ok, err := c.Stats()
	if err != nil {
		return Stat{}, err
	}
	if !ok {
		return Stat{}, ErrLoggedOut
	}
	for _, s := range stats {
		if strings.EqualFold(s.Stat, name) {
			return s, nil
		}
	}
	return Stat{}, fmt.Errorf("unknown skill %q", name)
}

// Hitpoints returns current (boosted) and maximum hitpoints.
func (c *PollClient) Hitpoints() (cur, max int, err error) {
	s, err := c.stat("Hitpoints")
	if err != nil {
		return 0, 0, err
	}
	return s.BoostedLevel, s.Level, nil
}

// RunEnergy returns energy on the 0-100 scale.
func (c *PollClient) RunEnergy() (int, error) {
	ev, err := c.events()
	if err != nil {
		return 0, err
	}
	return ev.RunEnergy / 100, nil
}

// Animation returns the current animation ID, -1 when none plays.
func (c *PollClient) Animation() (int, error) {
	ev, err := c.events()
	if err != nil {
		return 0, err
	}
	return ev.AnimationID, nil
}

// minIdleWindow is how long idleness must sustain before it counts; a
// single idle frame between ability animations proves nothing.
const minIdleWindow = 800 * time.Millisecond

// idlePollInterval paces IsPlayerIdle sampling.
var idlePollInterval = 100 * time.Millisecond

// IsPlayerIdle observes the player for at least window (clamped up to
// 0.8 s) and reports true only when every sample shows no animation and
// an idle pose.
func (c *PollClient) IsPlayerIdle(window time.Duration) (bool, error) {
	if window < minIdleWindow {
		window = minIdleWindow
	}
	deadline := time.Now().Add(window)
	for {
		ev, err := c.events()
		if err != nil {
			return false, err
		}
		if ev.AnimationID != -1 || !idlePoses[ev.AnimationPose] {
			return false, nil
		}
		if !time.Now().Before(deadline) {
			return true, nil
		}
		time.Sleep(idlePollInterval)
	}
}

// SkillLevel returns the boosted level of a skill.
func (c *PollClient) SkillLevel(name string) (int, error) {
	s, err := c.stat(name)
	if err != nil {
		return 0, err
	}
	return s.BoostedLevel, nil
}

// TotalXP returns overall experience.
func (c *PollClient) TotalXP() (int, error) {
	s, err := c.stat("Overall")
	if err != nil {
		return 0, err
	}
	return s.XP, nil
}

// XPGained returns experience earned in a skill since the first time this
// client observed it.
func (c *PollClient) XPGained(name string) (int, error) {
	s, err := c.stat(name)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	base, seen := c.baseline[strings.ToLower(name)]
	if !seen {
		c.baseline[strings.ToLower(name)] = s.XP
		return 0, nil
	}
	return s.XP - base, nil
}

// xpPollInterval paces WaitUntilGainedXP.
var xpPollInterval = 200 * time.Millisecond

// WaitUntilGainedXP blocks until the skill's experience rises above its
// value at call time, or the timeout passes. Returns whether xp was
// gained.
func (c *PollClient) WaitUntilGainedXP(name string, timeout time.Duration) (bool, error) {
	start, err := c.stat(name)
	if err != nil {
		return false, err
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		time.Sleep(xpPollInterval)
		s, err := c.stat(name)
		if err != nil {
			return false, err
		}
		if s.XP > start.XP {
			return true, nil
		}
	}
	return false, nil
}

// GameTick returns the current server tick counter.
func (c *PollClient) GameTick() (int, error) {
	ev, err := c.events()
	if err != nil {
		return 0, err
	}
	return ev.GameTick, nil
}

// PlayerPosition returns the player's world point.
func (c *PollClient) PlayerPosition() (WorldPoint, error) {
	ev, err := c.events()
	if err != nil {
		return WorldPoint{}, err
	}
	return ev.WorldPoint, nil
}

// Region returns the player's region data.
func (c *PollClient) Region() (RegionData, error) {
	ev, err := c.events()
	if err != nil {
		return RegionData{}, err
	}
	wp := ev.WorldPoint
	return RegionData{ID: wp.RegionID, X: wp.RegionX, Y: wp.RegionY}, nil
}

// Camera returns the current camera state.
func (c *PollClient) Camera() (CameraState, error) {
	ev, err := c.events()
	if err != nil {
		return CameraState{}, err
	}
	return ev.Camera, nil
}

// MousePos returns the in-client mouse position.
func (c *PollClient) MousePos() (geometry.Point, error) {
	ev, err := c.events()
	if err != nil {
		return geometry.Point{}, err
	}
	return geometry.Point{X: ev.Mouse.X, Y: ev.Mouse.Y}, nil
}

// IsInCombat reports whether an NPC is currently engaging the player.
func (c *PollClient) IsInCombat() (bool, error) {
	ev, err := c.events()
	if err != nil {
		return false, err
	}
	return npcPresent(ev.NPCName), nil
}

// OpposingNPCName returns the engaging NPC's name, empty when none.
func (c *PollClient) OpposingNPCName() (string, error) {
	ev, err := c.events()
	if err != nil {
		return "", err
	}
	if !npcPresent(ev.NPCName) {
		return "", nil
	}
	return ev.NPCName, nil
}

// OpposingNPCHealth returns the NPC health string exactly as the plugin
// reports it. The format varies by NPC, so no parsing is attempted.
func (c *PollClient) OpposingNPCHealth() (string, error) {
	ev, err := c.events()
	if err != nil {
		return "", err
	}
	return ev.NPCHealth, nil
}

func npcPresent(name string) bool {
	return name != "" && name != "null"
}

// IsItemInInventory reports whether any of the given item IDs is held.
func (c *PollClient) IsItemInInventory(ids ...int) (bool, error) {
	slots, err := c.InventorySlotsWith(ids...)
	if err != nil {
		return false, err
	}
	return len(slots) > 0, nil
}

// InventorySlotsWith returns the indexes of slots holding any of ids.
func (c *PollClient) InventorySlotsWith(ids ...int) ([]int, error) {
	inv, ok, err := c.Inventory()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLoggedOut
	}

	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []int
	for i, slot := range inv {
		if want[slot.ID] {
			out = append(out, i)
		}
	}
	return out, nil
}

// StackAmount returns the quantity of the first stack of the item, 0 when
// the item is absent.
func (c *PollClient) StackAmount(id int) (int, error) {
	inv, ok, err := c.Inventory()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrLoggedOut
	}
	for _, slot := range inv {
		if slot.ID == id {
			return slot.Quantity, nil
		}
	}
	return 0, nil
}

// FirstEmptySlot returns the index of the first empty slot, -1 when the
// inventory is full.
func (c *PollClient) FirstEmptySlot() (int, error) {
	inv, ok, err := c.Inventory()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrLoggedOut
	}
	for i, slot := range inv {
		if slot.Empty() {
			return i, nil
		}
	}
	return -1, nil
}

// InventoryFull reports whether no slot is empty.
func (c *PollClient) InventoryFull() (bool, error) {
	idx, err := c.FirstEmptySlot()
	if err != nil {
		return false, err
	}
	return idx == -1, nil
}

// InventoryEmpty reports whether every slot is empty.
func (c *PollClient) InventoryEmpty() (bool, error) {
	inv, ok, err := c.Inventory()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrLoggedOut
	}
	for _, slot := range inv {
		if !slot.Empty() {
			return false, nil
		}
	}
	return true, nil
}
