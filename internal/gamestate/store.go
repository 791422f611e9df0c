package gamestate

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"osbc/internal/botutil"
	"osbc/internal/logging"
)

// StateSnapshot is one push from the socket plugin. Pushes arrive every
// game tick, so it is a superset of the poll endpoints with player
// identity attached.
type StateSnapshot struct {
	Username      string      `json:"username"`
	CombatLevel   int         `json:"combat level"`
	AnimationID   int         `json:"animation"`
	AnimationPose int         `json:"animation pose"`
	RunEnergy     int         `json:"run energy"`
	Health        int         `json:"health"`
	MaxHealth     int         `json:"max health"`
	Prayer        int         `json:"prayer"`
	MaxPrayer     int         `json:"max prayer"`
	WorldPoint    WorldPoint  `json:"world point"`
	Camera        CameraState `json:"camera"`
	Mouse         MouseState  `json:"mouse"`
	Inventory     []InvSlot   `json:"inventory"`
	Equipment     []InvSlot   `json:"equipment"`
	Stats         []Stat      `json:"stats"`
	LatestMsg     string      `json:"latest msg"`
}

// DefaultStoreAddr is where the socket plugin pushes.
const DefaultStoreAddr = "127.0.0.1:5000"

// StateStore holds the latest pushed snapshot. Each POST replaces the
// snapshot wholesale; readers always see a complete, consistent state.
type StateStore struct {
	Addr string

	mu      sync.RWMutex
	snap    StateSnapshot
	hasSnap bool
	updated time.Time

	srv *http.Server
}

// NewStateStore returns a store bound to the plugin's default address.
func NewStateStore() *StateStore {
	return &StateStore{Addr: DefaultStoreAddr}
}

// Start begins accepting pushes on a background goroutine. Another
// process already owning the port is a supported setup (a second bot
// instance); the store logs once and runs without push data.
func (s *StateStore) Start() {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		logging.Info("State push port %s is taken; running on polled data only", s.Addr)
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePush)
	// No per-request logging: pushes arrive every 600 ms and would
	// drown the log file.
	s.srv = &http.Server{Handler: mux}

	logging.Info("State push server listening on %s", s.Addr)
	botutil.SafeGo("state_push_server", func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logging.Warn("State push server died: %v", err)
		}
	})
}

// Stop shuts the push server down.
func (s *StateStore) Stop(ctx context.Context) {
	if s.srv == nil {
		return
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		logging.Warn("State push server shutdown: %v", err)
	}
}

func (s *StateStore) handlePush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var snap StateSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.snap = snap
	s.hasSnap = true
	s.updated = time.Now()
	s.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

// Snapshot returns the latest push and whether one has arrived yet.
func (s *StateStore) Snapshot() (StateSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.hasSnap
}

// UpdatedAt returns when the latest push arrived.
func (s *StateStore) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// Hitpoints returns pushed current and maximum health.
func (s *StateStore) Hitpoints() (cur, max int, ok bool) {
	snap, ok := s.Snapshot()
	return snap.Health, snap.MaxHealth, ok
}

// PlayerPosition returns the pushed world point.
func (s *StateStore) PlayerPosition() (WorldPoint, bool) {
	snap, ok := s.Snapshot()
	return snap.WorldPoint, ok
}

// Username returns the pushed character name.
func (s *StateStore) Username() (string, bool) {
	snap, ok := s.Snapshot()
	return snap.Username, ok
}
