package pathfinder

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFindPathSuccess(t *testing.T) {
	var gotReq pathRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(pathResponse{
			PathStatus: "SUCCESS",
			Path:       []Tile{{3221, 3218, 0}, {3230, 3226, 0}},
		})
	}))
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL

	path, err := c.FindPath(Tile{3221, 3218, 0}, Tile{3230, 3226, 0}, "NORMAL")
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if len(path) != 2 || path[1] != (Tile{3230, 3226, 0}) {
		t.Errorf("path = %v", path)
	}
	if gotReq.Player != "NORMAL" || gotReq.Start.X != 3221 || gotReq.End.Y != 3226 {
		t.Errorf("request = %+v", gotReq)
	}
}

func TestFindPathBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(pathResponse{PathStatus: "BLOCKED"})
	}))
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL

	if _, err := c.FindPath(Tile{}, Tile{}, "NORMAL"); err == nil {
		t.Fatal("expected an error for a non-SUCCESS status")
	}
}

func TestFindPathHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL

	if _, err := c.FindPath(Tile{}, Tile{}, "NORMAL"); err == nil {
		t.Fatal("expected an error for a 502 response")
	}
}

func TestChebyshev(t *testing.T) {
	cases := []struct {
		a, b Tile
		want int
	}{
		{Tile{0, 0, 0}, Tile{0, 0, 0}, 0},
		{Tile{0, 0, 0}, Tile{5, 3, 0}, 5},
		{Tile{0, 0, 0}, Tile{-4, 9, 0}, 9},
		{Tile{2, 2, 0}, Tile{3, 3, 0}, 1},
	}
	for _, tc := range cases {
		if got := Chebyshev(tc.a, tc.b); got != tc.want {
			t.Errorf("Chebyshev(%v, %v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestDensifyBoundsHopDistance(t *testing.T) {
	path := []Tile{{3200, 3200, 0}, {3240, 3215, 0}, {3241, 3216, 0}, {3241, 3280, 0}}
	dense := Densify(path, 11)

	if dense[0] != path[0] || dense[len(dense)-1] != path[len(path)-1] {
		t.Fatal("densify must keep the endpoints")
	}
	for i := 1; i < len(dense); i++ {
		if d := Chebyshev(dense[i-1], dense[i]); d > 11 {
			t.Fatalf("hop %d has distance %d, want <= 11", i, d)
		}
	}

	// Original tiles survive in order.
	idx := 0
	for _, tile := range dense {
		if idx < len(path) && tile == path[idx] {
			idx++
		}
	}
	if idx != len(path) {
		t.Errorf("only %d of %d original tiles survived", idx, len(path))
	}
}

func TestDensifyShortPathUntouched(t *testing.T) {
	path := []Tile{{0, 0, 0}, {5, 5, 0}}
	dense := Densify(path, 11)
	if len(dense) != 2 {
		t.Errorf("short path grew to %d tiles", len(dense))
	}
}
