// Package pathfinder asks a remote routing service for tile paths across
// the world map and post-processes them for minimap-sized hops.
package pathfinder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Tile is one walkable world coordinate.
type Tile struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Chebyshev is the tile-grid distance: diagonal steps count as one.
func Chebyshev(a, b Tile) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// DefaultBaseURL is the public routing service.
const DefaultBaseURL = "https://explv-map.siisiqf.workers.dev"

// Client talks to the routing service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient targets the public service. Route queries cross the
// internet, so the timeout is generous compared to local state polls.
func NewClient() *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type pathRequest struct {
	Start  Tile   `json:"start"`
	End    Tile   `json:"end"`
	Player string `json:"player"`
}

type pathResponse struct {
	PathStatus string `json:"pathStatus"`
	Path       []Tile `json:"path"`
}

// FindPath requests a route from start to end. player selects the
// routing profile (account type) the service should assume. Any status
// other than SUCCESS becomes an error carrying the status verbatim.
func (c *Client) FindPath(start, end Tile, player string) ([]Tile, error) {
	body, err := json.Marshal(pathRequest{Start: start, End: end, Player: player})
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Post(c.BaseURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("path service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("path service: unexpected status %d", resp.StatusCode)
	}

	var out pathResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("path service: decoding: %w", err)
	}
	if out.PathStatus != "SUCCESS" {
		return nil, fmt.Errorf("path service: no route (%s)", out.PathStatus)
	}
	return out.Path, nil
}

// Densify inserts interpolated tiles so no consecutive pair is further
// apart than reach. The routing service returns sparse corner tiles;
// minimap clicks can only cover a limited distance per hop.
func Densify(path []Tile, reach int) []Tile {
	if reach < 1 || len(path) < 2 {
		return path
	}

	out := make([]Tile, 0, len(path))
	out = append(out, path[0])
	for i := 1; i < len(path); i++ {
		prev, next := path[i-1], path[i]
		dist := Chebyshev(prev, next)
		if dist > reach {
			segments := (dist + reach - 1) / reach
			for s := 1; s < segments; s++ {
				out = append(out, Tile{
					X: prev.X + (next.X-prev.X)*s/segments,
					Y: prev.Y + (next.Y-prev.Y)*s/segments,
					Z: prev.Z,
				})
			}
		}
		out = append(out, next)
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
