// Package geometry provides the coordinate primitives the whole engine is
// built on: screen points, rectangles with capture holes, randomized
// interior sampling, and OS-level screen capture of a rectangle.
//
// Coordinates are absolute screen pixels unless a Rectangle carries a
// Parent, in which case helpers exist to translate between the two.
package geometry

import (
	"fmt"
	"image"
	"math"
	"math/rand"

	"github.com/kbinani/screenshot"
	"gocv.io/x/gocv"

	"osbc/internal/rng"
)

// Point is an integer 2-D coordinate in screen space.
type Point struct {
	X int
	Y int
}

// Distance calculates the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Rectangle is a screen region (left, top, width, height).
//
// A rectangle may carry Holes: sub-rectangles that are blanked out of any
// pixel capture of it. The resizable-layout game view relies on this so the
// overlaid minimap, chat, and control panel never feed the perception
// pipeline. A rectangle may also hold a Parent reference, used by the
// distance-based sort keys and for reconstructing screen coordinates of
// values computed relative to it.
type Rectangle struct {
	Left   int
	Top    int
	Width  int
	Height int

	Holes  []Rectangle
	Parent *Rectangle
}

// NewRectangle creates a rectangle from its top-left corner and size.
func NewRectangle(left, top, width, height int) Rectangle {
	return Rectangle{Left: left, Top: top, Width: width, Height: height}
}

// FromPoints creates the rectangle spanning two opposite corners.
func FromPoints(a, b Point) Rectangle {
	left, right := a.X, b.X
	if right < left {
		left, right = right, left
	}
	top, bottom := a.Y, b.Y
	if bottom < top {
		top, bottom = bottom, top
	}
	return Rectangle{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

func (r Rectangle) String() string {
	return fmt.Sprintf("Rectangle(%d, %d, %dx%d)", r.Left, r.Top, r.Width, r.Height)
}

// Center returns the center point of the rectangle.
func (r Rectangle) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// TopLeft returns the top-left corner.
func (r Rectangle) TopLeft() Point {
	return Point{X: r.Left, Y: r.Top}
}

// TopRight returns the top-right corner.
func (r Rectangle) TopRight() Point {
	return Point{X: r.Left + r.Width, Y: r.Top}
}

// BottomLeft returns the bottom-left corner.
func (r Rectangle) BottomLeft() Point {
	return Point{X: r.Left, Y: r.Top + r.Height}
}

// BottomRight returns the bottom-right corner.
func (r Rectangle) BottomRight() Point {
	return Point{X: r.Left + r.Width, Y: r.Top + r.Height}
}

// CenterLeft returns the midpoint of the left edge.
func (r Rectangle) CenterLeft() Point {
	return Point{X: r.Left, Y: r.Top + r.Height/2}
}

// Contains checks if a point falls within the rectangle.
func (r Rectangle) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Left+r.Width &&
		p.Y >= r.Top && p.Y <= r.Top+r.Height
}

// Intersects reports whether two rectangles overlap.
func (r Rectangle) Intersects(other Rectangle) bool {
	return r.Left < other.Left+other.Width &&
		r.Left+r.Width > other.Left &&
		r.Top < other.Top+other.Height &&
		r.Top+r.Height > other.Top
}

// Translate returns a copy shifted by (dx, dy). Holes move with it.
func (r Rectangle) Translate(dx, dy int) Rectangle {
	out := r
	out.Left += dx
	out.Top += dy
	out.Holes = make([]Rectangle, len(r.Holes))
	for i, h := range r.Holes {
		out.Holes[i] = h.Translate(dx, dy)
	}
	return out
}

// ToImageRect converts to the stdlib image.Rectangle form used by gocv.
func (r Rectangle) ToImageRect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

// RandomPointUniform samples a uniform interior point.
func (r Rectangle) RandomPointUniform() Point {
	if r.Width <= 0 || r.Height <= 0 {
		return r.TopLeft()
	}
	return Point{
		X: r.Left + rand.Intn(r.Width+1),
		Y: r.Top + rand.Intn(r.Height+1),
	}
}

// RandomPoint draws a click point from the two-stage distribution.
//
// With ~25% probability the point is uniform over the whole rectangle.
// Otherwise a seed from the supplied daily profile selects a preferred
// sub-region: the rectangle is inset by a random fraction o in
// [0.15, 0.35] of its size, the seed weights a spot inside that interior
// box, and a truncated normal (stdev one-third of the box half-width)
// clusters the sample around it. The result is always inside r.
func (r Rectangle) RandomPoint(seeds []rng.Seed) Point {
	if r.Width <= 0 || r.Height <= 0 {
		return r.TopLeft()
	}
	if len(seeds) == 0 || rng.Chance(0.25) {
		return Point{
			X: r.Left + rand.Intn(r.Width+1),
			Y: r.Top + rand.Intn(r.Height+1),
		}
	}

	seed := seeds[rand.Intn(len(seeds))]
	o := 0.15 + rand.Float64()*0.20

	dx := int(o * float64(r.Width))
	dy := int(o * float64(r.Height))
	inner := Rectangle{
		Left:   r.Left + dx,
		Top:    r.Top + dy,
		Width:  r.Width - 2*dx,
		Height: r.Height - 2*dy,
	}
	if inner.Width <= 1 || inner.Height <= 1 {
		return r.RandomPointUniform()
	}

	meanX := float64(inner.Left) + seed.FX*float64(inner.Width)
	meanY := float64(inner.Top) + seed.FY*float64(inner.Height)
	stdevX := float64(inner.Width) / 2 / 3
	stdevY := float64(inner.Height) / 2 / 3

	return Point{
		X: rng.TruncatedNormalInt(float64(inner.Left), float64(inner.Left+inner.Width), meanX, stdevX),
		Y: rng.TruncatedNormalInt(float64(inner.Top), float64(inner.Top+inner.Height), meanY, stdevY),
	}
}

// CaptureFunc grabs a screen region as an RGBA image. It defaults to
// OS-level capture and is a package variable so tests can substitute
// synthetic frames.
var CaptureFunc = func(x, y, width, height int) (*image.RGBA, error) {
	return screenshot.Capture(x, y, width, height)
}

// Screenshot captures the rectangle's pixels as a BGR Mat, blanking every
// hole with solid black before returning. Callers own the Mat.
func (r Rectangle) Screenshot() (gocv.Mat, error) {
	img, err := CaptureFunc(r.Left, r.Top, r.Width, r.Height)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to capture %s: %w", r, err)
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to convert capture of %s: %w", r, err)
	}

	for _, hole := range r.Holes {
		// Hole coordinates are screen-absolute; clip to this capture.
		rel := image.Rect(hole.Left-r.Left, hole.Top-r.Top,
			hole.Left-r.Left+hole.Width, hole.Top-r.Top+hole.Height)
		rel = rel.Intersect(image.Rect(0, 0, r.Width, r.Height))
		if rel.Empty() {
			continue
		}
		region := mat.Region(rel)
		region.SetTo(gocv.NewScalar(0, 0, 0, 0))
		region.Close()
	}

	return mat, nil
}
