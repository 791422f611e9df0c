// Package objects extracts tagged scene entities from the game view.
//
// A tagged object is anything outlined by the user's marker plugin in a
// known color. Extraction masks the view to the tag colors, walks the
// outer contours, and produces one OutlineObject per blob. Contours are
// extracted with chain-approx-none because consumers click random points
// inside the actual outline, not inside the bounding box, so the full
// interior pixel set has to survive extraction.
//
// Objects are transient: one screenshot produces one list, valid until
// the next frame.
package objects

import (
	"image/color"
	"math/rand"
	"sort"

	"gocv.io/x/gocv"

	"osbc/internal/colors"
	"osbc/internal/geometry"
)

// DefaultMinArea rejects contour noise below this many pixels.
const DefaultMinArea = 10.0

// OutlineObject is a discovered on-screen object. BBox, Center, and
// Pixels are relative to the parent rectangle (normally the game view);
// the parent reference reconstructs screen coordinates.
type OutlineObject struct {
	BBox   geometry.Rectangle
	Center geometry.Point
	Pixels []geometry.Point
	Parent geometry.Rectangle
}

// ScreenCenter returns the object center in screen coordinates.
func (o *OutlineObject) ScreenCenter() geometry.Point {
	return geometry.Point{X: o.Parent.Left + o.Center.X, Y: o.Parent.Top + o.Center.Y}
}

// RandomPixel returns a random interior pixel in screen coordinates, so
// clicks land inside the actual shape rather than the bounding box.
func (o *OutlineObject) RandomPixel() geometry.Point {
	if len(o.Pixels) == 0 {
		return o.ScreenCenter()
	}
	p := o.Pixels[rand.Intn(len(o.Pixels))]
	return geometry.Point{X: o.Parent.Left + p.X, Y: o.Parent.Top + p.Y}
}

// Extract screenshots the view rectangle and extracts every tagged object
// of the given colors from it.
func Extract(view geometry.Rectangle, cs ...colors.Color) ([]OutlineObject, error) {
	frame, err := view.Screenshot()
	if err != nil {
		return nil, err
	}
	defer frame.Close()
	return ExtractMat(frame, view, DefaultMinArea, cs...), nil
}

// ExtractMat extracts tagged objects from a pre-captured BGR frame.
// Coordinates in the result are relative to the frame; parent carries the
// screen rectangle the frame was captured from.
func ExtractMat(frame gocv.Mat, parent geometry.Rectangle, minArea float64, cs ...colors.Color) []OutlineObject {
	if minArea <= 0 {
		minArea = DefaultMinArea
	}

	mask := colors.Isolate(frame, cs...)
	defer mask.Close()

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	var out []OutlineObject
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if gocv.ContourArea(contour) < minArea {
			continue
		}

		bbox := gocv.BoundingRect(contour)

		// Fill the contour so the interior pixel set includes the
		// whole shape, not just the outline.
		filled := gocv.Zeros(mask.Rows(), mask.Cols(), gocv.MatTypeCV8U)
		gocv.DrawContours(&filled, contours, i, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

		var pixels []geometry.Point
		var sumX, sumY int
		for y := bbox.Min.Y; y < bbox.Max.Y; y++ {
			for x := bbox.Min.X; x < bbox.Max.X; x++ {
				if filled.GetUCharAt(y, x) == 0 {
					continue
				}
				pixels = append(pixels, geometry.Point{X: x, Y: y})
				sumX += x
				sumY += y
			}
		}
		filled.Close()

		if len(pixels) == 0 {
			continue
		}

		out = append(out, OutlineObject{
			BBox:   geometry.NewRectangle(bbox.Min.X, bbox.Min.Y, bbox.Dx(), bbox.Dy()),
			Center: geometry.Point{X: sumX / len(pixels), Y: sumY / len(pixels)},
			Pixels: pixels,
			Parent: parent,
		})
	}
	return out
}

// SortByDistanceFrom orders objects by distance of their centers from an
// arbitrary frame-relative point. Ties keep insertion order.
func SortByDistanceFrom(objs []OutlineObject, p geometry.Point) {
	sort.SliceStable(objs, func(i, j int) bool {
		return objs[i].Center.Distance(p) < objs[j].Center.Distance(p)
	})
}

// SortByDistanceFromRectCenter orders objects by distance from the parent
// rectangle's center — "the nearest thing to the player" for a game-view
// parent, since the player sits at the view center.
func SortByDistanceFromRectCenter(objs []OutlineObject) {
	if len(objs) == 0 {
		return
	}
	parent := objs[0].Parent
	center := geometry.Point{X: parent.Width / 2, Y: parent.Height / 2}
	SortByDistanceFrom(objs, center)
}

// SortByDistanceFromTopLeft orders objects by distance from the parent's
// top-left corner.
func SortByDistanceFromTopLeft(objs []OutlineObject) {
	SortByDistanceFrom(objs, geometry.Point{X: 0, Y: 0})
}

// SortByDistanceFromCenterLeft orders objects by distance from the
// midpoint of the parent's left edge.
func SortByDistanceFromCenterLeft(objs []OutlineObject) {
	if len(objs) == 0 {
		return
	}
	parent := objs[0].Parent
	SortByDistanceFrom(objs, geometry.Point{X: 0, Y: parent.Height / 2})
}
