// Package imgsearch implements sprite search: normalized squared-difference
// template matching masked by the template's alpha channel.
//
// Templates are 32-bit BGRA PNGs. The alpha channel marks which template
// pixels participate in the match, so sprites with transparent corners
// (orbs, cursor feedback, UI anchors) match cleanly over arbitrary scene
// pixels. Smaller error means a stricter match; the default confidence
// cutoff is 0.15.
package imgsearch

import (
	"fmt"

	"gocv.io/x/gocv"

	"osbc/internal/geometry"
)

// DefaultConfidence is the squared-difference cutoff below which a match
// location is accepted.
const DefaultConfidence = 0.15

// Template is a sprite prepared for matching: the BGR base plus a
// 3-channel mask expanded from the alpha channel. Templates are loaded
// once and never mutated.
type Template struct {
	Name string
	Mat  gocv.Mat
	Mask gocv.Mat
}

// Close releases the underlying Mats.
func (t *Template) Close() {
	t.Mat.Close()
	t.Mask.Close()
}

// LoadTemplate reads a BGRA PNG from disk and splits it into the BGR base
// and the alpha mask. A template without an alpha channel gets a fully
// opaque mask injected.
func LoadTemplate(path string) (*Template, error) {
	raw := gocv.IMRead(path, gocv.IMReadUnchanged)
	if raw.Empty() {
		return nil, fmt.Errorf("failed to read template %q", path)
	}
	defer raw.Close()

	tpl, err := FromMat(path, raw)
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

// FromMat builds a template from an already-decoded Mat (3 or 4 channel).
func FromMat(name string, raw gocv.Mat) (*Template, error) {
	switch raw.Channels() {
	case 4:
		channels := gocv.Split(raw)
		defer func() {
			for _, ch := range channels {
				ch.Close()
			}
		}()

		base := gocv.NewMat()
		gocv.Merge(channels[:3], &base)

		mask := gocv.NewMat()
		gocv.Merge([]gocv.Mat{channels[3], channels[3], channels[3]}, &mask)

		return &Template{Name: name, Mat: base, Mask: mask}, nil
	case 3:
		base := raw.Clone()
		mask := gocv.NewMatWithSize(raw.Rows(), raw.Cols(), gocv.MatTypeCV8UC3)
		mask.SetTo(gocv.NewScalar(255, 255, 255, 0))
		return &Template{Name: name, Mat: base, Mask: mask}, nil
	default:
		return nil, fmt.Errorf("template %q has %d channels, want 3 or 4", name, raw.Channels())
	}
}

// SearchMat matches the template against a pre-captured BGR frame and
// returns the bounding rectangle of the best location, relative to the
// frame, iff its error is below confidence.
func SearchMat(haystack gocv.Mat, tpl *Template, confidence float64) (geometry.Rectangle, bool) {
	if confidence <= 0 {
		confidence = DefaultConfidence
	}
	if haystack.Cols() < tpl.Mat.Cols() || haystack.Rows() < tpl.Mat.Rows() {
		return geometry.Rectangle{}, false
	}

	result := gocv.NewMat()
	defer result.Close()
	gocv.MatchTemplate(haystack, tpl.Mat, &result, gocv.TmSqdiffNormed, tpl.Mask)

	minVal, _, minLoc, _ := gocv.MinMaxLoc(result)
	if float64(minVal) > confidence {
		return geometry.Rectangle{}, false
	}

	return geometry.NewRectangle(minLoc.X, minLoc.Y, tpl.Mat.Cols(), tpl.Mat.Rows()), true
}

// SearchRect screenshots the rectangle and matches the template inside it.
// The returned rectangle is in screen coordinates and carries the searched
// rectangle as its parent.
func SearchRect(rect geometry.Rectangle, tpl *Template, confidence float64) (geometry.Rectangle, bool) {
	frame, err := rect.Screenshot()
	if err != nil {
		return geometry.Rectangle{}, false
	}
	defer frame.Close()

	hit, ok := SearchMat(frame, tpl, confidence)
	if !ok {
		return geometry.Rectangle{}, false
	}

	out := hit.Translate(rect.Left, rect.Top)
	out.Parent = &rect
	return out, true
}
