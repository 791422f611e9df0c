// Package colors defines the BGR color ranges the perception pipeline
// isolates, and the mask construction shared by the tagged-object
// extractor and the OCR front end.
//
// A Color is a pair of BGR triples (lower, upper). Exact colors carry the
// same triple twice. Isolation ORs the inRange masks of any list of
// colors into one binary mask, so a caller can match, say, the green and
// red states of an orb readout in a single pass.
package colors

import (
	"gocv.io/x/gocv"
)

// Color is an inclusive BGR range. Lower == Upper for an exact color.
type Color struct {
	Name  string
	Lower gocv.Scalar
	Upper gocv.Scalar
}

// Exact builds a single-value color.
func Exact(name string, b, g, r float64) Color {
	s := gocv.NewScalar(b, g, r, 0)
	return Color{Name: name, Lower: s, Upper: s}
}

// Range builds a color spanning [lower, upper] per channel.
func Range(name string, lb, lg, lr, ub, ug, ur float64) Color {
	return Color{
		Name:  name,
		Lower: gocv.NewScalar(lb, lg, lr, 0),
		Upper: gocv.NewScalar(ub, ug, ur, 0),
	}
}

// Solid colors matching the RuneLite object tag palette.
var (
	Black  = Exact("black", 0, 0, 0)
	White  = Exact("white", 255, 255, 255)
	Red    = Exact("red", 0, 0, 255)
	Green  = Exact("green", 0, 255, 0)
	Blue   = Exact("blue", 255, 0, 0)
	Cyan   = Exact("cyan", 255, 255, 0)
	Yellow = Exact("yellow", 0, 255, 255)
	Pink   = Exact("pink", 255, 0, 255)
	Purple = Exact("purple", 255, 0, 170)
	Orange = Exact("orange", 0, 144, 255)
)

// Slightly-off ranges for anti-aliased tag outlines, where the client
// blends the tag color with the scene underneath.
var (
	OffWhite  = Range("off-white", 190, 190, 190, 255, 255, 255)
	OffRed    = Range("off-red", 0, 0, 180, 85, 85, 255)
	OffGreen  = Range("off-green", 0, 180, 0, 85, 255, 85)
	OffCyan   = Range("off-cyan", 180, 180, 0, 255, 255, 85)
	OffYellow = Range("off-yellow", 0, 180, 180, 85, 255, 255)
	OffPink   = Range("off-pink", 180, 0, 180, 255, 85, 255)
	OffOrange = Range("off-orange", 0, 100, 180, 85, 190, 255)
)

// Text colors used by the bitmap-font OCR.
var (
	TextGreen  = Exact("text-green", 0, 255, 0)
	TextRed    = Exact("text-red", 0, 0, 255)
	TextWhite  = Exact("text-white", 255, 255, 255)
	TextYellow = Exact("text-yellow", 0, 255, 255)
	TextOrange = Exact("text-orange", 32, 144, 255)
	TextBlue   = Exact("text-blue", 255, 0, 0)
	// Orb numerals render green normally and red when the stat is
	// drained; orb reads isolate both.
	OrbText = []Color{TextGreen, TextRed}
)

// RunOrbOn is the gold tint the run orb icon takes while run mode is
// enabled; the disabled icon is grey-brown and falls outside the range.
var RunOrbOn = Range("run-orb-on", 0, 170, 190, 110, 255, 255)

// Isolate builds a binary 0/255 mask of every pixel in img that falls in
// any of the given color ranges. The caller owns the returned Mat.
func Isolate(img gocv.Mat, cs ...Color) gocv.Mat {
	mask := gocv.Zeros(img.Rows(), img.Cols(), gocv.MatTypeCV8U)

	for _, c := range cs {
		part := gocv.NewMat()
		gocv.InRangeWithScalar(img, c.Lower, c.Upper, &part)
		gocv.BitwiseOr(mask, part, &mask)
		part.Close()
	}

	gocv.Threshold(mask, &mask, 1, 255, gocv.ThresholdBinary)
	return mask
}
