package imgsearch

import (
	"image"
	"testing"

	"gocv.io/x/gocv"
)

// paint fills a sub-rectangle of a BGR Mat with a solid color.
func paint(mat gocv.Mat, r image.Rectangle, b, g, rr float64) {
	region := mat.Region(r)
	region.SetTo(gocv.NewScalar(b, g, rr, 0))
	region.Close()
}

// spriteTemplate builds a 10x10 opaque template with a distinctive pattern.
func spriteTemplate(t *testing.T) *Template {
	t.Helper()
	raw := gocv.Zeros(10, 10, gocv.MatTypeCV8UC3)
	defer raw.Close()
	paint(raw, image.Rect(0, 0, 10, 5), 20, 200, 40)
	paint(raw, image.Rect(0, 5, 10, 10), 240, 30, 180)

	tpl, err := FromMat("sprite", raw)
	if err != nil {
		t.Fatalf("FromMat failed: %v", err)
	}
	return tpl
}

func TestSearchMatFindsSprite(t *testing.T) {
	tpl := spriteTemplate(t)
	defer tpl.Close()

	haystack := gocv.Zeros(60, 80, gocv.MatTypeCV8UC3)
	defer haystack.Close()
	paint(haystack, image.Rect(30, 20, 40, 25), 20, 200, 40)
	paint(haystack, image.Rect(30, 25, 40, 30), 240, 30, 180)

	hit, ok := SearchMat(haystack, tpl, DefaultConfidence)
	if !ok {
		t.Fatal("sprite not found")
	}
	if hit.Left != 30 || hit.Top != 20 {
		t.Fatalf("sprite found at (%d,%d), want (30,20)", hit.Left, hit.Top)
	}
	if hit.Width != 10 || hit.Height != 10 {
		t.Fatalf("hit size %dx%d, want 10x10", hit.Width, hit.Height)
	}
}

func TestSearchMatBlackFrameMisses(t *testing.T) {
	tpl := spriteTemplate(t)
	defer tpl.Close()

	haystack := gocv.Zeros(60, 80, gocv.MatTypeCV8UC3)
	defer haystack.Close()

	if _, ok := SearchMat(haystack, tpl, DefaultConfidence); ok {
		t.Fatal("sprite reported in a fully black frame")
	}
}

func TestSearchMatTemplateLargerThanFrame(t *testing.T) {
	tpl := spriteTemplate(t)
	defer tpl.Close()

	tiny := gocv.Zeros(5, 5, gocv.MatTypeCV8UC3)
	defer tiny.Close()

	if _, ok := SearchMat(tiny, tpl, DefaultConfidence); ok {
		t.Fatal("match reported with template larger than frame")
	}
}

func TestFromMatInjectsOpaqueMask(t *testing.T) {
	raw := gocv.Zeros(4, 6, gocv.MatTypeCV8UC3)
	defer raw.Close()

	tpl, err := FromMat("plain", raw)
	if err != nil {
		t.Fatalf("FromMat failed: %v", err)
	}
	defer tpl.Close()

	if tpl.Mask.Rows() != 4 || tpl.Mask.Cols() != 6 {
		t.Fatalf("mask size %dx%d, want 6x4", tpl.Mask.Cols(), tpl.Mask.Rows())
	}
	v := tpl.Mask.GetVecbAt(2, 3)
	if v[0] != 255 || v[1] != 255 || v[2] != 255 {
		t.Fatalf("injected mask not fully opaque: %v", v)
	}
}

func TestFromMatSplitsAlpha(t *testing.T) {
	raw := gocv.Zeros(8, 8, gocv.MatTypeCV8UC4)
	defer raw.Close()
	// Opaque colored core, transparent border.
	region := raw.Region(image.Rect(2, 2, 6, 6))
	region.SetTo(gocv.NewScalar(10, 20, 30, 255))
	region.Close()

	tpl, err := FromMat("alpha", raw)
	if err != nil {
		t.Fatalf("FromMat failed: %v", err)
	}
	defer tpl.Close()

	if tpl.Mat.Channels() != 3 {
		t.Fatalf("base has %d channels, want 3", tpl.Mat.Channels())
	}
	core := tpl.Mask.GetVecbAt(3, 3)
	border := tpl.Mask.GetVecbAt(0, 0)
	if core[0] != 255 {
		t.Fatalf("opaque pixel has mask %d, want 255", core[0])
	}
	if border[0] != 0 {
		t.Fatalf("transparent pixel has mask %d, want 0", border[0])
	}
}

func TestSearchMatZeroConfidenceUsesDefault(t *testing.T) {
	tpl := spriteTemplate(t)
	defer tpl.Close()

	haystack := gocv.Zeros(40, 40, gocv.MatTypeCV8UC3)
	defer haystack.Close()
	paint(haystack, image.Rect(10, 10, 20, 15), 20, 200, 40)
	paint(haystack, image.Rect(10, 15, 20, 20), 240, 30, 180)

	if _, ok := SearchMat(haystack, tpl, 0); !ok {
		t.Fatal("default confidence did not accept an exact match")
	}
}
