package objects

import (
	"image"
	"testing"

	"gocv.io/x/gocv"

	"osbc/internal/colors"
	"osbc/internal/geometry"
)

// magentaBlobs builds a black game-view frame with filled magenta
// rectangles at the given image rects.
func magentaBlobs(w, h int, blobs ...image.Rectangle) gocv.Mat {
	frame := gocv.Zeros(h, w, gocv.MatTypeCV8UC3)
	for _, b := range blobs {
		region := frame.Region(b)
		region.SetTo(gocv.NewScalar(255, 0, 255, 0))
		region.Close()
	}
	return frame
}

func TestExtractTwoBlobs(t *testing.T) {
	view := geometry.NewRectangle(100, 50, 200, 150)
	frame := magentaBlobs(200, 150, image.Rect(10, 10, 16, 15), image.Rect(100, 80, 110, 85))
	defer frame.Close()

	objs := ExtractMat(frame, view, DefaultMinArea, colors.Pink)
	if len(objs) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(objs))
	}
}

func TestExtractRejectsSmallBlobs(t *testing.T) {
	view := geometry.NewRectangle(0, 0, 100, 100)
	frame := magentaBlobs(100, 100, image.Rect(10, 10, 12, 12), image.Rect(40, 40, 60, 60))
	defer frame.Close()

	objs := ExtractMat(frame, view, DefaultMinArea, colors.Pink)
	if len(objs) != 1 {
		t.Fatalf("expected 1 object after min-area filter, got %d", len(objs))
	}
	if objs[0].BBox.Left != 40 || objs[0].BBox.Top != 40 {
		t.Fatalf("kept object at (%d,%d), want (40,40)", objs[0].BBox.Left, objs[0].BBox.Top)
	}
}

func TestPixelsSubsetOfBBox(t *testing.T) {
	view := geometry.NewRectangle(0, 0, 120, 120)
	frame := magentaBlobs(120, 120, image.Rect(30, 30, 50, 45))
	defer frame.Close()

	objs := ExtractMat(frame, view, DefaultMinArea, colors.Pink)
	if len(objs) != 1 {
		t.Fatalf("expected 1 object, got %d", len(objs))
	}
	obj := objs[0]
	for _, p := range obj.Pixels {
		if !obj.BBox.Contains(p) {
			t.Fatalf("pixel %v outside bbox %s", p, obj.BBox)
		}
	}
	if len(obj.Pixels) == 0 {
		t.Fatal("object carries no interior pixels")
	}
}

func TestCenterInsideBlob(t *testing.T) {
	view := geometry.NewRectangle(0, 0, 100, 100)
	frame := magentaBlobs(100, 100, image.Rect(20, 20, 40, 40))
	defer frame.Close()

	objs := ExtractMat(frame, view, DefaultMinArea, colors.Pink)
	if len(objs) != 1 {
		t.Fatalf("expected 1 object, got %d", len(objs))
	}
	c := objs[0].Center
	if c.X < 25 || c.X > 35 || c.Y < 25 || c.Y > 35 {
		t.Fatalf("center %v far from blob middle (30,30)", c)
	}
}

func TestScreenCenterAddsParentOffset(t *testing.T) {
	view := geometry.NewRectangle(500, 300, 100, 100)
	frame := magentaBlobs(100, 100, image.Rect(20, 20, 40, 40))
	defer frame.Close()

	objs := ExtractMat(frame, view, DefaultMinArea, colors.Pink)
	if len(objs) != 1 {
		t.Fatalf("expected 1 object, got %d", len(objs))
	}
	sc := objs[0].ScreenCenter()
	if sc.X < 525 || sc.X > 535 || sc.Y < 320 || sc.Y > 335 {
		t.Fatalf("screen center %v not offset by view origin", sc)
	}
}

func TestRandomPixelStaysInsideShape(t *testing.T) {
	view := geometry.NewRectangle(10, 10, 100, 100)
	frame := magentaBlobs(100, 100, image.Rect(20, 20, 35, 30))
	defer frame.Close()

	objs := ExtractMat(frame, view, DefaultMinArea, colors.Pink)
	if len(objs) != 1 {
		t.Fatalf("expected 1 object, got %d", len(objs))
	}
	screenBBox := objs[0].BBox.Translate(view.Left, view.Top)
	for i := 0; i < 200; i++ {
		p := objs[0].RandomPixel()
		if !screenBBox.Contains(p) {
			t.Fatalf("random pixel %v outside screen bbox %s", p, screenBBox)
		}
	}
}

func TestSortByDistanceFromRectCenter(t *testing.T) {
	view := geometry.NewRectangle(0, 0, 200, 200)
	// Near blob around (95..105), far blob in the corner.
	frame := magentaBlobs(200, 200, image.Rect(10, 10, 20, 20), image.Rect(95, 95, 105, 105))
	defer frame.Close()

	objs := ExtractMat(frame, view, DefaultMinArea, colors.Pink)
	if len(objs) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(objs))
	}

	SortByDistanceFromRectCenter(objs)
	if objs[0].BBox.Left != 95 {
		t.Fatalf("nearest-first sort put blob at %d first, want 95", objs[0].BBox.Left)
	}

	SortByDistanceFromTopLeft(objs)
	if objs[0].BBox.Left != 10 {
		t.Fatalf("top-left sort put blob at %d first, want 10", objs[0].BBox.Left)
	}
}

func TestExtractMissReturnsEmpty(t *testing.T) {
	view := geometry.NewRectangle(0, 0, 50, 50)
	frame := magentaBlobs(50, 50, image.Rect(10, 10, 30, 30))
	defer frame.Close()

	objs := ExtractMat(frame, view, DefaultMinArea, colors.Cyan)
	if len(objs) != 0 {
		t.Fatalf("expected no cyan objects, got %d", len(objs))
	}
}
