package geometry

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"

	"osbc/internal/rng"
)

func TestFromPointsNormalizesCorners(t *testing.T) {
	r := FromPoints(Point{X: 100, Y: 80}, Point{X: 20, Y: 200})
	if r.Left != 20 || r.Top != 80 || r.Width != 80 || r.Height != 120 {
		t.Fatalf("unexpected rectangle %s", r)
	}
}

func TestAnchorPoints(t *testing.T) {
	r := NewRectangle(10, 20, 100, 50)
	cases := []struct {
		name string
		got  Point
		want Point
	}{
		{"center", r.Center(), Point{60, 45}},
		{"top-left", r.TopLeft(), Point{10, 20}},
		{"top-right", r.TopRight(), Point{110, 20}},
		{"bottom-left", r.BottomLeft(), Point{10, 70}},
		{"bottom-right", r.BottomRight(), Point{110, 70}},
		{"center-left", r.CenterLeft(), Point{10, 45}},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, tc.got, tc.want)
		}
	}
}

func TestRandomPointAlwaysInside(t *testing.T) {
	r := NewRectangle(50, 60, 120, 90)
	seeds := rng.DailySeeds(r.Left+r.Top, 8)
	for i := 0; i < 2000; i++ {
		p := r.RandomPoint(seeds)
		if !r.Contains(p) {
			t.Fatalf("point %v escaped %s", p, r)
		}
	}
}

func TestRandomPointNoSeedsFallsBackToUniform(t *testing.T) {
	r := NewRectangle(0, 0, 10, 10)
	for i := 0; i < 500; i++ {
		p := r.RandomPoint(nil)
		if !r.Contains(p) {
			t.Fatalf("point %v escaped %s", p, r)
		}
	}
}

func TestRandomPointTinyRectangle(t *testing.T) {
	r := NewRectangle(5, 5, 2, 2)
	seeds := rng.DailySeeds(0, 4)
	for i := 0; i < 200; i++ {
		p := r.RandomPoint(seeds)
		if !r.Contains(p) {
			t.Fatalf("point %v escaped %s", p, r)
		}
	}
}

// solidCapture substitutes CaptureFunc with a uniformly colored frame.
func solidCapture(c color.RGBA) func(x, y, w, h int) (*image.RGBA, error) {
	return func(x, y, w, h int) (*image.RGBA, error) {
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		for py := 0; py < h; py++ {
			for px := 0; px < w; px++ {
				img.SetRGBA(px, py, c)
			}
		}
		return img, nil
	}
}

func TestScreenshotBlanksHoles(t *testing.T) {
	orig := CaptureFunc
	CaptureFunc = solidCapture(color.RGBA{R: 200, G: 200, B: 200, A: 255})
	defer func() { CaptureFunc = orig }()

	r := NewRectangle(100, 100, 40, 40)
	r.Holes = []Rectangle{NewRectangle(110, 110, 10, 10)}

	mat, err := r.Screenshot()
	if err != nil {
		t.Fatalf("Screenshot failed: %v", err)
	}
	defer mat.Close()

	// Every pixel of the hole must be zero in all channels.
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			v := mat.GetVecbAt(y, x)
			if v[0] != 0 || v[1] != 0 || v[2] != 0 {
				t.Fatalf("hole pixel (%d,%d) not blanked: %v", x, y, v)
			}
		}
	}

	// A pixel outside the hole keeps the captured color.
	v := mat.GetVecbAt(5, 5)
	if v[0] == 0 && v[1] == 0 && v[2] == 0 {
		t.Fatal("pixel outside hole was blanked")
	}
}

func TestScreenshotHoleClippedToBounds(t *testing.T) {
	orig := CaptureFunc
	CaptureFunc = solidCapture(color.RGBA{R: 10, G: 20, B: 30, A: 255})
	defer func() { CaptureFunc = orig }()

	r := NewRectangle(0, 0, 20, 20)
	r.Holes = []Rectangle{NewRectangle(15, 15, 50, 50)}

	mat, err := r.Screenshot()
	if err != nil {
		t.Fatalf("Screenshot failed: %v", err)
	}
	defer mat.Close()

	if mat.Rows() != 20 || mat.Cols() != 20 {
		t.Fatalf("unexpected capture size %dx%d", mat.Cols(), mat.Rows())
	}
	v := mat.GetVecbAt(17, 17)
	if v[0] != 0 || v[1] != 0 || v[2] != 0 {
		t.Fatalf("clipped hole pixel not blanked: %v", v)
	}
}

func TestScreenshotIsMat(t *testing.T) {
	orig := CaptureFunc
	CaptureFunc = solidCapture(color.RGBA{R: 1, G: 2, B: 3, A: 255})
	defer func() { CaptureFunc = orig }()

	r := NewRectangle(0, 0, 8, 8)
	mat, err := r.Screenshot()
	if err != nil {
		t.Fatalf("Screenshot failed: %v", err)
	}
	defer mat.Close()
	if mat.Type() != gocv.MatTypeCV8UC3 {
		t.Fatalf("expected 3-channel capture, got type %v", mat.Type())
	}
}

func TestTranslateMovesHoles(t *testing.T) {
	r := NewRectangle(0, 0, 100, 100)
	r.Holes = []Rectangle{NewRectangle(10, 10, 5, 5)}
	moved := r.Translate(40, 60)
	if moved.Left != 40 || moved.Top != 60 {
		t.Fatalf("rectangle not translated: %s", moved)
	}
	if moved.Holes[0].Left != 50 || moved.Holes[0].Top != 70 {
		t.Fatalf("hole not translated: %s", moved.Holes[0])
	}
}

func TestIntersects(t *testing.T) {
	a := NewRectangle(0, 0, 10, 10)
	if !a.Intersects(NewRectangle(5, 5, 10, 10)) {
		t.Error("overlapping rectangles reported disjoint")
	}
	if a.Intersects(NewRectangle(20, 20, 5, 5)) {
		t.Error("disjoint rectangles reported overlapping")
	}
}
