package ocr

import (
	"math/rand"
	"testing"

	"gocv.io/x/gocv"

	"osbc/internal/colors"
)

// testFont builds a synthetic font whose glyphs are distinct dense 8x10
// binary patterns, deterministic per character.
func testFont(chars ...rune) *Font {
	glyphs := make(map[rune]gocv.Mat)
	for _, c := range chars {
		r := rand.New(rand.NewSource(int64(c)))
		glyph := gocv.Zeros(10, 8, gocv.MatTypeCV8U)
		for y := 0; y < 10; y++ {
			for x := 0; x < 8; x++ {
				if r.Intn(2) == 1 {
					glyph.SetUCharAt(y, x, 255)
				}
			}
		}
		glyphs[c] = glyph
	}
	return NewFont("test", glyphs)
}

func closeFont(f *Font) {
	for _, g := range f.Glyphs {
		g.Close()
	}
}

// render paints a glyph into a BGR frame at (x, y) using the given color.
func render(frame gocv.Mat, glyph gocv.Mat, x, y int, b, g, r uint8) {
	for gy := 0; gy < glyph.Rows(); gy++ {
		for gx := 0; gx < glyph.Cols(); gx++ {
			if glyph.GetUCharAt(gy, gx) == 0 {
				continue
			}
			frame.SetUCharAt(y+gy, (x+gx)*3+0, b)
			frame.SetUCharAt(y+gy, (x+gx)*3+1, g)
			frame.SetUCharAt(y+gy, (x+gx)*3+2, r)
		}
	}
}

func renderString(frame gocv.Mat, font *Font, s string, x, y int) {
	for _, c := range s {
		glyph := font.Glyphs[c]
		render(frame, glyph, x, y, 0, 255, 0)
		x += glyph.Cols() + 2
	}
}

func TestExtractTextRoundTrip(t *testing.T) {
	font := testFont('3', '7', 'A')
	defer closeFont(font)

	frame := gocv.Zeros(30, 80, gocv.MatTypeCV8UC3)
	defer frame.Close()
	renderString(frame, font, "37", 4, 8)

	got := ExtractTextMat(frame, font, []colors.Color{colors.TextGreen})
	if got != "37" {
		t.Fatalf("extracted %q, want %q", got, "37")
	}
}

func TestExtractTextEmptyFrame(t *testing.T) {
	font := testFont('1', '2')
	defer closeFont(font)

	frame := gocv.Zeros(20, 40, gocv.MatTypeCV8UC3)
	defer frame.Close()

	if got := ExtractTextMat(frame, font, []colors.Color{colors.TextGreen}); got != "" {
		t.Fatalf("extracted %q from empty frame", got)
	}
}

func TestExtractTextIgnoresWrongColor(t *testing.T) {
	font := testFont('9')
	defer closeFont(font)

	frame := gocv.Zeros(20, 40, gocv.MatTypeCV8UC3)
	defer frame.Close()
	// Rendered red, searched green.
	render(frame, font.Glyphs['9'], 5, 5, 0, 0, 255)

	if got := ExtractTextMat(frame, font, []colors.Color{colors.TextGreen}); got != "" {
		t.Fatalf("extracted %q despite color mismatch", got)
	}
}

func TestExtractTextMultipleColors(t *testing.T) {
	font := testFont('4', '2')
	defer closeFont(font)

	frame := gocv.Zeros(20, 60, gocv.MatTypeCV8UC3)
	defer frame.Close()
	render(frame, font.Glyphs['4'], 4, 5, 0, 255, 0)
	render(frame, font.Glyphs['2'], 16, 5, 0, 0, 255)

	got := ExtractTextMat(frame, font, colors.OrbText)
	if got != "42" {
		t.Fatalf("extracted %q, want %q", got, "42")
	}
}

func TestExtractTextRowThenColumnOrder(t *testing.T) {
	font := testFont('a', 'b', 'c', 'd')
	defer closeFont(font)

	frame := gocv.Zeros(50, 80, gocv.MatTypeCV8UC3)
	defer frame.Close()
	renderString(frame, font, "ab", 4, 4)
	renderString(frame, font, "cd", 4, 24)

	got := ExtractTextMat(frame, font, []colors.Color{colors.TextGreen})
	if got != "abcd" {
		t.Fatalf("extracted %q, want %q", got, "abcd")
	}
}

func TestFindTextReturnsCoveringRect(t *testing.T) {
	font := testFont('B', 'a', 'n', 'k')
	defer closeFont(font)

	frame := gocv.Zeros(30, 100, gocv.MatTypeCV8UC3)
	defer frame.Close()
	renderString(frame, font, "Bank", 10, 8)

	hits := FindTextMat([]string{"Bank"}, frame, font, []colors.Color{colors.TextGreen})
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	hit := hits[0]
	if hit.Left != 10 || hit.Top != 8 {
		t.Errorf("hit at (%d,%d), want (10,8)", hit.Left, hit.Top)
	}
	// Four 8-wide glyphs with 2 px gaps span 38 px.
	if hit.Width != 38 || hit.Height != 10 {
		t.Errorf("hit size %dx%d, want 38x10", hit.Width, hit.Height)
	}
}

func TestFindTextAbsentNeedle(t *testing.T) {
	font := testFont('x', 'y', 'z')
	defer closeFont(font)

	frame := gocv.Zeros(30, 60, gocv.MatTypeCV8UC3)
	defer frame.Close()
	renderString(frame, font, "xy", 4, 4)

	if hits := FindTextMat([]string{"zz"}, frame, font, []colors.Color{colors.TextGreen}); len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
}

func TestFindTextMultipleOccurrences(t *testing.T) {
	font := testFont('o', 'k')
	defer closeFont(font)

	frame := gocv.Zeros(50, 80, gocv.MatTypeCV8UC3)
	defer frame.Close()
	renderString(frame, font, "ok", 4, 4)
	renderString(frame, font, "ok", 4, 24)

	hits := FindTextMat([]string{"ok"}, frame, font, []colors.Color{colors.TextGreen})
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
}

func TestExcludedGlyphsSkipped(t *testing.T) {
	font := testFont('A', '|')
	defer closeFont(font)

	frame := gocv.Zeros(30, 60, gocv.MatTypeCV8UC3)
	defer frame.Close()
	render(frame, font.Glyphs['|'], 4, 5, 0, 255, 0)
	render(frame, font.Glyphs['A'], 20, 5, 0, 255, 0)

	got := ExtractTextMat(frame, font, []colors.Color{colors.TextGreen})
	if got != "A" {
		t.Fatalf("extracted %q, want %q (pipe excluded)", got, "A")
	}
}
