// Package ocr reads text the game renders with its pre-baked bitmap
// fonts. There is no general text recognition here: every font ships as a
// directory of per-glyph BMP templates, and reading is normalized
// cross-correlation of each glyph against a color-isolated region.
//
// Two operations exist. ExtractText assembles every confident glyph hit
// into a string ordered top-to-bottom then left-to-right (word boundaries
// are lost; the game fonts carry no space glyph). FindText searches only
// the glyphs of the given needles and returns a rectangle per contiguous
// hit, which is what scripts use to click on a known menu entry or
// chat line.
package ocr

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gocv.io/x/gocv"

	"osbc/internal/colors"
	"osbc/internal/geometry"
)

// MatchThreshold is the correlation a glyph must reach to count as seen.
const MatchThreshold = 0.98

// DefaultExcluded lists visually-ambiguous glyphs that fire constantly
// against thin scene features (tall diacritics, pipes, dotted-I variants,
// narrow quotes). They are skipped unless a font clears its exclusion set.
var DefaultExcluded = []rune{'Ì', 'Í', 'Î', 'Ï', 'ì', 'í', 'î', 'ï', '|', '‘', '’', '´', '`'}

// Font maps characters to grayscale glyph templates. A font is loaded
// once per process and its template Mats are never mutated.
type Font struct {
	Name     string
	Glyphs   map[rune]gocv.Mat
	Excluded map[rune]bool
}

// NewFont builds a font from pre-made glyph templates. Used by tests and
// by the loader below.
func NewFont(name string, glyphs map[rune]gocv.Mat) *Font {
	excluded := make(map[rune]bool, len(DefaultExcluded))
	for _, r := range DefaultExcluded {
		excluded[r] = true
	}
	return &Font{Name: name, Glyphs: glyphs, Excluded: excluded}
}

// LoadFont reads a font directory of <codepoint>.bmp glyph files.
// trimRows rows are peeled off the top of every template to compensate
// for the consistent top padding baked into the assets, which would
// otherwise degrade correlation.
func LoadFont(name, dir string, trimRows int) (*Font, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read font dir %q: %w", dir, err)
	}

	glyphs := make(map[rune]gocv.Mat)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".bmp") {
			continue
		}
		code, err := strconv.Atoi(strings.TrimSuffix(entry.Name(), ".bmp"))
		if err != nil {
			continue
		}

		full := gocv.IMRead(filepath.Join(dir, entry.Name()), gocv.IMReadGrayScale)
		if full.Empty() {
			return nil, fmt.Errorf("font %q: unreadable glyph %q", name, entry.Name())
		}
		if trimRows > 0 && full.Rows() > trimRows {
			region := full.Region(image.Rect(0, trimRows, full.Cols(), full.Rows()))
			glyphs[rune(code)] = region.Clone()
			region.Close()
			full.Close()
		} else {
			glyphs[rune(code)] = full
		}
	}

	if len(glyphs) == 0 {
		return nil, fmt.Errorf("font %q: no glyphs in %q", name, dir)
	}
	return NewFont(name, glyphs), nil
}

// Fonts bundles the five game fonts.
type Fonts struct {
	Plain11 *Font // small plain, orb and stack numerals
	Plain12 *Font // chatbox body
	Bold12  *Font // in-world mouseover / tooltip text
	Quill   *Font // large quest text
	Quill8  *Font // small quest text
}

// LoadFonts loads the standard font set from root/<name>/ directories.
// Plain12 carries two rows of top padding; every other font carries one.
func LoadFonts(root string) (*Fonts, error) {
	type fontSpec struct {
		name string
		trim int
		dst  **Font
	}
	fonts := &Fonts{}
	specs := []fontSpec{
		{"plain_11", 1, &fonts.Plain11},
		{"plain_12", 2, &fonts.Plain12},
		{"bold_12", 1, &fonts.Bold12},
		{"quill", 1, &fonts.Quill},
		{"quill_8", 1, &fonts.Quill8},
	}

	for _, s := range specs {
		f, err := LoadFont(s.name, filepath.Join(root, s.name), s.trim)
		if err != nil {
			return nil, err
		}
		*s.dst = f
	}
	return fonts, nil
}

// glyphMatch is one confident sighting of a glyph.
type glyphMatch struct {
	char rune
	rect geometry.Rectangle
}

// matchGlyphs correlates the given glyphs against a binary mask and
// returns every sighting at or above MatchThreshold, ordered
// top-to-bottom then left-to-right. Overlapping duplicate sightings of
// the same glyph are suppressed.
func matchGlyphs(mask gocv.Mat, font *Font, only map[rune]bool) []glyphMatch {
	var matches []glyphMatch

	// One empty Mat for the unused mask argument across the whole glyph
	// loop; allocating per glyph leaks native memory.
	noMask := gocv.NewMat()
	defer noMask.Close()

	for char, glyph := range font.Glyphs {
		if font.Excluded[char] {
			continue
		}
		if only != nil && !only[char] {
			continue
		}
		if glyph.Cols() > mask.Cols() || glyph.Rows() > mask.Rows() {
			continue
		}
		if gocv.CountNonZero(glyph) == 0 {
			continue
		}

		result := gocv.NewMat()
		gocv.MatchTemplate(mask, glyph, &result, gocv.TmCcoeffNormed, noMask)

		var hits []geometry.Rectangle
		for y := 0; y < result.Rows(); y++ {
			for x := 0; x < result.Cols(); x++ {
				if float64(result.GetFloatAt(y, x)) < MatchThreshold {
					continue
				}
				r := geometry.NewRectangle(x, y, glyph.Cols(), glyph.Rows())
				dup := false
				for _, prev := range hits {
					if r.Intersects(prev) {
						dup = true
						break
					}
				}
				if !dup {
					hits = append(hits, r)
				}
			}
		}
		result.Close()

		for _, r := range hits {
			matches = append(matches, glyphMatch{char: char, rect: r})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].rect.Top != matches[j].rect.Top {
			return matches[i].rect.Top < matches[j].rect.Top
		}
		return matches[i].rect.Left < matches[j].rect.Left
	})
	return matches
}

// ExtractTextMat reads all text of the given font and colors from a
// pre-captured BGR frame. The result carries no spaces.
func ExtractTextMat(frame gocv.Mat, font *Font, cs []colors.Color) string {
	mask := colors.Isolate(frame, cs...)
	defer mask.Close()

	matches := matchGlyphs(mask, font, nil)
	var sb strings.Builder
	for _, m := range matches {
		sb.WriteRune(m.char)
	}
	return sb.String()
}

// ExtractText screenshots the rectangle and reads all text in it.
func ExtractText(rect geometry.Rectangle, font *Font, cs []colors.Color) (string, error) {
	frame, err := rect.Screenshot()
	if err != nil {
		return "", err
	}
	defer frame.Close()
	return ExtractTextMat(frame, font, cs), nil
}

// FindTextMat locates literal strings in a pre-captured frame and returns
// one rectangle (frame-relative) per hit.
func FindTextMat(needles []string, frame gocv.Mat, font *Font, cs []colors.Color) []geometry.Rectangle {
	only := make(map[rune]bool)
	for _, needle := range needles {
		for _, r := range needle {
			only[r] = true
		}
	}

	mask := colors.Isolate(frame, cs...)
	defer mask.Close()

	matches := matchGlyphs(mask, font, only)
	stream := make([]rune, len(matches))
	for i, m := range matches {
		stream[i] = m.char
	}

	var found []geometry.Rectangle
	for _, needle := range needles {
		runes := []rune(needle)
		if len(runes) == 0 {
			continue
		}
		for start := 0; start+len(runes) <= len(stream); start++ {
			if !runesMatchAt(stream, runes, start) {
				continue
			}
			hit := matches[start].rect
			for i := 1; i < len(runes); i++ {
				hit = union(hit, matches[start+i].rect)
			}
			found = append(found, hit)
			start += len(runes) - 1
		}
	}
	return found
}

func runesMatchAt(stream, needle []rune, start int) bool {
	for i, r := range needle {
		if stream[start+i] != r {
			return false
		}
	}
	return true
}

// FindText screenshots the rectangle and locates the needles inside it.
// Returned rectangles are in screen coordinates.
func FindText(needles []string, rect geometry.Rectangle, font *Font, cs []colors.Color) ([]geometry.Rectangle, error) {
	frame, err := rect.Screenshot()
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	hits := FindTextMat(needles, frame, font, cs)
	out := make([]geometry.Rectangle, len(hits))
	for i, h := range hits {
		out[i] = h.Translate(rect.Left, rect.Top)
		out[i].Parent = &rect
	}
	return out, nil
}

func union(a, b geometry.Rectangle) geometry.Rectangle {
	left := a.Left
	if b.Left < left {
		left = b.Left
	}
	top := a.Top
	if b.Top < top {
		top = b.Top
	}
	right := a.Left + a.Width
	if b.Left+b.Width > right {
		right = b.Left + b.Width
	}
	bottom := a.Top + a.Height
	if b.Top+b.Height > bottom {
		bottom = b.Top + b.Height
	}
	return geometry.NewRectangle(left, top, right-left, bottom-top)
}
