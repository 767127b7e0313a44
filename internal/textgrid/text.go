// Package textgrid maps text onto the 8x8 pixel matrix.
//
// Every character becomes one pixel whose color encodes its letter class.
// Text longer than a row is compressed so that each cell keeps the most
// distinctive of the characters competing for it.
package textgrid

import (
	"math"
	"unicode"

	"github.com/chase3718/midisensed/internal/display"
)

// Width is the number of cells in one row.
const Width = display.Size

// LetterClass is the display category of a character. The ordinal order is
// the priority used when characters compete for one cell.
type LetterClass int

const (
	None LetterClass = iota
	Lower
	Upper
	Digit
	Other
)

func (c LetterClass) String() string {
	switch c {
	case None:
		return "NONE"
	case Lower:
		return "LOWER"
	case Upper:
		return "UPPER"
	case Digit:
		return "DIGIT"
	case Other:
		return "OTHER"
	}
	return "UNKNOWN"
}

// NoChar marks an empty cell. It is never a valid rune.
const NoChar rune = -1

// Classify returns the letter class of r. Only NoChar is None.
func Classify(r rune) LetterClass {
	switch {
	case r == NoChar:
		return None
	case unicode.IsLower(r):
		return Lower
	case unicode.IsUpper(r):
		return Upper
	case unicode.IsDigit(r):
		return Digit
	}
	return Other
}

var (
	ColorLower   = display.Blue
	ColorUpper   = display.Green
	ColorDigit   = display.Red
	ColorSpecial = display.Black
)

// ColorOf returns the pixel color for a letter class.
func ColorOf(c LetterClass) display.Color {
	switch c {
	case Lower:
		return ColorLower
	case Upper:
		return ColorUpper
	case Digit:
		return ColorDigit
	}
	return ColorSpecial
}

// RenderExact colors the first Width characters of text, one pixel each.
// Longer input is truncated.
func RenderExact(text string) []display.Color {
	pixels := make([]display.Color, 0, Width)
	for _, r := range text {
		if len(pixels) == Width {
			break
		}
		pixels = append(pixels, ColorOf(Classify(r)))
	}
	return pixels
}

// Compress squeezes text into at most Width characters. Source index i goes
// to cell round(f*i) with f = min(1, Width/len), and a cell is taken over
// only by a character of strictly higher class, so on ties the earlier
// character stays. Empty trailing cells are dropped.
func Compress(text string) string {
	src := []rune(text)
	if len(src) == 0 {
		return ""
	}

	var cells [Width]rune
	for i := range cells {
		cells[i] = NoChar
	}

	f := math.Min(1, float64(Width)/float64(len(src)))
	for i, r := range src {
		ti := int(math.RoundToEven(f * float64(i)))
		if ti > Width-1 {
			ti = Width - 1
		}
		if Classify(cells[ti]) < Classify(r) {
			cells[ti] = r
		}
	}

	n := Width
	for n > 0 && cells[n-1] == NoChar {
		n--
	}
	out := make([]rune, 0, n)
	for _, r := range cells[:n] {
		if r != NoChar {
			out = append(out, r)
		}
	}
	return string(out)
}

// RenderCompressed is RenderExact applied to Compress(text).
func RenderCompressed(text string) []display.Color {
	return RenderExact(Compress(text))
}
