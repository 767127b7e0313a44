// Package display drives the 8x8 pixel matrix the monitor renders onto.
//
// Drawing calls never return errors. Backends log I/O failures and drop the
// call, so a flaky link cannot stall the monitor loop.
package display

import "fmt"

// Size is the edge length of the square matrix.
const Size = 8

// ScrollSpeed is the time a scrolling message spends on each column.
const ScrollSpeed = 50 // ms

// Color is a 24-bit RGB pixel value.
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{0, 0, 0}
	Red   = Color{255, 0, 0}
	Green = Color{0, 255, 0}
	Blue  = Color{0, 0, 255}
)

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Display is the pixel-matrix collaborator.
type Display interface {
	// SetPixel sets the pixel at column x, row y.
	SetPixel(x, y int, c Color)
	// Clear fills the whole matrix with c.
	Clear(c Color)
	// ShowMessage scrolls text across the matrix in color c and returns
	// once the message has passed.
	ShowMessage(text string, c Color)
}

// Flusher is implemented by backends that buffer pixel writes and need an
// explicit present step after a full redraw.
type Flusher interface {
	Flush()
}

// InBounds reports whether (x, y) addresses a pixel of the matrix.
func InBounds(x, y int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size
}

// Discard is a Display that ignores every call.
type Discard struct{}

func (Discard) SetPixel(int, int, Color)  {}
func (Discard) Clear(Color)               {}
func (Discard) ShowMessage(string, Color) {}
