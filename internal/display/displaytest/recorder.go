// Package displaytest provides an in-memory Display for tests.
package displaytest

import (
	"sync"

	"github.com/chase3718/midisensed/internal/display"
)

// Op names a recorded call.
type Op string

const (
	OpSetPixel Op = "set_pixel"
	OpClear    Op = "clear"
	OpMessage  Op = "message"
	OpFlush    Op = "flush"
)

// Call is one recorded Display call.
type Call struct {
	Op    Op
	X, Y  int
	Color display.Color
	Text  string
}

// Recorder records every call and keeps a pixel buffer so tests can assert
// on both the call sequence and the resulting image.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	grid  [display.Size][display.Size]display.Color
}

func (r *Recorder) SetPixel(x, y int, c display.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: OpSetPixel, X: x, Y: y, Color: c})
	if display.InBounds(x, y) {
		r.grid[y][x] = c
	}
}

func (r *Recorder) Clear(c display.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: OpClear, Color: c})
	for y := range r.grid {
		for x := range r.grid[y] {
			r.grid[y][x] = c
		}
	}
}

func (r *Recorder) ShowMessage(text string, c display.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: OpMessage, Text: text, Color: c})
}

func (r *Recorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: OpFlush})
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Messages returns the recorded scrolling messages in order.
func (r *Recorder) Messages() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if c.Op == OpMessage {
			out = append(out, c)
		}
	}
	return out
}

// Pixel returns the current color at (x, y).
func (r *Recorder) Pixel(x, y int) display.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.grid[y][x]
}

// Reset forgets recorded calls but keeps the image.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
