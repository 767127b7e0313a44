package display

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Terminal renders the matrix as a block of colored cells on a terminal.
// Pixel writes are buffered until Flush. A message is printed as one line
// and then held for as long as it would take to scroll on the matrix.
type Terminal struct {
	mu   sync.Mutex
	w    io.Writer
	grid [Size][Size]Color

	// pace blocks for the duration of a scrolling message.
	pace func(time.Duration)
}

// NewTerminal returns a preview display writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w, pace: time.Sleep}
}

func (t *Terminal) SetPixel(x, y int, c Color) {
	if !InBounds(x, y) {
		return
	}
	t.mu.Lock()
	t.grid[y][x] = c
	t.mu.Unlock()
}

func (t *Terminal) Clear(c Color) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for y := range t.grid {
		for x := range t.grid[y] {
			t.grid[y][x] = c
		}
	}
}

func (t *Terminal) ShowMessage(text string, c Color) {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Bold(true)
	fmt.Fprintln(t.w, style.Render("» "+text))
	t.pace(ScrollDuration(text))
}

// Flush prints the current grid.
func (t *Terminal) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	var b strings.Builder
	for y := range t.grid {
		for x := range t.grid[y] {
			b.WriteString(cell(t.grid[y][x]))
		}
		b.WriteByte('\n')
	}
	fmt.Fprint(t.w, b.String())
}

// Pixel returns the buffered color at (x, y).
func (t *Terminal) Pixel(x, y int) Color {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.grid[y][x]
}

var offStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))

func cell(c Color) string {
	if c == Black {
		return offStyle.Render("··")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("██")
}
