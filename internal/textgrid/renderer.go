package textgrid

import "github.com/chase3718/midisensed/internal/display"

var (
	Background = display.Black
	EmptyColor = display.Red
)

// emptyGlyph is the dash shown when no devices are connected.
var emptyGlyph = [][2]int{
	{2, 3}, {3, 3}, {4, 3}, {5, 3},
	{2, 4}, {3, 4}, {4, 4}, {5, 4},
}

// Renderer owns the cursor and draws onto a Display. It is not safe for
// concurrent use.
type Renderer struct {
	disp   display.Display
	cursor Cursor
}

func NewRenderer(d display.Display) *Renderer {
	return &Renderer{disp: d}
}

func (r *Renderer) Cursor() Cursor { return r.cursor }

func (r *Renderer) ResetCursor() { r.cursor = Cursor{} }

func (r *Renderer) Advance() { r.cursor = r.cursor.Advance() }

func (r *Renderer) NewLine(soft bool) { r.cursor = r.cursor.NewLine(soft) }

// DrawText draws the compressed rendering of text at the cursor and ends
// with a soft newline.
func (r *Renderer) DrawText(text string) {
	for _, c := range RenderCompressed(text) {
		r.disp.SetPixel(r.cursor.X, r.cursor.Y, c)
		r.Advance()
	}
	r.NewLine(true)
}

// ClearScreen resets the cursor and fills the display with the background.
func (r *Renderer) ClearScreen() {
	r.ResetCursor()
	r.disp.Clear(Background)
}

// DrawDeviceScreen redraws the screen with one row per name, or the empty
// glyph when names is empty.
func (r *Renderer) DrawDeviceScreen(names []string) {
	r.ClearScreen()
	for _, name := range names {
		r.DrawText(name)
	}
	if len(names) == 0 {
		for _, p := range emptyGlyph {
			r.disp.SetPixel(p[0], p[1], EmptyColor)
		}
	}
	if f, ok := r.disp.(display.Flusher); ok {
		f.Flush()
	}
}
