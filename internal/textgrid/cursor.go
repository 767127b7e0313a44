package textgrid

// Cursor is the next write position on the grid. The grid wraps in both
// directions.
type Cursor struct {
	X, Y int
}

// Advance moves one cell right, wrapping to the next row and from the last
// row back to the first.
func (c Cursor) Advance() Cursor {
	c.X++
	if c.X > Width-1 {
		c.X = 0
		c.Y++
	}
	if c.Y > Width-1 {
		c.Y = 0
	}
	return c
}

// NewLine moves to the start of the next row. A soft newline at the start of
// a row does nothing.
func (c Cursor) NewLine(soft bool) Cursor {
	if soft && c.X == 0 {
		return c
	}
	c.X = 0
	c.Y++
	if c.Y > Width-1 {
		c.Y = 0
	}
	return c
}
