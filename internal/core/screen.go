package core

import (
	"strings"
)

// Cell is one character of the screen with its colour.
type Cell struct {
	R rune
	C Color
}

var blank = Cell{R: ' '}

// Screen is a 2D character buffer for the causal-sight overlay.
// It decouples drawing from the terminal: the overlay plots runes and
// colours, the platform layer turns rows into styled strings.
type Screen struct {
	width  int
	height int
	cells  [][]Cell
}

// NewScreen creates a new screen buffer with the given dimensions.
func NewScreen(width, height int) *Screen {
	s := &Screen{
		width:  max(0, width),
		height: max(0, height),
	}
	s.allocate()
	return s
}

func (s *Screen) allocate() {
	s.cells = make([][]Cell, s.height)
	for y := range s.cells {
		s.cells[y] = make([]Cell, s.width)
		for x := range s.cells[y] {
			s.cells[y][x] = blank
		}
	}
}

// Width returns the screen width in characters.
func (s *Screen) Width() int {
	return s.width
}

// Height returns the screen height in characters.
func (s *Screen) Height() int {
	return s.height
}

// Bounds returns the screen area as a Rect at the origin.
func (s *Screen) Bounds() Rect {
	return NewRect(0, 0, s.width, s.height)
}

// Resize changes the dimensions and clears the buffer.
func (s *Screen) Resize(width, height int) {
	if width == s.width && height == s.height {
		s.Clear()
		return
	}
	s.width = max(0, width)
	s.height = max(0, height)
	s.allocate()
}

// Clear fills the entire screen with uncoloured spaces.
func (s *Screen) Clear() {
	for y := range s.cells {
		for x := range s.cells[y] {
			s.cells[y][x] = blank
		}
	}
}

// Set places an uncoloured rune at the given position.
// Out-of-bounds coordinates are silently ignored.
func (s *Screen) Set(x, y int, r rune) {
	s.SetColored(x, y, r, ColorDefault)
}

// SetColored places a rune with a colour.
func (s *Screen) SetColored(x, y int, r rune, c Color) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return
	}
	s.cells[y][x] = Cell{R: r, C: c}
}

// Get returns the rune at the given position.
// Returns space for out-of-bounds coordinates.
func (s *Screen) Get(x, y int) rune {
	return s.At(x, y).R
}

// At returns the cell at the given position.
func (s *Screen) At(x, y int) Cell {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return blank
	}
	return s.cells[y][x]
}

// DrawText writes a string horizontally starting at (x, y).
// Characters that extend beyond screen bounds are clipped.
func (s *Screen) DrawText(x, y int, text string, c Color) {
	i := 0
	for _, r := range text {
		s.SetColored(x+i, y, r, c)
		i++
	}
}

// DrawBox draws a box outline using box-drawing characters.
func (s *Screen) DrawBox(r Rect, c Color) {
	s.SetColored(r.X, r.Y, '┌', c)
	s.SetColored(r.Right()-1, r.Y, '┐', c)
	s.SetColored(r.X, r.Bottom()-1, '└', c)
	s.SetColored(r.Right()-1, r.Bottom()-1, '┘', c)

	for x := r.X + 1; x < r.Right()-1; x++ {
		s.SetColored(x, r.Y, '─', c)
		s.SetColored(x, r.Bottom()-1, '─', c)
	}

	for y := r.Y + 1; y < r.Bottom()-1; y++ {
		s.SetColored(r.X, y, '│', c)
		s.SetColored(r.Right()-1, y, '│', c)
	}
}

// DrawLine draws a straight line between two points, endpoints excluded,
// choosing a rune that follows the line's slope. Cells that already hold a
// non-space rune are left alone so node glyphs stay visible.
func (s *Screen) DrawLine(from, to Point, c Color) {
	dx, dy := to.X-from.X, to.Y-from.Y
	r := lineRune(dx, dy)
	for _, p := range Line(from, to) {
		if p == from || p == to {
			continue
		}
		if s.Get(p.X, p.Y) != ' ' {
			continue
		}
		s.SetColored(p.X, p.Y, r, c)
	}
}

func lineRune(dx, dy int) rune {
	switch {
	case dy == 0:
		return '─'
	case dx == 0:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

// String converts the screen buffer to a string without colours.
// Each row is joined with newlines.
func (s *Screen) String() string {
	var sb strings.Builder
	sb.Grow(s.width*s.height + s.height)

	for y := 0; y < s.height; y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for x := 0; x < s.width; x++ {
			sb.WriteRune(s.cells[y][x].R)
		}
	}
	return sb.String()
}

// Row returns a copy of the specified row as a string.
func (s *Screen) Row(y int) string {
	if y < 0 || y >= s.height {
		return strings.Repeat(" ", s.width)
	}
	var sb strings.Builder
	for _, c := range s.cells[y] {
		sb.WriteRune(c.R)
	}
	return sb.String()
}

// Runs splits row y into maximal spans of one colour, for styling.
func (s *Screen) Runs(y int) []Run {
	if y < 0 || y >= s.height {
		return nil
	}
	var runs []Run
	var sb strings.Builder
	cur := ColorDefault
	for x, cell := range s.cells[y] {
		if x > 0 && cell.C != cur {
			runs = append(runs, Run{Text: sb.String(), Color: cur})
			sb.Reset()
		}
		cur = cell.C
		sb.WriteRune(cell.R)
	}
	if sb.Len() > 0 {
		runs = append(runs, Run{Text: sb.String(), Color: cur})
	}
	return runs
}

// Run is a span of text in one colour.
type Run struct {
	Text  string
	Color Color
}
