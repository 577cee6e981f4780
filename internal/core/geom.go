// Package core provides the drawing primitives used by the causal-sight
// overlay: a coloured character buffer, integer geometry and the projection
// from world coordinates onto the buffer. It has no external dependencies
// (especially no Bubble Tea) so it stays testable on its own.
package core

// Rect represents an axis-aligned rectangle in screen cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Inset shrinks the rectangle by n cells on every side.
func (r Rect) Inset(n int) Rect {
	return Rect{X: r.X + n, Y: r.Y + n, W: max(0, r.W-2*n), H: max(0, r.H-2*n)}
}

// Point is a screen cell.
type Point struct {
	X, Y int
}

// Line returns the cells from a to b inclusive (Bresenham).
func Line(a, b Point) []Point {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy

	var out []Point
	p := a
	for {
		out = append(out, p)
		if p == b {
			return out
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			p.X += sx
		}
		if e2 <= dx {
			err += dx
			p.Y += sy
		}
	}
}

// Projection maps world coordinates into a screen rectangle, preserving
// order along each axis.
type Projection struct {
	minX, minY   float64
	spanX, spanY float64
	area         Rect
}

// Fit builds a projection that places the bounding box of xs/ys inside area.
func Fit(xs, ys []float64, area Rect) Projection {
	p := Projection{area: area}
	if len(xs) == 0 || len(ys) == 0 {
		return p
	}
	minX, maxX := xs[0], xs[0]
	for _, x := range xs[1:] {
		minX, maxX = min(minX, x), max(maxX, x)
	}
	minY, maxY := ys[0], ys[0]
	for _, y := range ys[1:] {
		minY, maxY = min(minY, y), max(maxY, y)
	}
	p.minX, p.minY = minX, minY
	p.spanX, p.spanY = maxX-minX, maxY-minY
	return p
}

// Project maps a world position to a cell inside the area.
func (p Projection) Project(x, y float64) Point {
	return Point{
		X: p.area.X + scale(x-p.minX, p.spanX, p.area.W),
		Y: p.area.Y + scale(y-p.minY, p.spanY, p.area.H),
	}
}

func scale(offset, span float64, cells int) int {
	if cells <= 1 || span <= 0 {
		return max(0, cells/2)
	}
	v := int(offset/span*float64(cells-1) + 0.5)
	return Clamp(v, 0, cells-1)
}

// Clamp restricts a value to be within [lo, hi].
func Clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// ClampF restricts a float64 value to be within [lo, hi].
func ClampF(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
