package geom

import "fmt"

// Rect is a raw measurement reported by a host: the top-left corner plus
// dimensions, in unrounded float units.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// NewRect creates a Rect with the given position and dimensions.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// IsEmpty returns true if the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Translate returns a new Rect moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Edges converts the measurement to rounded edge form. Right and bottom are
// rounded from the unrounded sums so they carry no accumulated error.
func (r Rect) Edges() Position {
	return Position{
		Left:   Round(r.X),
		Top:    Round(r.Y),
		Right:  Round(r.X + r.Width),
		Bottom: Round(r.Y + r.Height),
	}
}

// Position is an edge-form rectangle. All four edges are stored and compared
// independently; Right and Bottom are never derived from a width or height.
type Position struct {
	Left, Top, Right, Bottom float64
}

// Rounded returns p with every edge rounded.
func (p Position) Rounded() Position {
	return Position{
		Left:   Round(p.Left),
		Top:    Round(p.Top),
		Right:  Round(p.Right),
		Bottom: Round(p.Bottom),
	}
}

// Snapshot returns p. It lets a literal Position stand in wherever a
// rectangle source is expected.
func (p Position) Snapshot() Position {
	return p
}

func (p Position) String() string {
	return fmt.Sprintf("(%g,%g,%g,%g)", p.Left, p.Top, p.Right, p.Bottom)
}

// Size is a width/height pair.
type Size struct {
	Width, Height float64
}

// Rounded returns s with both dimensions rounded.
func (s Size) Rounded() Size {
	return Size{Width: Round(s.Width), Height: Round(s.Height)}
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

// Point represents an (X, Y) coordinate.
type Point struct {
	X, Y float64
}

// Add returns a new Point offset by other.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns a new Point with other subtracted.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}
