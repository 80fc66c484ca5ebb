package track

import "sync"

// Value is a read/write slot. Plain values and cells both satisfy it, so the
// measurement and diff logic is the same whether or not a tracker's fields
// are observable.
type Value[T any] interface {
	Get() T
	Set(v T)
}

// plainValue is a mutex guarded Value with no observers.
type plainValue[T any] struct {
	mu sync.RWMutex
	v  T
}

func (p *plainValue[T]) Get() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.v
}

func (p *plainValue[T]) Set(v T) {
	p.mu.Lock()
	p.v = v
	p.mu.Unlock()
}

// ValueFactory creates the slots backing a tracker's geometry fields.
type ValueFactory func(initial float64) Value[float64]

// PlainValues stores fields as plain values.
func PlainValues() ValueFactory {
	return func(initial float64) Value[float64] {
		return &plainValue[float64]{v: initial}
	}
}

// CellValues stores fields as cells on b. Every field is then a
// *Cell[float64] that consumers can Bind to.
func CellValues(b *Batcher) ValueFactory {
	return func(initial float64) Value[float64] {
		return NewCell(b, initial)
	}
}

// PositionFields holds the four edges of a position as independent values.
type PositionFields struct {
	Left, Top, Right, Bottom Value[float64]
}

func newPositionFields(f ValueFactory) *PositionFields {
	return &PositionFields{Left: f(0), Top: f(0), Right: f(0), Bottom: f(0)}
}

// Snapshot reads the four edges into a plain Position.
func (p *PositionFields) Snapshot() Position {
	return Position{
		Left:   p.Left.Get(),
		Top:    p.Top.Get(),
		Right:  p.Right.Get(),
		Bottom: p.Bottom.Get(),
	}
}

func (p *PositionFields) store(pos Position) {
	p.Left.Set(pos.Left)
	p.Top.Set(pos.Top)
	p.Right.Set(pos.Right)
	p.Bottom.Set(pos.Bottom)
}

// SizeFields holds width and height as independent values.
type SizeFields struct {
	Width, Height Value[float64]
}

func newSizeFields(f ValueFactory) *SizeFields {
	return &SizeFields{Width: f(0), Height: f(0)}
}

// Snapshot reads both dimensions into a plain Size.
func (s *SizeFields) Snapshot() Size {
	return Size{Width: s.Width.Get(), Height: s.Height.Get()}
}

func (s *SizeFields) store(size Size) {
	s.Width.Set(size.Width)
	s.Height.Set(size.Height)
}
