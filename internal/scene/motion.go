package scene

import "github.com/grindlemire/go-track/internal/geom"

// Bouncer moves a box at a constant velocity, reflecting off its parent's
// edges.
type Bouncer struct {
	Box      *Box
	Velocity geom.Point
}

// Step advances every bouncer by one frame.
func (s *Scene) Step(bouncers []*Bouncer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range bouncers {
		parent := b.Box.parent
		if parent == nil {
			continue
		}
		next := b.Box.offset.Add(b.Velocity)
		maxX := parent.size.Width - b.Box.size.Width
		maxY := parent.size.Height - b.Box.size.Height

		if next.X < 0 || next.X > maxX {
			b.Velocity.X = -b.Velocity.X
			next.X = clamp(next.X, 0, maxX)
		}
		if next.Y < 0 || next.Y > maxY {
			b.Velocity.Y = -b.Velocity.Y
			next.Y = clamp(next.Y, 0, maxY)
		}
		b.Box.offset = next
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
