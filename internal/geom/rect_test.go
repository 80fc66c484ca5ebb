package geom

import "testing"

func TestRect_RightBottom(t *testing.T) {
	type tc struct {
		rect   Rect
		right  float64
		bottom float64
	}

	tests := map[string]tc{
		"standard rect": {
			rect:   NewRect(5, 10, 20, 15),
			right:  25,
			bottom: 25,
		},
		"negative position": {
			rect:   NewRect(-5, -5, 10, 10),
			right:  5,
			bottom: 5,
		},
		"zero size": {
			rect:   NewRect(5, 5, 0, 0),
			right:  5,
			bottom: 5,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.rect.Right(); got != tt.right {
				t.Errorf("Right() = %v, want %v", got, tt.right)
			}
			if got := tt.rect.Bottom(); got != tt.bottom {
				t.Errorf("Bottom() = %v, want %v", got, tt.bottom)
			}
		})
	}
}

func TestRect_Edges(t *testing.T) {
	type tc struct {
		rect Rect
		want Position
	}

	tests := map[string]tc{
		"integral": {
			rect: NewRect(10, 10, 100, 50),
			want: Position{Left: 10, Top: 10, Right: 110, Bottom: 60},
		},
		"sub-unit jitter absorbed": {
			rect: NewRect(10.02, 9.98, 100, 50),
			want: Position{Left: 10, Top: 10, Right: 110, Bottom: 60},
		},
		"right rounded from unrounded sum": {
			rect: NewRect(0.04, 0, 0.04, 1),
			want: Position{Left: 0, Top: 0, Right: 0.1, Bottom: 1},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.rect.Edges(); got != tt.want {
				t.Errorf("Edges() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRect_IsEmpty(t *testing.T) {
	if !NewRect(0, 0, 0, 10).IsEmpty() {
		t.Error("zero width rect should be empty")
	}
	if NewRect(0, 0, 1, 1).IsEmpty() {
		t.Error("1x1 rect should not be empty")
	}
}

func TestPoint_AddSub(t *testing.T) {
	p := Point{X: 3, Y: 4}
	q := Point{X: 1, Y: 2}
	if got := p.Add(q); got != (Point{X: 4, Y: 6}) {
		t.Errorf("Add() = %v, want {4 6}", got)
	}
	if got := p.Sub(q); got != (Point{X: 2, Y: 2}) {
		t.Errorf("Sub() = %v, want {2 2}", got)
	}
}
