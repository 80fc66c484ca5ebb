package track

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/grindlemire/go-track/internal/geom"
	"github.com/grindlemire/go-track/internal/scene"
)

func TestIntegration_SceneRelativeTracking(t *testing.T) {
	s := scene.New(80, 24)
	panel := s.Add(nil, "panel", geom.Point{X: 10, Y: 2}, geom.Size{Width: 40, Height: 12})
	item := s.Add(panel, "item", geom.Point{X: 3, Y: 4}, geom.Size{Width: 5, Height: 1})

	e, _, _ := newTestEngine(t, s)

	panelRec, itemRec := &recorder{}, &recorder{}
	e.Track(panel, nil).On(panelRec)
	inPanel := e.Track(item, RelativeTo(panel))
	inPanel.On(itemRec)
	e.Tick(epoch)

	want := Position{Left: 3, Top: 4, Right: 32, Bottom: 7}
	if diff := cmp.Diff(want, inPanel.RelativePosition()); diff != "" {
		t.Errorf("item in panel mismatch (-want +got):\n%s", diff)
	}

	// Moving the container moves the item with it: the item's viewport
	// position changes but its position in the panel does not.
	s.Move(panel, geom.Point{X: 5, Y: 1})
	e.Tick(epoch)

	if panelRec.count() != 2 {
		t.Errorf("panel listener calls = %d, want 2", panelRec.count())
	}
	if itemRec.count() != 1 {
		t.Errorf("item listener calls = %d, want 1", itemRec.count())
	}
	if got := inPanel.Position().Left; got != 18 {
		t.Errorf("item viewport Left = %v, want 18", got)
	}

	// Moving the item inside the panel is reported.
	s.Move(item, geom.Point{X: 1})
	e.Tick(epoch)
	if itemRec.count() != 2 {
		t.Errorf("item listener calls = %d, want 2", itemRec.count())
	}
}

func TestIntegration_SceneDocument(t *testing.T) {
	s := scene.New(80, 24)
	box := s.Add(nil, "box", geom.Point{X: 1, Y: 1}, geom.Size{Width: 2, Height: 2})

	e, _, _ := newTestEngine(t, s)
	tr := e.Track(box, RelativeTo(Document))
	tr.OnFunc(func(*Tracker) {})
	e.Tick(epoch)

	want := Position{Left: 1, Top: 1, Right: 77, Bottom: 21}
	if diff := cmp.Diff(want, tr.RelativePosition()); diff != "" {
		t.Errorf("RelativePosition() mismatch (-want +got):\n%s", diff)
	}
	if tr.Reference().Subject() != s.RootBox() {
		t.Error("Document reference is not the scene root")
	}
}

func TestIntegration_SceneBouncingStaysInsideParent(t *testing.T) {
	s := scene.New(80, 24)
	panel := s.Add(nil, "panel", geom.Point{X: 5, Y: 5}, geom.Size{Width: 30, Height: 10})
	ball := s.Add(panel, "ball", geom.Point{}, geom.Size{Width: 3, Height: 2})
	bouncers := []*scene.Bouncer{{Box: ball, Velocity: geom.Point{X: 1.3, Y: 0.7}}}

	e, _, _ := newTestEngine(t, s)
	var escaped []Position
	moves := 0
	e.Track(ball, RelativeTo(panel)).OnFunc(func(t *Tracker) {
		moves++
		rel := t.RelativePosition()
		if rel.Left < 0 || rel.Top < 0 || rel.Right < 0 || rel.Bottom < 0 {
			escaped = append(escaped, rel)
		}
	}, WithSize(false))
	e.Schedule(PhaseRender, func(time.Time) { s.Step(bouncers) }, true)

	for i := 0; i < 200; i++ {
		e.Tick(epoch)
	}
	if len(escaped) > 0 {
		t.Errorf("ball left its panel at %v", escaped)
	}
	// Every step moves the ball on at least one axis.
	if moves < 190 {
		t.Errorf("position changes = %d over 200 frames", moves)
	}
}
