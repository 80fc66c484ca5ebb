// Package track reports the on-screen position and size of UI elements
// relative to a reference frame, once per rendered frame.
//
// Users import this single package for the complete public API: the Engine
// that owns the frame loop, Trackers, references, and observable cells.
//
// A Tracker observes one subject. Every frame it is reset in the Setup
// phase, measured in the Read phase, and notifies its listeners in the
// Update phase if the rounded geometry changed:
//
//	engine, err := track.NewEngine(host)
//	if err != nil {
//	    return err
//	}
//	defer engine.Close()
//
//	t := engine.Track(overlay, track.RelativeTo(panel))
//	off := t.OnFunc(func(t *track.Tracker) {
//	    fmt.Println(t.RelativePosition())
//	})
//	defer off()
//
// Tracking the same (subject, reference) pair twice returns the same
// Tracker. A reference is always measured before the trackers that depend on
// it, so relative positions never mix values from two different frames.
//
// Coordinates are rounded to one tenth of a unit before they are stored or
// compared; sub-unit jitter never produces a change notification.
package track
