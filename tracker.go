package track

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/grindlemire/go-track/internal/frame"
	"github.com/grindlemire/go-track/internal/geom"
)

// maxReferenceDepth bounds recursive reference measurement.
const maxReferenceDepth = 64

var nextTrackerID atomic.Uint64

// Tracker observes one subject and reports its geometry relative to its
// reference.
//
// States: a tracker with no listeners is unattached. Its first listener
// attaches it to the frame cycle, where it is reset (Setup), measured (Read)
// and emits (Update) every frame. Pause detaches it while keeping listeners;
// Resume re-attaches it. Destroy is terminal: every later call is a no-op.
type Tracker struct {
	id      uint64
	engine  *Engine
	subject Subject
	origin  Reference // the reference Track was called with, resolved
	key     any       // registry reference key, see pairKey
	listed  bool      // registered in the engine registry

	position *PositionFields
	size     *SizeFields
	relative *PositionFields

	mu          sync.Mutex
	ref         reference
	subs        []*subscription
	dirty       bool
	changedPos  bool
	changedSize bool
	visible     bool
	attached    bool
	paused      bool
	destroyed   bool

	// Frame cycle registrations, set while attached.
	cancelReset  func()
	cancelRead   func()
	cancelUpdate func()
	cancelRef    func()
}

func newTracker(e *Engine, subject Subject, ref reference, origin Reference, key any, listed bool) *Tracker {
	return &Tracker{
		id:       nextTrackerID.Add(1),
		engine:   e,
		subject:  subject,
		origin:   origin,
		key:      key,
		listed:   listed,
		ref:      ref,
		position: newPositionFields(e.values),
		size:     newSizeFields(e.values),
		relative: newPositionFields(e.values),
		dirty:    true,
	}
}

// chainKey is the registry key of a reference that is itself relative to
// something: the reference's own subject and key.
type chainKey struct {
	subject any
	ref     any
}

// pairKey is the registry key dependents of t are registered under. A
// viewport tracker stands for its subject, so RelativeTo(s) and
// RelativeToTracker(Track(s, nil)) share a key. Unregistered trackers have
// no identity beyond themselves.
func (t *Tracker) pairKey() any {
	switch {
	case !t.listed:
		return t
	case t.key == nil:
		return t.subject
	default:
		return chainKey{subject: t.subject, ref: t.key}
	}
}

// ID returns a process-unique number identifying the tracker in logs.
func (t *Tracker) ID() uint64 {
	return t.id
}

// Subject returns the tracked subject.
func (t *Tracker) Subject() Subject {
	return t.subject
}

// Reference returns the tracker this one is relative to, or nil for the
// viewport and virtual sources. After the reference is destroyed this is
// the destroyed tracker until the next measurement replaces it.
func (t *Tracker) Reference() *Tracker {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ref.kind == refTracker {
		return t.ref.tracker
	}
	return nil
}

// Position returns the last measured position in viewport coordinates.
func (t *Tracker) Position() Position {
	return t.position.Snapshot()
}

// Size returns the last measured size.
func (t *Tracker) Size() Size {
	return t.size.Snapshot()
}

// RelativePosition returns the distance from each edge of the reference to
// the matching edge of the subject. Left and top grow as the subject moves
// right and down; right and bottom shrink.
func (t *Tracker) RelativePosition() Position {
	return t.relative.Snapshot()
}

// PositionFields returns the value slots behind Position.
func (t *Tracker) PositionFields() *PositionFields { return t.position }

// SizeFields returns the value slots behind Size.
func (t *Tracker) SizeFields() *SizeFields { return t.size }

// RelativeFields returns the value slots behind RelativePosition.
func (t *Tracker) RelativeFields() *PositionFields { return t.relative }

// Visible reports whether the last measurement found the subject rendered.
func (t *Tracker) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

// Attached reports whether the tracker is in the frame cycle.
func (t *Tracker) Attached() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attached
}

// Paused reports whether the tracker is paused.
func (t *Tracker) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// Destroyed reports whether Destroy was called.
func (t *Tracker) Destroyed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.destroyed
}

// Pause detaches the tracker from the frame cycle without dropping its
// listeners. It stops measuring and emitting until Resume. An emission
// already running for the current frame is not interrupted.
func (t *Tracker) Pause() {
	t.mu.Lock()
	if t.destroyed || t.paused {
		t.mu.Unlock()
		return
	}
	t.paused = true
	after := t.detachLocked()
	t.mu.Unlock()
	after()
}

// Resume re-attaches a paused tracker if it still has listeners. The next
// frame measures current geometry and emits only on a real difference from
// the last stored values.
func (t *Tracker) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed || !t.paused {
		return
	}
	t.paused = false
	t.attachLocked()
}

// Destroy detaches the tracker, drops its listeners and reference, and
// removes it from the registry. Destroy is idempotent.
func (t *Tracker) Destroy() {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return
	}
	t.destroyed = true
	after := t.detachLocked()
	for _, s := range t.subs {
		s.removed = true
	}
	t.subs = nil
	t.ref = reference{}
	t.mu.Unlock()

	after()
	if t.listed {
		t.engine.forget(t)
	}
}

// attachLocked enters the frame cycle. Caller must hold mu.
func (t *Tracker) attachLocked() {
	if t.attached || t.paused || t.destroyed || len(t.subs) == 0 {
		return
	}
	t.attached = true

	// Never emit flags left over from before a pause.
	t.dirty = true
	t.changedPos = false
	t.changedSize = false

	e := t.engine
	// The coordinator registers first so its batch brackets this tracker.
	e.coord.added()
	t.cancelReset = e.sched.Schedule(frame.Setup, t.reset, true)
	t.cancelRead = e.sched.Schedule(frame.Read, t.read, true)
	t.cancelUpdate = e.sched.Schedule(frame.Update, t.emit, true)

	// A reference without listeners is never measured, so hold one on it.
	if t.ref.kind == refTracker {
		t.cancelRef = t.ref.tracker.OnFunc(func(*Tracker) {})
	}
}

// detachLocked leaves the frame cycle. Caller must hold mu and must run the
// returned func after releasing it: releasing the reference and closing the
// batch may run user bindings.
func (t *Tracker) detachLocked() (after func()) {
	if !t.attached {
		return func() {}
	}
	t.attached = false

	cancels := []func(){t.cancelReset, t.cancelRead, t.cancelUpdate}
	cancelRef := t.cancelRef
	t.cancelReset, t.cancelRead, t.cancelUpdate, t.cancelRef = nil, nil, nil, nil

	coord := t.engine.coord
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
		if cancelRef != nil {
			cancelRef()
		}
		coord.removed()
	}
}

// reset runs in the Setup phase.
func (t *Tracker) reset(time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dirty = true
	t.changedPos = false
	t.changedSize = false
}

// read runs in the Read phase.
func (t *Tracker) read(time.Time) {
	t.measure(0)
}

// measure recomputes geometry if the tracker is dirty. The reference is
// measured first, so the relative position always uses its values from the
// same frame.
func (t *Tracker) measure(depth int) {
	if depth > maxReferenceDepth {
		t.engine.fault(errors.Annotatef(ErrReferenceDepth, "tracker %d at depth %d", t.id, depth))
		return
	}

	t.mu.Lock()
	if !t.dirty || t.paused || t.destroyed {
		t.mu.Unlock()
		return
	}
	t.dirty = false
	ref := t.ref
	t.mu.Unlock()

	var refPos *Position
	switch ref.kind {
	case refTracker:
		rt := t.follow(ref.tracker)
		if rt == nil {
			return
		}
		p := rt.framePosition(depth + 1)
		refPos = &p
	case refVirtual:
		p := ref.virtual.update()
		refPos = &p
	}

	rects := t.engine.host.Measure(t.subject)
	if len(rects) == 0 {
		t.setVisible(false)
		return
	}
	t.setVisible(true)

	rect := rects[0]
	pos := rect.Edges()
	t.position.store(pos)

	size := Size{Width: geom.Round(rect.Width), Height: geom.Round(rect.Height)}
	sizeChanged := t.size.Snapshot() != size
	if sizeChanged {
		t.size.store(size)
	}

	rel := relativeTo(pos, refPos, t.engine.host)
	posChanged := t.relative.Snapshot() != rel
	if posChanged {
		t.relative.store(rel)
	}

	t.mu.Lock()
	t.changedPos = t.changedPos || posChanged
	t.changedSize = t.changedSize || sizeChanged
	t.mu.Unlock()
}

// framePosition returns t's viewport position for the current frame. A
// paused tracker keeps its stored values, so its subject is read from the
// host without storing anything.
func (t *Tracker) framePosition(depth int) Position {
	if t.Paused() {
		if rects := t.engine.host.Measure(t.subject); len(rects) > 0 {
			return rects[0].Edges()
		}
		return t.Position()
	}
	t.measure(depth)
	return t.Position()
}

// follow returns a live reference tracker. A destroyed reference is replaced
// by the tracker now registered for the same subject and reference, and the
// hold on it moves along. It returns nil if t itself was destroyed meanwhile.
func (t *Tracker) follow(rt *Tracker) *Tracker {
	if !rt.Destroyed() {
		return rt
	}
	next := t.engine.successor(rt)

	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return nil
	}
	if t.ref.tracker != rt {
		// Replaced concurrently.
		cur := t.ref.tracker
		t.mu.Unlock()
		return cur
	}
	t.ref.tracker = next
	if t.attached {
		// The hold on rt was dropped when rt was destroyed.
		t.cancelRef = next.OnFunc(func(*Tracker) {})
	}
	t.mu.Unlock()

	t.engine.log.Debug("tracker reference replaced",
		zap.Uint64("tracker", t.id),
		zap.Uint64("old", rt.id),
		zap.Uint64("new", next.id),
	)
	return next
}

// relativeTo derives the relative position of pos. Without a reference the
// frame is the viewport.
func relativeTo(pos Position, ref *Position, host Host) Position {
	if ref != nil {
		return Position{
			Left:   geom.Round(pos.Left - ref.Left),
			Top:    geom.Round(pos.Top - ref.Top),
			Right:  geom.Round(ref.Right - pos.Right),
			Bottom: geom.Round(ref.Bottom - pos.Bottom),
		}
	}
	vp := host.Viewport()
	return Position{
		Left:   pos.Left,
		Top:    pos.Top,
		Right:  geom.Round(vp.Width - pos.Right),
		Bottom: geom.Round(vp.Height - pos.Bottom),
	}
}

func (t *Tracker) setVisible(v bool) {
	t.mu.Lock()
	changed := t.visible != v
	t.visible = v
	t.mu.Unlock()
	if changed {
		t.engine.log.Debug("tracker visibility changed", zap.Uint64("tracker", t.id), zap.Bool("visible", v))
	}
}
