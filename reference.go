package track

// Reference is the coordinate frame a tracker reports relative to. It is one
// of Viewport (or nil), RelativeTo, RelativeToTracker, or a Virtual source.
type Reference interface {
	isReference()
}

type viewportReference struct{}

func (viewportReference) isReference() {}

// Viewport reports positions relative to the display surface. A nil
// Reference means the same thing.
var Viewport Reference = viewportReference{}

type subjectReference struct {
	subject Subject
}

func (subjectReference) isReference() {}

// RelativeTo reports positions relative to another subject. The subject is
// tracked (relative to the viewport) on demand.
func RelativeTo(subject Subject) Reference {
	return subjectReference{subject: subject}
}

type trackerReference struct {
	tracker *Tracker
}

func (trackerReference) isReference() {}

// RelativeToTracker reports positions relative to an existing tracker,
// whatever that tracker is itself relative to. This builds reference chains.
func RelativeToTracker(t *Tracker) Reference {
	return trackerReference{tracker: t}
}

// RectSource yields a position. Position literals and *PositionFields both
// satisfy it.
type RectSource interface {
	Snapshot() Position
}

// Virtual is a reference that is not a tracked subject: an externally
// supplied rectangle in viewport coordinates. Update, if set, runs before
// every read of Position.
//
// Trackers relative to a Virtual source have no registry identity; every
// Track call with one creates a new tracker.
type Virtual struct {
	Position RectSource
	Update   func()
}

func (Virtual) isReference() {}

type refKind uint8

const (
	refNone refKind = iota
	refTracker
	refVirtual
)

// reference is the resolved form of a Reference held by a tracker.
type reference struct {
	kind    refKind
	tracker *Tracker
	virtual *virtualSource
}

// virtualSource normalizes a Virtual into a plain rectangle plus an update
// step that refreshes it.
type virtualSource struct {
	source RectSource
	hook   func()
	rect   Position
}

func adaptVirtual(v Virtual) *virtualSource {
	if v.Position == nil {
		panic("track: Virtual reference without a Position")
	}
	return &virtualSource{
		source: v.Position,
		hook:   v.Update,
		rect:   v.Position.Snapshot(),
	}
}

// update runs the source's own hook, then re-reads its rectangle.
func (v *virtualSource) update() Position {
	if v.hook != nil {
		v.hook()
	}
	v.rect = v.source.Snapshot()
	return v.rect
}
