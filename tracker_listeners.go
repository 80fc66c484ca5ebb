package track

import (
	"fmt"
	"reflect"
	"time"

	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Listener is notified when a tracker's geometry changes.
type Listener interface {
	OnChange(t *Tracker)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(t *Tracker)

// OnChange calls f(t).
func (f ListenerFunc) OnChange(t *Tracker) { f(t) }

type listenConfig struct {
	position bool
	size     bool
	once     bool
}

// ListenOption configures a listener's interests.
type ListenOption func(*listenConfig)

// WithPosition sets whether the listener hears relative position changes.
// Default is true.
func WithPosition(enabled bool) ListenOption {
	return func(c *listenConfig) {
		c.position = enabled
	}
}

// WithSize sets whether the listener hears size changes. Default is true.
func WithSize(enabled bool) ListenOption {
	return func(c *listenConfig) {
		c.size = enabled
	}
}

// Once removes the listener before its first invocation.
func Once() ListenOption {
	return func(c *listenConfig) {
		c.once = true
	}
}

// subscription is one registered listener. removed is guarded by the owning
// tracker's mu.
type subscription struct {
	listener Listener // as registered, for Off
	call     Listener // what emit invokes
	position bool
	size     bool
	removed  bool
}

func (s *subscription) wants(pos, size bool) bool {
	return (s.position && pos) || (s.size && size)
}

// onceListener unsubscribes, then calls the listener it wraps. A once
// listener matched by both flags in one frame still runs only once.
type onceListener struct {
	tracker *Tracker
	sub     *subscription
	inner   Listener
}

func (o *onceListener) OnChange(t *Tracker) {
	if !o.tracker.off(o.sub) {
		return
	}
	o.inner.OnChange(t)
}

// On registers l and returns a func that removes it. The first listener
// attaches the tracker to the frame cycle; removing the last detaches it.
// On a destroyed tracker On does nothing.
func (t *Tracker) On(l Listener, opts ...ListenOption) (off func()) {
	if l == nil {
		panic("track: nil listener")
	}
	cfg := listenConfig{position: true, size: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	sub := &subscription{
		listener: l,
		call:     l,
		position: cfg.position,
		size:     cfg.size,
	}
	if cfg.once {
		sub.call = &onceListener{tracker: t, sub: sub, inner: l}
	}

	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return func() {}
	}
	t.subs = append(t.subs, sub)
	t.attachLocked()
	t.mu.Unlock()

	return func() { t.off(sub) }
}

// OnFunc registers fn as a listener.
func (t *Tracker) OnFunc(fn func(t *Tracker), opts ...ListenOption) (off func()) {
	return t.On(ListenerFunc(fn), opts...)
}

// Off removes every registration of l. Only comparable listeners can be
// removed this way; use the func returned by On for closures.
func (t *Tracker) Off(l Listener) {
	if l == nil || !reflect.TypeOf(l).Comparable() {
		return
	}
	t.mu.Lock()
	var kept []*subscription
	for _, s := range t.subs {
		if s.listener == l {
			s.removed = true
			continue
		}
		kept = append(kept, s)
	}
	t.subs = kept
	after := t.detachIfIdleLocked()
	t.mu.Unlock()
	after()
}

// off removes sub. It reports whether sub was still registered.
func (t *Tracker) off(sub *subscription) bool {
	t.mu.Lock()
	if sub.removed {
		t.mu.Unlock()
		return false
	}
	sub.removed = true
	for i, s := range t.subs {
		if s == sub {
			t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
			break
		}
	}
	after := t.detachIfIdleLocked()
	t.mu.Unlock()
	after()
	return true
}

func (t *Tracker) detachIfIdleLocked() func() {
	if len(t.subs) > 0 {
		return func() {}
	}
	return t.detachLocked()
}

// Listeners returns the number of registered listeners.
func (t *Tracker) Listeners() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// emit runs in the Update phase and notifies every listener whose interests
// intersect this frame's changes.
func (t *Tracker) emit(time.Time) {
	t.mu.Lock()
	if t.paused || t.destroyed {
		t.mu.Unlock()
		return
	}
	pos, size := t.changedPos, t.changedSize
	var due []*subscription
	if pos || size {
		for _, s := range t.subs {
			if s.wants(pos, size) {
				due = append(due, s)
			}
		}
	}
	t.mu.Unlock()

	for _, s := range due {
		t.mu.Lock()
		removed := s.removed
		t.mu.Unlock()
		if removed {
			continue
		}
		t.notify(s)
	}
}

// notify calls one listener, isolating a panic to that listener.
func (t *Tracker) notify(s *subscription) {
	defer func() {
		if r := recover(); r != nil {
			t.engine.fault(errors.Annotatef(ErrListenerPanic, "tracker %d: %v", t.id, r))
		}
	}()
	s.call.OnChange(t)
}

// String describes the tracker for logs.
func (t *Tracker) String() string {
	return fmt.Sprintf("Tracker(%d %s)", t.id, t.RelativePosition())
}

// LogFields returns structured fields describing the tracker's last
// measurement.
func (t *Tracker) LogFields() []zap.Field {
	return []zap.Field{
		zap.Uint64("tracker", t.id),
		zap.Stringer("position", t.Position()),
		zap.Stringer("relative", t.RelativePosition()),
		zap.Stringer("size", t.Size()),
	}
}
