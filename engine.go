package track

import (
	"sync"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"

	"github.com/grindlemire/go-track/internal/frame"
	"github.com/grindlemire/go-track/internal/logging"
	"github.com/grindlemire/go-track/internal/registry"
)

// Phase identifies one stage of a frame.
type Phase = frame.Phase

const (
	PhaseSetup  = frame.Setup
	PhaseRead   = frame.Read
	PhaseUpdate = frame.Update
	PhaseRender = frame.Render
)

// Engine owns the services every tracker shares: the frame scheduler, the
// identity registry, the batcher and the batching coordinator. Construct one
// per display surface.
type Engine struct {
	host     Host
	sched    *frame.Scheduler
	registry *registry.Registry[*Tracker]
	batcher  *Batcher
	coord    *batchCoordinator
	values   ValueFactory
	log      *zap.Logger
	onFault  func(error)

	// Configuration (set via options)
	fps        int
	clock      clock.Clock
	manual     bool
	cellFields bool

	// trackMu makes lookup-or-create in Track atomic.
	trackMu sync.Mutex
}

// NewEngine creates an Engine measuring through host. The frame loop starts
// lazily when the first tracker gains a listener.
func NewEngine(host Host, opts ...Option) (*Engine, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	e := &Engine{
		host:  host,
		fps:   frame.DefaultFrameRate,
		clock: clock.WallClock,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	if e.log == nil {
		e.log = logging.Default()
	}
	if e.batcher == nil {
		e.batcher = NewBatcher()
	}
	if e.values == nil {
		if e.cellFields {
			e.values = CellValues(e.batcher)
		} else {
			e.values = PlainValues()
		}
	}

	schedOpts := []frame.Option{
		frame.WithFaultHandler(e.fault),
		frame.WithLogger(e.log.Named("frame")),
	}
	if !e.manual {
		d, err := frame.NewClockDriver(e.clock, e.fps)
		if err != nil {
			return nil, err
		}
		schedOpts = append(schedOpts, frame.WithDriver(d))
	}
	e.sched = frame.New(schedOpts...)
	e.registry = registry.New[*Tracker]()
	e.coord = newBatchCoordinator(e.sched, e.batcher)
	return e, nil
}

// Track returns the tracker for subject relative to ref, creating it on
// first request. A nil ref, or Viewport, tracks relative to the viewport.
// Repeated calls with the same pair return the same tracker until it is
// destroyed. Trackers relative to a subject are keyed by that subject, not
// by its tracker: destroying the reference's tracker leaves its dependents
// registered, and they move to the reference's new tracker on their next
// measurement.
func (e *Engine) Track(subject Subject, ref Reference) *Tracker {
	subject = e.resolveSubject(subject)

	e.trackMu.Lock()
	defer e.trackMu.Unlock()
	return e.trackLocked(subject, ref)
}

func (e *Engine) trackLocked(subject Subject, ref Reference) *Tracker {
	var resolved reference
	var origin Reference
	var key any

	switch r := ref.(type) {
	case nil, viewportReference:
	case subjectReference:
		rs := e.resolveSubject(r.subject)
		rt := e.trackLocked(rs, nil)
		resolved = reference{kind: refTracker, tracker: rt}
		origin = subjectReference{subject: rs}
		key = rs
	case trackerReference:
		if r.tracker == nil {
			panic("track: RelativeToTracker(nil)")
		}
		if r.tracker.engine != e {
			panic("track: reference tracker belongs to another engine")
		}
		rt := e.liveLocked(r.tracker)
		resolved = reference{kind: refTracker, tracker: rt}
		origin = trackerReference{tracker: rt}
		key = rt.pairKey()
	case Virtual:
		// Virtual sources have no identity; the tracker is not registered.
		return newTracker(e, subject, reference{kind: refVirtual, virtual: adaptVirtual(r)}, r, nil, false)
	default:
		panic("track: unknown reference type")
	}

	// A destroyed tracker stays registered until Destroy reaches forget.
	if t, ok := e.registry.Resolve(subject, key); ok && !t.Destroyed() {
		return t
	}
	t := newTracker(e, subject, resolved, origin, key, true)
	e.registry.Register(t, subject, key)
	e.log.Debug("tracker created",
		zap.Uint64("tracker", t.id),
		zap.Bool("relative", resolved.kind != refNone),
	)
	return t
}

// liveLocked returns t, or when t was destroyed the tracker that now stands
// for the same subject and reference, creating it if needed.
func (e *Engine) liveLocked(t *Tracker) *Tracker {
	if !t.Destroyed() {
		return t
	}
	return e.trackLocked(t.subject, t.origin)
}

// successor is liveLocked for callers outside Track.
func (e *Engine) successor(t *Tracker) *Tracker {
	e.trackMu.Lock()
	defer e.trackMu.Unlock()
	return e.liveLocked(t)
}

// forget drops t's registry entry.
func (e *Engine) forget(t *Tracker) {
	e.trackMu.Lock()
	defer e.trackMu.Unlock()
	if cur, ok := e.registry.Resolve(t.subject, t.key); ok && cur == t {
		e.registry.Remove(t.subject, t.key)
	}
}

// Schedule registers fn in a frame phase, persistent or one-shot. Use the
// Render phase to draw overlays from the values published in Update.
func (e *Engine) Schedule(phase Phase, fn func(now time.Time), persistent bool) (cancel func()) {
	return e.sched.Schedule(phase, fn, persistent)
}

// QueueUpdate runs fn on the frame loop goroutine at the next phase
// boundary. Safe to call from any goroutine.
func (e *Engine) QueueUpdate(fn func()) {
	e.sched.Queue(fn)
}

// Tick runs one frame synchronously. With WithManualTicks this is the only
// way frames run.
func (e *Engine) Tick(now time.Time) {
	e.sched.Tick(now)
}

// Active returns the number of trackers currently in the frame cycle.
func (e *Engine) Active() int {
	return e.coord.count()
}

// Tracked returns the number of registered trackers.
func (e *Engine) Tracked() int {
	return e.registry.Len()
}

// Batcher returns the batcher bracketing each frame.
func (e *Engine) Batcher() *Batcher {
	return e.batcher
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *zap.Logger {
	return e.log
}

// Close stops the frame loop and waits for it to exit. Do not call Close from
// a frame callback or listener.
func (e *Engine) Close() {
	e.sched.Stop()
	e.sched.Wait()
}

// fault logs an isolated failure and forwards it to the fault handler.
func (e *Engine) fault(err error) {
	e.log.Error("tracking fault", zap.Error(err))
	if e.onFault != nil {
		e.onFault(err)
	}
}
