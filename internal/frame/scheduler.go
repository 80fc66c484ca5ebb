package frame

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"go.uber.org/zap"
)

// ErrCallbackPanic is the cause of every fault raised by a panicking
// callback or queued function.
const ErrCallbackPanic = errors.ConstError("frame callback panicked")

// Callback receives the timestamp of the tick it runs in.
type Callback func(now time.Time)

// FaultHandler receives isolated callback failures.
type FaultHandler func(err error)

// entry is one registration in a phase. removed is guarded by Scheduler.mu.
type entry struct {
	fn         Callback
	persistent bool
	removed    bool
}

// Scheduler runs phase callbacks once per tick. Registration, cancellation
// and Queue are safe from any goroutine; ticks are serialized.
type Scheduler struct {
	mu      sync.Mutex
	phases  [numPhases][]*entry
	queue   []func()
	started bool
	stopped bool

	tickMu sync.Mutex
	ticks  atomic.Uint64

	driver   Driver
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	onFault FaultHandler
	log     *zap.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDriver sets the tick source started by the first registration.
// Without a driver the owner calls Tick itself.
func WithDriver(d Driver) Option {
	return func(s *Scheduler) {
		s.driver = d
	}
}

// WithFaultHandler sets the handler for callback panics.
func WithFaultHandler(fn FaultHandler) Option {
	return func(s *Scheduler) {
		s.onFault = fn
	}
}

// WithLogger sets the scheduler's logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		s.log = l
	}
}

// New creates a Scheduler. It does not start ticking until the first
// registration.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		stopCh: make(chan struct{}),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule registers fn to run during phase on every tick if persistent is
// true, otherwise exactly once. The returned cancel removes fn before it
// next runs; calling it again, or after a one-shot already ran, is a no-op.
func (s *Scheduler) Schedule(phase Phase, fn Callback, persistent bool) (cancel func()) {
	if phase >= numPhases {
		panic("frame: unknown phase " + phase.String())
	}
	e := &entry{fn: fn, persistent: persistent}

	s.mu.Lock()
	s.phases[phase] = append(s.phases[phase], e)
	s.startLocked()
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.removeLocked(phase, e)
		s.mu.Unlock()
	}
}

// Queue posts fn to run on the ticking goroutine at the next phase boundary.
func (s *Scheduler) Queue(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.startLocked()
	s.mu.Unlock()
}

// Len returns the number of callbacks registered for phase.
func (s *Scheduler) Len(phase Phase) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.phases[phase])
}

// Ticks returns how many ticks have completed or are in progress.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks.Load()
}

// Tick runs one frame: every phase in order, with queued work drained before
// each phase and after the last one. A tick started while another is running
// waits for it to finish.
func (s *Scheduler) Tick(now time.Time) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.ticks.Add(1)
	for _, phase := range Phases {
		s.drain()
		s.runPhase(phase, now)
	}
	s.drain()
}

// runPhase iterates a snapshot of the phase taken when it starts. Entries
// added during the pass wait for the next tick. Entries cancelled during the
// pass are skipped if not yet reached.
func (s *Scheduler) runPhase(phase Phase, now time.Time) {
	s.mu.Lock()
	snapshot := slices.Clone(s.phases[phase])
	s.mu.Unlock()

	for _, e := range snapshot {
		s.mu.Lock()
		if e.removed {
			s.mu.Unlock()
			continue
		}
		if !e.persistent {
			s.removeLocked(phase, e)
		}
		s.mu.Unlock()

		s.invoke(phase.String(), func() { e.fn(now) })
	}
}

func (s *Scheduler) drain() {
	s.mu.Lock()
	queued := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, fn := range queued {
		s.invoke("queued", fn)
	}
}

// invoke runs fn, turning a panic into a reported fault.
func (s *Scheduler) invoke(stage string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.Annotatef(ErrCallbackPanic, "%s: %v", stage, r)
			s.fault(err)
		}
	}()
	fn()
}

func (s *Scheduler) fault(err error) {
	if s.onFault != nil {
		s.onFault(err)
		return
	}
	s.log.Error("frame callback failed", zap.Error(err))
}

func (s *Scheduler) removeLocked(phase Phase, e *entry) {
	if e.removed {
		return
	}
	e.removed = true
	s.phases[phase] = slices.DeleteFunc(s.phases[phase], func(x *entry) bool {
		return x == e
	})
}

// startLocked starts the driver once. Caller must hold mu.
func (s *Scheduler) startLocked() {
	if s.driver == nil || s.started || s.stopped {
		return
	}
	s.started = true
	s.log.Debug("frame loop started")
	s.wg.Go(func() {
		s.driver.Run(s.Tick, s.stopCh)
	})
}

// Stop halts the driver. Stop is idempotent. Registrations after Stop are
// kept but never run unless the owner calls Tick.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		close(s.stopCh)
		s.log.Debug("frame loop stopped", zap.Uint64("ticks", s.ticks.Load()))
	})
}

// Wait blocks until the driver goroutine has exited. Do not call Wait from a
// callback: the driver is blocked on the tick that is running it.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
