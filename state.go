package track

import (
	"sync"
	"sync/atomic"
)

// Batcher defers cell binding execution while a batch is open.
//
// The engine opens a batch at the start of every Read phase and closes it in
// the Update phase, so cells written during measurement notify their
// bindings once per frame with the final value instead of once per edge.
//
// Batches nest: bindings only fire when the outermost batch closes.
//
// Outside the frame loop, use Batch to coalesce several Set calls:
//
//	b := track.NewBatcher()
//	left, top := track.NewCell(b, 0.0), track.NewCell(b, 0.0)
//	b.Batch(func() {
//	    left.Set(10)
//	    top.Set(20)
//	})  // bindings on left and top fire here, once each
//
// A Batcher is safe for concurrent use. Bindings deferred by one goroutine
// run on whichever goroutine closes the outermost batch.
type Batcher struct {
	mu           sync.Mutex
	depth        int               // nesting depth (0 = not batching)
	pending      map[uint64]func() // pending binding callbacks keyed by binding ID
	pendingOrder []uint64          // order in which bindings were first triggered
}

// NewBatcher creates a Batcher with no open batch.
func NewBatcher() *Batcher {
	return &Batcher{pending: make(map[uint64]func())}
}

// Begin opens a (possibly nested) batch.
func (b *Batcher) Begin() {
	b.mu.Lock()
	b.depth++
	b.mu.Unlock()
}

// End closes one level of batching. When the outermost batch closes, every
// deferred binding runs once, in the order it was first triggered. End with
// no open batch is a no-op.
func (b *Batcher) End() {
	b.mu.Lock()
	if b.depth == 0 {
		b.mu.Unlock()
		return
	}
	b.depth--
	var callbacks []func()
	if b.depth == 0 && len(b.pending) > 0 {
		callbacks = make([]func(), 0, len(b.pendingOrder))
		for _, id := range b.pendingOrder {
			if cb, ok := b.pending[id]; ok {
				callbacks = append(callbacks, cb)
			}
		}
		b.pending = make(map[uint64]func())
		b.pendingOrder = nil
	}
	b.mu.Unlock()

	// Execute callbacks outside the lock
	for _, cb := range callbacks {
		cb()
	}
}

// Batch runs fn inside a batch and runs the bindings it triggered when fn
// returns.
//
// When the same binding is triggered several times during the batch it runs
// once, with the final value. Bindings run in the order they were first
// triggered, across all cells sharing the Batcher.
//
// If fn panics the batch is still closed before the panic propagates.
func (b *Batcher) Batch(fn func()) {
	b.Begin()
	defer b.End()
	fn()
}

// Depth returns the current nesting depth.
func (b *Batcher) Depth() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.depth
}

// deferCall queues fn under id if a batch is open. It reports whether it did.
func (b *Batcher) deferCall(id uint64, fn func()) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.depth == 0 {
		return false
	}
	if _, exists := b.pending[id]; !exists {
		b.pendingOrder = append(b.pendingOrder, id)
	}
	b.pending[id] = fn
	return true
}

// nextBindingID generates binding IDs unique across all cells.
var nextBindingID atomic.Uint64

// Cell is an observable value. Set notifies bindings, deferring them while
// the cell's Batcher has a batch open. With WithCellFields, every edge of a
// tracker's Position, Size and RelativePosition is a Cell[float64].
//
// Thread Safety Rules:
//   - Get is safe to call from any goroutine
//   - Bind and its Unbind are safe to call from any goroutine
//   - Set on a tracker's fields is done by the engine on the frame loop; do
//     not Set them yourself
//   - Bindings run on the goroutine that calls Set, or the one that closes
//     the batch; use Engine.QueueUpdate to hand work back to the frame loop
//
// Example usage:
//
//	tr := e.Track(item, track.RelativeTo(list))
//	tr.OnFunc(func(*track.Tracker) {})  // keeps the tracker measured
//	top := tr.RelativeFields().Top.(*track.Cell[float64])
//	top.Bind(func(v float64) {
//	    overlay.MoveTo(v)
//	})
type Cell[T any] struct {
	mu       sync.RWMutex
	value    T
	bindings []*binding[T]
	batcher  *Batcher
}

type binding[T any] struct {
	id     uint64
	fn     func(T)
	active bool
}

// Unbind removes a binding. Calling it more than once is a no-op.
type Unbind func()

// NewCell creates a cell holding initial. A nil batcher means Set always
// notifies immediately. The type T is inferred from the initial value.
//
// Example:
//
//	count := track.NewCell(nil, 0)        // Cell[int]
//	name := track.NewCell(b, "")          // Cell[string], batched by b
func NewCell[T any](b *Batcher, initial T) *Cell[T] {
	return &Cell[T]{value: initial, batcher: b}
}

// Get returns the current value. Thread-safe for reading from any goroutine.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set stores v and notifies bindings, or defers them until the open batch
// closes. Repeated sets within one batch notify once with the final value.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	active := make([]*binding[T], 0, len(c.bindings))
	for _, b := range c.bindings {
		if b.active {
			active = append(active, b)
		}
	}
	// Drop unbound entries so they don't accumulate.
	c.bindings = active
	c.mu.Unlock()

	for _, b := range active {
		fn := b.fn
		if c.batcher != nil && c.batcher.deferCall(b.id, func() { fn(v) }) {
			continue
		}
		fn(v)
	}
}

// Update applies fn to the current value and sets the result.
// This is a convenience for read-modify-write; the read and the write are
// not atomic with respect to other writers.
//
// Example:
//
//	count.Update(func(v int) int { return v + 1 })
func (c *Cell[T]) Update(fn func(T) T) {
	c.Set(fn(c.Get()))
}

// Bind registers fn to run with the new value after every Set.
// Returns an Unbind handle to remove the binding.
//
// Bindings run in registration order. A binding removed while a batch is
// open still runs if it was triggered before removal.
//
// Example:
//
//	unbind := width.Bind(func(v float64) {
//	    log.Printf("width is now %.1f", v)
//	})
//	defer unbind()
func (c *Cell[T]) Bind(fn func(T)) Unbind {
	id := nextBindingID.Add(1)

	c.mu.Lock()
	b := &binding[T]{id: id, fn: fn, active: true}
	c.bindings = append(c.bindings, b)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		b.active = false
		c.mu.Unlock()
	}
}
