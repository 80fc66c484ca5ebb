package track

import (
	"sync"
	"time"

	"github.com/grindlemire/go-track/internal/frame"
)

// batchCoordinator brackets the Read and Update phases with a batch while at
// least one tracker is attached, so cell-backed fields written during
// measurement notify once per frame.
type batchCoordinator struct {
	mu      sync.Mutex
	sched   *frame.Scheduler
	batcher *Batcher
	active  int
	open    bool // a batch opened by begin is still open

	cancelBegin func()
	cancelEnd   func()
}

func newBatchCoordinator(sched *frame.Scheduler, b *Batcher) *batchCoordinator {
	return &batchCoordinator{sched: sched, batcher: b}
}

// added records a tracker joining the frame cycle.
func (c *batchCoordinator) added() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active++
	if c.active == 1 {
		c.cancelBegin = c.sched.Schedule(frame.Read, c.begin, true)
		c.cancelEnd = c.sched.Schedule(frame.Update, c.end, true)
	}
}

// removed records a tracker leaving the frame cycle. When the last one
// leaves mid-frame, the batch it left open is closed right away.
func (c *batchCoordinator) removed() {
	c.mu.Lock()
	if c.active == 0 {
		c.mu.Unlock()
		panic("track: batch coordinator removed more trackers than were added")
	}
	c.active--
	closeOpen := false
	if c.active == 0 {
		c.cancelBegin()
		c.cancelEnd()
		c.cancelBegin, c.cancelEnd = nil, nil
		closeOpen = c.open
		c.open = false
	}
	c.mu.Unlock()

	if closeOpen {
		c.batcher.End()
	}
}

func (c *batchCoordinator) begin(time.Time) {
	c.mu.Lock()
	if c.open {
		c.mu.Unlock()
		return
	}
	c.open = true
	c.mu.Unlock()
	c.batcher.Begin()
}

// end only closes a batch this coordinator opened; a tracker attached
// between Read and Update never causes an unmatched End.
func (c *batchCoordinator) end(time.Time) {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return
	}
	c.open = false
	c.mu.Unlock()
	c.batcher.End()
}

func (c *batchCoordinator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
