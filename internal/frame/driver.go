package frame

import (
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
)

// ErrInvalidFrameRate is returned for frame rates outside 1-240 fps.
const ErrInvalidFrameRate = errors.ConstError("invalid frame rate")

// DefaultFrameRate is the tick rate used when none is configured.
const DefaultFrameRate = 60

// Driver delivers one tick per displayed frame until stop is closed.
// Run blocks; the Scheduler runs it on its own goroutine.
type Driver interface {
	Run(tick func(now time.Time), stop <-chan struct{})
}

// ClockDriver paces ticks on a clock at a fixed frame interval. Time spent
// inside a tick is subtracted from the wait for the next one.
type ClockDriver struct {
	clock    clock.Clock
	interval time.Duration
}

// NewClockDriver creates a driver ticking fps times per second on clk.
// Valid range is 1-240 fps.
func NewClockDriver(clk clock.Clock, fps int) (*ClockDriver, error) {
	if fps < 1 || fps > 240 {
		return nil, errors.Annotatef(ErrInvalidFrameRate, "%d fps (want 1-240)", fps)
	}
	if clk == nil {
		clk = clock.WallClock
	}
	return &ClockDriver{
		clock:    clk,
		interval: time.Second / time.Duration(fps),
	}, nil
}

// Interval returns the frame duration.
func (d *ClockDriver) Interval() time.Duration {
	return d.interval
}

// Run ticks every interval until stop is closed.
func (d *ClockDriver) Run(tick func(now time.Time), stop <-chan struct{}) {
	wait := d.interval
	for {
		select {
		case <-stop:
			return
		case now := <-d.clock.After(wait):
			tick(now)

			// Sleep for the remaining frame time to keep a steady rate.
			wait = d.interval - d.clock.Now().Sub(now)
			if wait < 0 {
				wait = 0
			}
		}
	}
}
