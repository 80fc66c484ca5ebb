package track

import (
	"github.com/juju/clock"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Option is a functional option for configuring an Engine.
type Option func(*Engine) error

// WithFrameRate sets the tick rate of the frame loop.
// Default is 60 fps. Valid range is 1-240 fps.
func WithFrameRate(fps int) Option {
	return func(e *Engine) error {
		if fps < 1 || fps > 240 {
			return errors.Annotatef(ErrInvalidFrameRate, "%d fps (want 1-240)", fps)
		}
		e.fps = fps
		return nil
	}
}

// WithClock sets the clock that paces the frame loop. Default is the wall
// clock.
func WithClock(clk clock.Clock) Option {
	return func(e *Engine) error {
		if clk == nil {
			return errors.New("nil clock")
		}
		e.clock = clk
		return nil
	}
}

// WithManualTicks disables the frame loop goroutine. The owner drives frames
// by calling Engine.Tick, e.g. from an existing render loop.
func WithManualTicks() Option {
	return func(e *Engine) error {
		e.manual = true
		return nil
	}
}

// WithLogger sets the logger. Default logs warnings and above to stderr.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) error {
		if l == nil {
			return errors.New("nil logger")
		}
		e.log = l
		return nil
	}
}

// WithFaultHandler sets a handler that receives every isolated fault
// (panicking listeners and callbacks) in addition to the log.
func WithFaultHandler(fn func(error)) Option {
	return func(e *Engine) error {
		e.onFault = fn
		return nil
	}
}

// WithBatcher sets the batcher the engine brackets each frame with.
func WithBatcher(b *Batcher) Option {
	return func(e *Engine) error {
		if b == nil {
			return errors.New("nil batcher")
		}
		e.batcher = b
		return nil
	}
}

// WithCellFields stores every tracker's geometry fields as cells on the
// engine's batcher, so consumers can Bind to individual edges.
func WithCellFields() Option {
	return func(e *Engine) error {
		e.cellFields = true
		return nil
	}
}

// WithValueFactory sets a custom factory for tracker geometry fields. It
// takes precedence over WithCellFields.
func WithValueFactory(f ValueFactory) Option {
	return func(e *Engine) error {
		if f == nil {
			return errors.New("nil value factory")
		}
		e.values = f
		return nil
	}
}
