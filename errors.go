package track

import (
	"github.com/juju/errors"

	"github.com/grindlemire/go-track/internal/frame"
)

const (
	// ErrNilHost is returned by NewEngine without a host.
	ErrNilHost = errors.ConstError("nil host")

	// ErrInvalidFrameRate is returned for frame rates outside 1-240 fps.
	ErrInvalidFrameRate = frame.ErrInvalidFrameRate

	// ErrCallbackPanic is the cause of faults raised by panicking frame
	// callbacks, including virtual source update hooks.
	ErrCallbackPanic = frame.ErrCallbackPanic

	// ErrListenerPanic is the cause of faults raised by panicking listeners.
	ErrListenerPanic = errors.ConstError("tracker listener panicked")

	// ErrReferenceDepth is reported when a reference chain is deeper than
	// maxReferenceDepth.
	ErrReferenceDepth = errors.ConstError("reference chain too deep")
)
