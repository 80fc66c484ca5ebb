package track

import "github.com/grindlemire/go-track/internal/registry"

// Subject is the handle of something whose geometry can be measured. It must
// be comparable (typically a pointer); types that embed Identity carry their
// own registry tag.
type Subject = any

// Identity can be embedded in a subject type to give it a stable tracking
// identity for its whole lifetime.
type Identity = registry.Identity

// Host answers the geometry queries a tracker needs. Measure and Viewport
// are called from the frame loop goroutine.
type Host interface {
	// Measure returns the subject's boundary rectangles in viewport
	// coordinates. An empty result means the subject is not rendered.
	Measure(subject Subject) []Rect

	// Viewport returns the extent of the display surface.
	Viewport() Size
}

// RootProvider is implemented by hosts that can stand in a root container
// for the Document subject.
type RootProvider interface {
	Root() Subject
}

type documentSubject struct{}

// Document stands for the whole document. Tracking it, or tracking relative
// to it, uses the host's root container.
var Document Subject = documentSubject{}

func (e *Engine) resolveSubject(s Subject) Subject {
	if s == nil {
		panic("track: nil subject")
	}
	if s != Document {
		return s
	}
	rp, ok := e.host.(RootProvider)
	if !ok {
		panic("track: Document tracked on a host without a root container")
	}
	return rp.Root()
}
