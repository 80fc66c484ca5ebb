// Package scene is an in-memory tree of boxes that can answer geometry
// queries. Each box is placed relative to its parent, so moving a container
// moves everything inside it.
//
// The demo command animates a scene, and tests use one as a host whose
// layout they control.
package scene

import (
	"sync"

	"github.com/grindlemire/go-track/internal/geom"
	"github.com/grindlemire/go-track/internal/registry"
)

// Box is one node of a scene.
type Box struct {
	registry.Identity

	name     string
	offset   geom.Point // relative to the parent's top-left corner
	size     geom.Size
	hidden   bool
	parent   *Box
	children []*Box
}

// Name returns the box name.
func (b *Box) Name() string {
	return b.name
}

func (b *Box) String() string {
	return b.name
}

// Scene holds a box tree and the viewport it is displayed in. All methods
// are safe from any goroutine.
type Scene struct {
	mu       sync.RWMutex
	root     *Box
	viewport geom.Size
	byName   map[string]*Box
}

// New creates a scene whose root box fills a width x height viewport.
func New(width, height float64) *Scene {
	root := &Box{name: "root", size: geom.Size{Width: width, Height: height}}
	return &Scene{
		root:     root,
		viewport: root.size,
		byName:   map[string]*Box{root.name: root},
	}
}

// Root returns the root box.
func (s *Scene) Root() any {
	return s.root
}

// RootBox returns the root box with its concrete type.
func (s *Scene) RootBox() *Box {
	return s.root
}

// Add creates a box named name inside parent (the root when nil). Names are
// unique; adding a name twice replaces the lookup entry only.
func (s *Scene) Add(parent *Box, name string, offset geom.Point, size geom.Size) *Box {
	s.mu.Lock()
	defer s.mu.Unlock()

	if parent == nil {
		parent = s.root
	}
	b := &Box{name: name, offset: offset, size: size, parent: parent}
	parent.children = append(parent.children, b)
	s.byName[name] = b
	return b
}

// Remove detaches b and its descendants. Removed boxes measure as not
// rendered.
func (s *Scene) Remove(b *Box) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := b.parent
	if p == nil {
		return false
	}
	for i, c := range p.children {
		if c == b {
			p.children = append(p.children[:i:i], p.children[i+1:]...)
			b.parent = nil
			s.forgetLocked(b)
			return true
		}
	}
	return false
}

func (s *Scene) forgetLocked(b *Box) {
	if s.byName[b.name] == b {
		delete(s.byName, b.name)
	}
	for _, c := range b.children {
		s.forgetLocked(c)
	}
}

// Find returns the box named name.
func (s *Scene) Find(name string) (*Box, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byName[name]
	return b, ok
}

// Boxes returns every box except the root, parents before children.
func (s *Scene) Boxes() []*Box {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Box
	var walk func(*Box)
	walk = func(b *Box) {
		for _, c := range b.children {
			out = append(out, c)
			walk(c)
		}
	}
	walk(s.root)
	return out
}

// Move shifts b by delta within its parent.
func (s *Scene) Move(b *Box, delta geom.Point) {
	s.mu.Lock()
	b.offset = b.offset.Add(delta)
	s.mu.Unlock()
}

// Place sets b's offset within its parent.
func (s *Scene) Place(b *Box, offset geom.Point) {
	s.mu.Lock()
	b.offset = offset
	s.mu.Unlock()
}

// Resize sets b's size.
func (s *Scene) Resize(b *Box, size geom.Size) {
	s.mu.Lock()
	b.size = size
	s.mu.Unlock()
}

// SetHidden hides or shows b. A hidden box and its descendants measure as
// not rendered.
func (s *Scene) SetHidden(b *Box, hidden bool) {
	s.mu.Lock()
	b.hidden = hidden
	s.mu.Unlock()
}

// SetViewport resizes the viewport. The root box keeps its own size.
func (s *Scene) SetViewport(size geom.Size) {
	s.mu.Lock()
	s.viewport = size
	s.mu.Unlock()
}

// Viewport returns the extent of the display surface.
func (s *Scene) Viewport() geom.Size {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// Measure returns the absolute rectangle of a box, or nothing if subject is
// not a box in this scene or is hidden.
func (s *Scene) Measure(subject any) []geom.Rect {
	b, ok := subject.(*Box)
	if !ok {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.absoluteLocked(b)
	if !ok {
		return nil
	}
	return []geom.Rect{r}
}

// absoluteLocked sums offsets up to the root.
func (s *Scene) absoluteLocked(b *Box) (geom.Rect, bool) {
	var origin geom.Point
	for n := b; n != nil; n = n.parent {
		if n.hidden {
			return geom.Rect{}, false
		}
		if n == s.root {
			return geom.NewRect(origin.X, origin.Y, b.size.Width, b.size.Height), true
		}
		origin = origin.Add(n.offset)
	}
	// Detached from the tree.
	return geom.Rect{}, false
}
