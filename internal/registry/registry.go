package registry

import (
	"strconv"
	"sync"
)

// keySep separates the subject and reference tags. Tags are decimal so the
// separator can never appear inside one.
const keySep = "-"

// Registry maps composite (subject, reference) keys to exactly one value.
// Safe for concurrent use.
type Registry[T any] struct {
	mu      sync.Mutex
	entries map[string]T
	side    map[any]*sideTag
}

// New creates an empty Registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]T),
		side:    make(map[any]*sideTag),
	}
}

// Resolve returns the value registered for (subject, ref). A nil ref means
// the subject alone. Resolve never assigns tags.
func (r *Registry[T]) Resolve(subject, ref any) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	key, ok := r.lookupKey(subject, ref)
	if !ok {
		return zero, false
	}
	v, ok := r.entries[key]
	return v, ok
}

// Register stores v under (subject, ref), assigning tags to either side if
// they have none yet. Registering over an existing key replaces the value.
func (r *Registry[T]) Register(v T, subject, ref any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mustComparable(subject)
	key := strconv.FormatUint(r.assign(subject), 10)
	if ref != nil {
		mustComparable(ref)
		key += keySep + strconv.FormatUint(r.assign(ref), 10)
	}

	if _, exists := r.entries[key]; exists {
		// The key already holds a reference on each side tag.
		r.release(subject)
		if ref != nil {
			r.release(ref)
		}
	}
	r.entries[key] = v
}

// Remove drops the mapping for (subject, ref). Removing an unknown pair is a
// no-op.
func (r *Registry[T]) Remove(subject, ref any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.lookupKey(subject, ref)
	if !ok {
		return
	}
	if _, exists := r.entries[key]; !exists {
		return
	}
	delete(r.entries, key)
	r.release(subject)
	if ref != nil {
		r.release(ref)
	}
}

// Len returns the number of registered pairs.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Tag returns the tag currently assigned to subject, if any.
func (r *Registry[T]) Tag(subject any) (uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tag := r.lookup(subject)
	return tag, tag != 0
}

func (r *Registry[T]) lookupKey(subject, ref any) (string, bool) {
	st := r.lookup(subject)
	if st == 0 {
		return "", false
	}
	key := strconv.FormatUint(st, 10)
	if ref != nil {
		rt := r.lookup(ref)
		if rt == 0 {
			return "", false
		}
		key += keySep + strconv.FormatUint(rt, 10)
	}
	return key, true
}

// lookup returns the tag for v without assigning one.
func (r *Registry[T]) lookup(v any) uint64 {
	if v == nil {
		return 0
	}
	if id, ok := v.(identifiable); ok {
		return id.identity().Tag()
	}
	mustComparable(v)
	if s, ok := r.side[v]; ok {
		return s.tag
	}
	return 0
}

// assign returns v's tag, creating it if needed, and takes a reference on
// side-table tags.
func (r *Registry[T]) assign(v any) uint64 {
	if id, ok := v.(identifiable); ok {
		return id.identity().assign()
	}
	s, ok := r.side[v]
	if !ok {
		s = &sideTag{tag: nextTag.Add(1)}
		r.side[v] = s
	}
	s.refs++
	return s.tag
}

func (r *Registry[T]) release(v any) {
	if _, ok := v.(identifiable); ok {
		return
	}
	s, ok := r.side[v]
	if !ok {
		return
	}
	s.refs--
	if s.refs <= 0 {
		delete(r.side, v)
	}
}
