package registry

import (
	"fmt"
	"reflect"
	"sync/atomic"
)

// nextTag is the process-wide tag counter. Tags start at 1; 0 means unassigned.
var nextTag atomic.Uint64

// Identity carries a registry tag on the subject itself. Embed it in a
// subject type to give the type a stable identity for its whole lifetime.
type Identity struct {
	tag atomic.Uint64
}

func (id *Identity) identity() *Identity { return id }

// Tag returns the assigned tag, or 0 if the subject was never registered.
func (id *Identity) Tag() uint64 {
	return id.tag.Load()
}

func (id *Identity) assign() uint64 {
	if v := id.tag.Load(); v != 0 {
		return v
	}
	id.tag.CompareAndSwap(0, nextTag.Add(1))
	return id.tag.Load()
}

type identifiable interface {
	identity() *Identity
}

// sideTag is the tag for a subject without an embedded Identity.
type sideTag struct {
	tag  uint64
	refs int
}

func mustComparable(v any) {
	if v == nil {
		panic("registry: nil subject")
	}
	if !reflect.TypeOf(v).Comparable() {
		panic(fmt.Sprintf("registry: subject of type %T is not comparable; embed registry.Identity", v))
	}
}
