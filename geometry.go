// geometry.go re-exports geometry types from internal/geom.
// Any changes to internal/geom types must be mirrored here.
package track

import "github.com/grindlemire/go-track/internal/geom"

// Rect is a raw measurement: top-left corner plus dimensions.
type Rect = geom.Rect

// Position is an edge-form rectangle (left, top, right, bottom).
type Position = geom.Position

// Size is a width/height pair.
type Size = geom.Size

// Point represents an (X, Y) coordinate.
type Point = geom.Point

// NewRect creates a Rect with the given position and dimensions.
func NewRect(x, y, width, height float64) Rect {
	return geom.NewRect(x, y, width, height)
}

// Round snaps v to the tracking resolution of one tenth of a unit.
func Round(v float64) float64 {
	return geom.Round(v)
}
