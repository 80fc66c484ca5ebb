// Package geom holds the geometry value types used by the tracker and the
// sub-unit rounding applied to every stored or compared coordinate.
//
// Hosts report raw float rectangles (Rect). The tracker rounds them to one
// tenth of a unit before storing, so transform jitter below that resolution
// never shows up as a change.
package geom
