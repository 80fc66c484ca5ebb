package geom

import "math"

// Resolution is the number of rounding steps per unit.
const Resolution = 10

// Round snaps v to the nearest 1/Resolution. Halves round toward positive
// infinity. Round(Round(x)) == Round(x) for every finite x.
func Round(v float64) float64 {
	return math.Floor(v*Resolution+0.5) / Resolution
}
