package mesh

import (
	"math"
	"sort"
)

// Geometric comparisons use an absolute tolerance rather than exact
// equality, matching isclose-style boundary predicates.
const GeomTol = 1.e-8

// Marker takes a batch of physical coordinates and returns a mask of the
// points satisfying the predicate.
type Marker func(x, y []float64) []bool

// IsClose reports |a-b| within the geometric tolerance.
func IsClose(a, b float64) bool {
	return math.Abs(a-b) <= GeomTol
}

// And composes markers so that a point must satisfy all of them.
func And(markers ...Marker) Marker {
	return func(x, y []float64) []bool {
		mask := make([]bool, len(x))
		for i := range mask {
			mask[i] = true
		}
		for _, m := range markers {
			sub := m(x, y)
			for i := range mask {
				mask[i] = mask[i] && sub[i]
			}
		}
		return mask
	}
}

// Or composes markers so that a point may satisfy any of them.
func Or(markers ...Marker) Marker {
	return func(x, y []float64) []bool {
		mask := make([]bool, len(x))
		for _, m := range markers {
			sub := m(x, y)
			for i := range mask {
				mask[i] = mask[i] || sub[i]
			}
		}
		return mask
	}
}

func hypot(dx, dy float64) float64 { return math.Hypot(dx, dy) }

func sortIndex(I []int) { sort.Ints(I) }
