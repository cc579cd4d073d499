package postprocess

import "github.com/chewxy/math32"

// Thresholds is a per-class confidence table indexed by class id.
type Thresholds []float32

// UniformThresholds returns a table of n classes that all share the same threshold.
func UniformThresholds(n int, threshold float32) Thresholds {
	if n <= 0 {
		return Thresholds{}
	}
	t := make(Thresholds, n)
	for i := range t {
		t[i] = threshold
	}
	return t
}

// Accepts reports whether a detection of class with the given score passes the table.
//
// Arguments:
//   - class: The class id. Ids outside [0, len(t)) are never accepted.
//   - score: The detection confidence. NaN is never accepted.
//
// Returns:
//   - true if score >= t[class].
func (t Thresholds) Accepts(class int, score float32) bool {
	if class < 0 || class >= len(t) {
		return false
	}
	if math32.IsNaN(score) {
		return false
	}
	return score >= t[class]
}
