package match

import (
	"math"

	"github.com/pileworks/novelty/core"
)

// Window is the reference sliding-window scorer. It scans the chunk with a
// window of the query's length at a fixed stride and keeps the best
// whole-window similarity.
//
// Unlike Alignment, a result is accepted when its rounded score is at or
// above the threshold (non-strict). Callers depend on the boundary
// behavior of each scorer; do not unify the two accept rules.
type Window struct {
	threshold      int
	strideFraction float64
}

var _ Scorer = (*Window)(nil)

// NewWindow creates a sliding-window scorer. A non-positive threshold or
// stride fraction falls back to the package defaults.
func NewWindow(threshold int, strideFraction float64) *Window {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if strideFraction <= 0 {
		strideFraction = DefaultStrideFraction
	}
	return &Window{threshold: threshold, strideFraction: strideFraction}
}

// Score scans chunk at stride max(1, floor(len(query)*strideFraction)).
// Windows are compared whole against the query; the earliest best window
// wins ties. Chunks no longer than the query yield no match.
func (w *Window) Score(query, chunk string) core.MatchResult {
	if len(query) == 0 {
		return core.NoMatch
	}

	stride := int(float64(len(query)) * w.strideFraction)
	if stride < 1 {
		stride = 1
	}

	bestScore := 0
	bestMatch := ""
	for i := 0; i < len(chunk)-len(query); i += stride {
		window := chunk[i : i+len(query)]
		if score := ratio(window, query); score > float64(bestScore) {
			bestScore = int(math.Round(score))
			bestMatch = window
		}
	}

	if bestScore < w.threshold || bestScore == 0 {
		return core.NoMatch
	}
	return core.MatchResult{Match: bestMatch, Score: bestScore}
}
