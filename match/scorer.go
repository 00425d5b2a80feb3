package match

import (
	"github.com/xrash/smetrics"

	"github.com/pileworks/novelty/core"
)

// Scorer defaults, tuned for detecting near-verbatim corpus contamination.
const (
	// DefaultThreshold is the minimum similarity score for a match.
	DefaultThreshold = 60

	// DefaultStrideFraction is the sliding-window stride as a fraction of
	// the query length.
	DefaultStrideFraction = 0.05
)

// Scorer computes the best approximate match of a query inside a chunk.
//
// Implementations return core.NoMatch when no candidate clears their
// threshold, and otherwise a score in [1, 100] with the matched substring.
type Scorer interface {
	Score(query, chunk string) core.MatchResult
}

// ratio returns the normalized indel similarity of a and b in [0, 100].
// Wagner-Fischer with substitution cost 2 computes the pure
// insertion/deletion distance, which normalizes over the summed lengths.
func ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	dist := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return 100 * (1 - float64(dist)/float64(len(a)+len(b)))
}
