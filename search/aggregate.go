package search

import (
	"sort"

	"github.com/pileworks/novelty/core"
)

// BestResult is the running best match for one query over the lifetime of
// a run. Score is monotonically non-decreasing; ties keep the first-found
// match.
type BestResult struct {
	Query string
	Score int
	Match string

	// ChunkResults is the per-chunk match history, populated only in
	// detailed mode. Single-query searches record every completed chunk;
	// batch searches record only chunks that produced a match.
	ChunkResults []core.ChunkResult
}

// NewBestResult creates a zero-score result for a query.
func NewBestResult(query string) *BestResult {
	return &BestResult{Query: query}
}

// Merge folds an incoming match into the best result. The match replaces
// the current one only when its score is strictly greater, so a tie keeps
// the earlier match and the score never decreases. It reports whether the
// result improved.
func (b *BestResult) Merge(incoming core.MatchResult) bool {
	if incoming.Score > b.Score {
		b.Score = incoming.Score
		b.Match = incoming.Match
		return true
	}
	return false
}

// Absorb folds a later shard's result into the running result. Shards are
// processed in increasing chunk-index order, so appending the shard's
// history keeps the overall history sorted.
func (b *BestResult) Absorb(shard *BestResult) {
	b.Merge(core.MatchResult{Match: shard.Match, Score: shard.Score})
	b.ChunkResults = append(b.ChunkResults, shard.ChunkResults...)
}

// sortChunkResults orders a history by chunk index. Task completion order
// is non-deterministic under parallel execution; output order is not.
func sortChunkResults(results []core.ChunkResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].ChunkIndex < results[j].ChunkIndex
	})
}
