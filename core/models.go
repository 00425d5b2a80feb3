package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities, derived from content.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content produces identical IDs, which is how duplicate queries
// are detected within a run.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Chunk is a bounded-size slice of concatenated corpus documents.
// Index is globally unique and strictly increasing across all shards
// processed in one run. Text is the exact concatenation of one or more
// whole documents in their original order.
type Chunk struct {
	Index int
	Text  string
}

// MatchResult is the outcome of scoring one query against one chunk.
//
// Invariant: Match is empty if and only if Score is zero. Scores below the
// configured threshold are normalized to NoMatch by the scorers.
type MatchResult struct {
	Match string // Best matching substring of the chunk, empty when none
	Score int    // Similarity score in [0, 100]
}

// NoMatch is the zero result returned when no candidate clears the threshold.
var NoMatch = MatchResult{}

// None reports whether the result represents no match.
func (m MatchResult) None() bool {
	return m.Score == 0
}

// ChunkResult records the match outcome for a single chunk in a query's
// per-chunk history. Histories are append-only.
type ChunkResult struct {
	ChunkIndex int
	Match      string
	Score      int
}
