package match

import (
	"math"
	"sort"
	"strings"

	"github.com/pileworks/novelty/core"
)

// Alignment is the primary scorer. It locates the contiguous span of the
// chunk, of length comparable to the query, that maximizes the indel
// similarity against the query, independent of where in the chunk it occurs.
//
// A result is accepted only when its raw similarity is strictly above the
// threshold. The returned score is rounded after the accept check, so a
// returned score may equal the threshold.
type Alignment struct {
	threshold int
}

var _ Scorer = (*Alignment)(nil)

// NewAlignment creates an alignment scorer. A non-positive threshold falls
// back to DefaultThreshold.
func NewAlignment(threshold int) *Alignment {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Alignment{threshold: threshold}
}

// Score finds the best alignment of query against any substring of chunk.
// A verbatim occurrence scores 100 and returns the query text itself.
func (a *Alignment) Score(query, chunk string) core.MatchResult {
	if len(query) == 0 || len(chunk) == 0 {
		return core.NoMatch
	}

	// Verbatim fast path: an exact occurrence is a perfect alignment.
	if strings.Contains(chunk, query) {
		if 100 > a.threshold {
			return core.MatchResult{Match: query, Score: 100}
		}
		return core.NoMatch
	}

	var (
		bestScore float64
		bestStart int
		bestEnd   int
	)
	if len(query) >= len(chunk) {
		bestScore = ratio(query, chunk)
		bestEnd = len(chunk)
	} else {
		// Each matching block anchors one candidate window: shift the
		// query so the block lines up, then score the window it covers.
		for _, start := range candidateStarts(query, chunk) {
			end := start + len(query)
			if end > len(chunk) {
				end = len(chunk)
			}
			score := ratio(query, chunk[start:end])
			if score > bestScore {
				bestScore = score
				bestStart = start
				bestEnd = end
			}
		}
	}

	if bestScore <= float64(a.threshold) {
		return core.NoMatch
	}
	score := int(math.Round(bestScore))
	if score == 0 {
		return core.NoMatch
	}
	return core.MatchResult{Match: chunk[bestStart:bestEnd], Score: score}
}

// candidateStarts returns the deduplicated, ordered window start offsets
// implied by the matching blocks of (query, chunk).
func candidateStarts(query, chunk string) []int {
	seen := make(map[int]struct{})
	var starts []int
	for _, m := range matchingBlocks(query, chunk) {
		start := m.b - m.a
		if start < 0 {
			start = 0
		}
		if limit := len(chunk) - len(query); start > limit {
			start = limit
		}
		if _, ok := seen[start]; ok {
			continue
		}
		seen[start] = struct{}{}
		starts = append(starts, start)
	}
	sort.Ints(starts)
	return starts
}

// block is a maximal run of identical bytes: a[a:a+size] == b[b:b+size].
type block struct {
	a    int
	b    int
	size int
}

// matchingBlocks computes the Ratcliff-Obershelp matching blocks of a and b:
// recursively take the longest common run, then match the pieces to its
// left and right. Blocks are returned ordered by position in a.
func matchingBlocks(a, b string) []block {
	b2j := make(map[byte][]int)
	for j := 0; j < len(b); j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(a), 0, len(b)}}
	var blocks []block
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		m := longestMatch(a, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if m.size == 0 {
			continue
		}
		blocks = append(blocks, m)
		if s.alo < m.a && s.blo < m.b {
			queue = append(queue, span{s.alo, m.a, s.blo, m.b})
		}
		if m.a+m.size < s.ahi && m.b+m.size < s.bhi {
			queue = append(queue, span{m.a + m.size, s.ahi, m.b + m.size, s.bhi})
		}
	}

	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].a != blocks[j].a {
			return blocks[i].a < blocks[j].a
		}
		return blocks[i].b < blocks[j].b
	})
	return blocks
}

// longestMatch finds the longest run of bytes common to a[alo:ahi] and
// b[blo:bhi], preferring the earliest occurrence on ties.
func longestMatch(a string, b2j map[byte][]int, alo, ahi, blo, bhi int) block {
	best := block{a: alo, b: blo}
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newJ2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > best.size {
				best = block{a: i - k + 1, b: j - k + 1, size: k}
			}
		}
		j2len = newJ2len
	}
	return best
}
