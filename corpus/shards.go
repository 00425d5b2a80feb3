package corpus

import (
	"fmt"
	"path/filepath"
)

// Default shard set layout, matching the split of The Pile's GitHub subset.
const (
	DefaultShardDir   = "Github_Split"
	DefaultNameFormat = "The_Pile_Github_Split_%d.jsonl"
	DefaultShardCount = 10
)

// ShardSet describes the corpus shard files for one run.
// Shards are numbered 0..Count-1 and processed in that fixed order.
type ShardSet struct {
	// Dir is the directory holding the shard files.
	Dir string

	// NameFormat is the printf format producing a shard file name from its number.
	NameFormat string

	// Count is the number of shard files in the set.
	Count int
}

// DefaultShardSet returns the shard set layout used by the stock corpus.
func DefaultShardSet() ShardSet {
	return ShardSet{
		Dir:        DefaultShardDir,
		NameFormat: DefaultNameFormat,
		Count:      DefaultShardCount,
	}
}

// Files returns the shard file paths in processing order.
func (s ShardSet) Files() []string {
	files := make([]string, s.Count)
	for part := range s.Count {
		files[part] = filepath.Join(s.Dir, fmt.Sprintf(s.NameFormat, part))
	}
	return files
}

// Limit returns a shard set restricted to the first n shards.
// n of zero keeps the full set. Requesting more shards than the set holds
// is a configuration error and fails before any work starts.
func (s ShardSet) Limit(n int) (ShardSet, error) {
	if n == 0 {
		return s, nil
	}
	if n > s.Count {
		return ShardSet{}, fmt.Errorf("%w: %d > %d", ErrShardCountExceeded, n, s.Count)
	}
	limited := s
	limited.Count = n
	return limited, nil
}
