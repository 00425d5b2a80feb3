package search

import "github.com/pileworks/novelty/core"

// Monitor provides hooks to observe the search process.
// Implement this interface to track shard progress and intermediate
// results during a corpus scan.
type Monitor interface {
	ShardStarted(path string, shard, total int)
	ChunksBuilt(path string, chunkCount int)
	ChunkScored(query string, result core.ChunkResult)
	BestImproved(query string, score int)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) ShardStarted(_ string, _, _ int)         {}
func (n *noopMonitor) ChunksBuilt(_ string, _ int)             {}
func (n *noopMonitor) ChunkScored(_ string, _ core.ChunkResult) {}
func (n *noopMonitor) BestImproved(_ string, _ int)            {}
