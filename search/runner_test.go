package search

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pileworks/novelty/core"
	"github.com/pileworks/novelty/corpus"
	"github.com/pileworks/novelty/match"
)

// testMonitor records shard progress callbacks.
type testMonitor struct {
	shardsStarted []string
	chunksBuilt   int
}

func (m *testMonitor) ShardStarted(path string, _, _ int)       { m.shardsStarted = append(m.shardsStarted, path) }
func (m *testMonitor) ChunksBuilt(_ string, count int)          { m.chunksBuilt += count }
func (m *testMonitor) ChunkScored(_ string, _ core.ChunkResult) {}
func (m *testMonitor) BestImproved(_ string, _ int)             {}

// writeShard writes one JSONL corpus shard with the given documents.
func writeShard(t *testing.T, dir string, part int, docs []string) {
	t.Helper()
	var lines []byte
	for _, doc := range docs {
		line, err := json.Marshal(map[string]string{"text": doc})
		require.NoError(t, err)
		lines = append(lines, line...)
		lines = append(lines, '\n')
	}
	path := filepath.Join(dir, fmt.Sprintf("shard_%d.jsonl", part))
	require.NoError(t, os.WriteFile(path, lines, 0644))
}

func testShardSet(dir string, count int) corpus.ShardSet {
	return corpus.ShardSet{Dir: dir, NameFormat: "shard_%d.jsonl", Count: count}
}

func TestRunnerSingleQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("verbatim match in chunk 3", func(t *testing.T) {
		dir := t.TempDir()
		writeShard(t, dir, 0, []string{
			"~~~~~~~~~~ document zero ~~~~~~~~~~",
			"~~~~~~~~~~ document one ~~~~~~~~~~~",
			"~~~~~~~~~~ document two ~~~~~~~~~~~",
			"import os\n" + addFunc + "print(1)\n",
		})

		c, err := NewCoordinator(match.NewAlignment(50), WithDetailedResults(true))
		require.NoError(t, err)
		// Each document is larger than the bound, so each gets its own chunk.
		runner, err := NewRunner(c, testShardSet(dir, 1), WithMaxChunkChars(10))
		require.NoError(t, err)

		results, err := runner.Run(ctx, []string{addFunc})
		require.NoError(t, err)
		require.Len(t, results, 1)

		best := results[0]
		assert.Equal(t, 100, best.Score)
		assert.Equal(t, addFunc, best.Match)

		found := false
		for _, r := range best.ChunkResults {
			if r.ChunkIndex == 3 {
				found = true
				assert.Equal(t, 100, r.Score)
				assert.Equal(t, addFunc, r.Match)
			}
		}
		assert.True(t, found, "chunk 3 must appear in the history")
	})

	t.Run("perfect match stops later shards", func(t *testing.T) {
		dir := t.TempDir()
		writeShard(t, dir, 0, []string{"~~" + addFunc + "~~"})
		writeShard(t, dir, 1, []string{"~~~~ never reached ~~~~"})

		monitor := &testMonitor{}
		c, err := NewCoordinator(match.NewAlignment(50))
		require.NoError(t, err)
		runner, err := NewRunner(c, testShardSet(dir, 2), WithRunnerMonitor(monitor))
		require.NoError(t, err)

		results, err := runner.Run(ctx, []string{addFunc})
		require.NoError(t, err)
		assert.Equal(t, 100, results[0].Score)
		assert.Len(t, monitor.shardsStarted, 1, "second shard must not be scheduled")
	})

	t.Run("unreadable shard is skipped", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "shard_0.jsonl"), []byte("not json\n"), 0644))
		writeShard(t, dir, 1, []string{"~~" + addFunc + "~~"})

		c, err := NewCoordinator(match.NewAlignment(50))
		require.NoError(t, err)
		runner, err := NewRunner(c, testShardSet(dir, 2))
		require.NoError(t, err)

		results, err := runner.Run(ctx, []string{addFunc})
		require.NoError(t, err)
		assert.Equal(t, 100, results[0].Score, "the run continues with remaining shards")
	})
}

func TestRunnerBatch(t *testing.T) {
	ctx := context.Background()

	queryA := "AAAA BBBB CCCC DDDD"
	queryW := "wwww xxxx yyyy zzzz"

	t.Run("chunk indices continue across shards", func(t *testing.T) {
		dir := t.TempDir()
		writeShard(t, dir, 0, []string{
			"0101010101",
			"11" + queryA + "11",
		})
		writeShard(t, dir, 1, []string{
			"2323232323",
			"33" + queryW + "33",
		})

		c, err := NewCoordinator(match.NewAlignment(60), WithDetailedResults(true))
		require.NoError(t, err)
		runner, err := NewRunner(c, testShardSet(dir, 2), WithMaxChunkChars(5))
		require.NoError(t, err)

		results, err := runner.Run(ctx, []string{queryA, queryW})
		require.NoError(t, err)
		require.Len(t, results, 2)

		bestA, bestW := results[0], results[1]
		assert.Equal(t, queryA, bestA.Query)
		assert.Equal(t, 100, bestA.Score)
		require.Len(t, bestA.ChunkResults, 1)
		assert.Equal(t, 1, bestA.ChunkResults[0].ChunkIndex)

		assert.Equal(t, queryW, bestW.Query)
		assert.Equal(t, 100, bestW.Score)
		require.Len(t, bestW.ChunkResults, 1)
		assert.Equal(t, 3, bestW.ChunkResults[0].ChunkIndex,
			"second shard numbering continues from the first")
	})

	t.Run("batch mode scans all shards", func(t *testing.T) {
		dir := t.TempDir()
		writeShard(t, dir, 0, []string{"~~" + queryA + "~~" + queryW + "~~"})
		writeShard(t, dir, 1, []string{"~~~~ plain filler ~~~~"})

		monitor := &testMonitor{}
		c, err := NewCoordinator(match.NewAlignment(60))
		require.NoError(t, err)
		runner, err := NewRunner(c, testShardSet(dir, 2), WithRunnerMonitor(monitor))
		require.NoError(t, err)

		_, err = runner.Run(ctx, []string{queryA, queryW})
		require.NoError(t, err)
		assert.Len(t, monitor.shardsStarted, 2, "batch mode has no shard-level early exit")
	})
}

func TestRunnerValidation(t *testing.T) {
	c, err := NewCoordinator(match.NewAlignment(60))
	require.NoError(t, err)

	t.Run("nil coordinator", func(t *testing.T) {
		_, err := NewRunner(nil, corpus.DefaultShardSet())
		assert.Equal(t, ErrCoordinatorRequired, err)
	})

	t.Run("no queries", func(t *testing.T) {
		runner, err := NewRunner(c, corpus.DefaultShardSet())
		require.NoError(t, err)
		_, err = runner.Run(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNoQueries)
	})
}
