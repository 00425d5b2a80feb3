package search

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/pileworks/novelty/broadcast"
	"github.com/pileworks/novelty/core"
	"github.com/pileworks/novelty/match"
)

// DefaultWorkers is the default scoring worker pool size.
const DefaultWorkers = 8

// chunkRegionName is the single broadcast region name used per run.
// Chunks are processed strictly sequentially, so one name never collides.
const chunkRegionName = "shared_chunk"

// Coordinator dispatches (query, chunk) scoring work across a worker pool.
// A fresh pool is created per search call (single mode) or per chunk batch
// (batch mode) and released afterwards, bounding peak memory to one
// resident chunk plus the in-flight task set.
type Coordinator struct {
	scorer   match.Scorer
	exchange *broadcast.Exchange
	workers  int
	detailed bool
	logger   *slog.Logger
	monitor  Monitor
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithWorkers sets the worker pool size.
// Default is DefaultWorkers, with a minimum of 1.
func WithWorkers(size int) Option {
	return func(c *Coordinator) error {
		if size < 1 {
			size = 1
		}
		c.workers = size
		return nil
	}
}

// WithDetailedResults toggles recording of per-chunk match histories.
func WithDetailedResults(detailed bool) Option {
	return func(c *Coordinator) error {
		c.detailed = detailed
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithMonitor sets a search monitor. Default is a no-op monitor.
func WithMonitor(monitor Monitor) Option {
	return func(c *Coordinator) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		c.monitor = monitor
		return nil
	}
}

// NewCoordinator creates a coordinator scoring with the given scorer.
func NewCoordinator(scorer match.Scorer, opts ...Option) (*Coordinator, error) {
	if scorer == nil {
		return nil, ErrScorerRequired
	}

	c := &Coordinator{
		scorer:   scorer,
		exchange: broadcast.NewExchange(),
		workers:  DefaultWorkers,
		logger:   slog.Default(),
		monitor:  &noopMonitor{},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// SearchSingle scores one query against every chunk, dispatching one task
// per chunk with the chunk text passed directly. Once any chunk scores 100
// no further chunks are scheduled; tasks already dispatched are drained to
// completion rather than cancelled.
func (c *Coordinator) SearchSingle(ctx context.Context, query string, chunks []core.Chunk) (*BestResult, error) {
	pool, err := ants.NewPool(c.workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	best := NewBestResult(query)
	results := make(chan core.ChunkResult, len(chunks))
	var (
		wg   sync.WaitGroup
		stop atomic.Bool
	)

	// Only this goroutine touches best, so no locking is needed.
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for r := range results {
			c.monitor.ChunkScored(query, r)
			if c.detailed {
				best.ChunkResults = append(best.ChunkResults, r)
			}
			if best.Merge(core.MatchResult{Match: r.Match, Score: r.Score}) {
				c.monitor.BestImproved(query, best.Score)
				if best.Score == 100 {
					stop.Store(true)
				}
			}
		}
	}()

	for _, chunk := range chunks {
		if stop.Load() || ctx.Err() != nil {
			break
		}
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			scored := c.scorer.Score(query, chunk.Text)
			results <- core.ChunkResult{ChunkIndex: chunk.Index, Match: scored.Match, Score: scored.Score}
		})
		if submitErr != nil {
			wg.Done()
			c.logger.Error("failed to submit scoring task, treating as no match",
				"chunk", chunk.Index, "err", submitErr)
			results <- core.ChunkResult{ChunkIndex: chunk.Index}
		}
	}
	wg.Wait()
	close(results)
	<-collected

	if c.detailed {
		sortChunkResults(best.ChunkResults)
	}
	return best, ctx.Err()
}

// SearchBatch scores every query against every chunk. Chunks are processed
// strictly sequentially in increasing index order: each chunk is published
// once to the broadcast region, all queries are scored against it in
// parallel, and the region is released before the next chunk is published.
// The full chunk set is always scanned; there is no per-query early exit.
func (c *Coordinator) SearchBatch(ctx context.Context, queries []string, chunks []core.Chunk) (map[string]*BestResult, error) {
	results := make(map[string]*BestResult, len(queries))
	for _, query := range queries {
		results[query] = NewBestResult(query)
	}

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		region, err := c.exchange.Publish(chunkRegionName, chunk)
		if err != nil {
			return results, err
		}
		err = c.scoreChunkBatch(queries, chunk.Index, results)
		if releaseErr := region.Release(); releaseErr != nil {
			c.logger.Error("failed to release chunk region", "chunk", chunk.Index, "err", releaseErr)
		}
		if err != nil {
			return results, err
		}
	}

	if c.detailed {
		for _, best := range results {
			sortChunkResults(best.ChunkResults)
		}
	}
	return results, nil
}

type queryScore struct {
	query  string
	result core.MatchResult
}

// scoreChunkBatch runs one task per query against the currently published
// chunk and folds all completed results into the running bests. A worker
// that cannot attach the region degrades to a no-match result for its pair;
// it does not abort the run.
func (c *Coordinator) scoreChunkBatch(queries []string, chunkIndex int, results map[string]*BestResult) error {
	pool, err := ants.NewPool(c.workers)
	if err != nil {
		return err
	}
	defer pool.Release()

	scored := make(chan queryScore, len(queries))
	var wg sync.WaitGroup
	for _, query := range queries {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			chunk, err := c.exchange.Attach(chunkRegionName)
			if err != nil {
				c.logger.Error("worker failed to attach chunk region, treating as no match",
					"query", core.IDFromContent(query), "chunk", chunkIndex, "err", err)
				scored <- queryScore{query: query}
				return
			}
			scored <- queryScore{query: query, result: c.scorer.Score(query, chunk.Text)}
		})
		if submitErr != nil {
			wg.Done()
			c.logger.Error("failed to submit scoring task, treating as no match",
				"query", core.IDFromContent(query), "chunk", chunkIndex, "err", submitErr)
			scored <- queryScore{query: query}
		}
	}
	wg.Wait()
	close(scored)

	for s := range scored {
		best := results[s.query]
		record := core.ChunkResult{ChunkIndex: chunkIndex, Match: s.result.Match, Score: s.result.Score}
		c.monitor.ChunkScored(s.query, record)
		if c.detailed && s.result.Match != "" {
			best.ChunkResults = append(best.ChunkResults, record)
		}
		if best.Merge(s.result) {
			c.monitor.BestImproved(s.query, best.Score)
		}
	}
	return nil
}
