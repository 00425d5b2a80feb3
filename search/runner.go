package search

import (
	"context"
	"log/slog"

	"github.com/pileworks/novelty/corpus"
)

// Runner drives one full corpus scan: shard files are processed in their
// fixed declared order, each shard's documents are chunked with globally
// continuous indices, and per-shard results are folded into the running
// best result for every query.
type Runner struct {
	coordinator   *Coordinator
	shards        corpus.ShardSet
	maxChunkChars int
	maxChunks     int
	logger        *slog.Logger
	monitor       Monitor
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner) error

// WithMaxChunkChars sets the chunk size bound in characters.
// Default is corpus.DefaultMaxChunkChars.
func WithMaxChunkChars(chars int) RunnerOption {
	return func(r *Runner) error {
		if chars < 1 {
			chars = corpus.DefaultMaxChunkChars
		}
		r.maxChunkChars = chars
		return nil
	}
}

// WithMaxChunks caps the number of chunks built per shard. Zero means no cap.
func WithMaxChunks(chunks int) RunnerOption {
	return func(r *Runner) error {
		if chunks < 0 {
			chunks = 0
		}
		r.maxChunks = chunks
		return nil
	}
}

// WithRunnerLogger sets a custom logger.
// Default is slog.Default().
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithRunnerMonitor sets a monitor for shard progress. Default is no-op.
func WithRunnerMonitor(monitor Monitor) RunnerOption {
	return func(r *Runner) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		r.monitor = monitor
		return nil
	}
}

// NewRunner creates a runner scanning the given shard set.
func NewRunner(coordinator *Coordinator, shards corpus.ShardSet, opts ...RunnerOption) (*Runner, error) {
	if coordinator == nil {
		return nil, ErrCoordinatorRequired
	}

	r := &Runner{
		coordinator:   coordinator,
		shards:        shards,
		maxChunkChars: corpus.DefaultMaxChunkChars,
		logger:        slog.Default(),
		monitor:       &noopMonitor{},
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Run scans the whole shard set for the given queries and returns one
// BestResult per query, in query order. One query selects single-query
// mode with its chunk-level and shard-level early exit; several queries
// select batch mode, which always scans the whole corpus.
//
// A shard that cannot be read or parsed is logged and skipped; the scan
// continues with the remaining shards.
func (r *Runner) Run(ctx context.Context, queries []string) ([]*BestResult, error) {
	if len(queries) == 0 {
		return nil, ErrNoQueries
	}

	best := make([]*BestResult, len(queries))
	byQuery := make(map[string]*BestResult, len(queries))
	for i, query := range queries {
		best[i] = NewBestResult(query)
		byQuery[query] = best[i]
	}

	single := len(queries) == 1
	files := r.shards.Files()
	startIndex := 0
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return best, err
		}
		r.monitor.ShardStarted(path, i, len(files))
		r.logger.Info("loading corpus shard", "shard", path)

		docs, err := corpus.LoadDocuments(path)
		if err != nil {
			r.logger.Warn("skipping unreadable corpus shard", "shard", path, "err", err)
			continue
		}
		chunks := corpus.BuildChunks(docs, r.maxChunkChars, r.maxChunks, startIndex)
		startIndex += len(chunks)
		r.monitor.ChunksBuilt(path, len(chunks))
		r.logger.Info("searching corpus shard", "shard", path, "documents", len(docs), "chunks", len(chunks))

		if single {
			shardBest, err := r.coordinator.SearchSingle(ctx, queries[0], chunks)
			if err != nil {
				return best, err
			}
			best[0].Absorb(shardBest)
			if best[0].Score == 100 {
				r.logger.Info("perfect match found, stopping corpus scan", "shard", path)
				break
			}
		} else {
			shardResults, err := r.coordinator.SearchBatch(ctx, queries, chunks)
			if err != nil {
				return best, err
			}
			for query, shardBest := range shardResults {
				byQuery[query].Absorb(shardBest)
			}
		}
	}
	return best, nil
}
