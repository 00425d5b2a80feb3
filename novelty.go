// Copyright 2025 Pileworks
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package novelty detects whether query strings already appear, verbatim
// or near-verbatim, inside a large reference text corpus. It wires the
// corpus, match, search and report packages into one linear scan per run.
package novelty

import (
	"context"
	"log/slog"

	"github.com/pileworks/novelty/corpus"
	"github.com/pileworks/novelty/match"
	"github.com/pileworks/novelty/report"
	"github.com/pileworks/novelty/search"
)

// Scanner runs one corpus scan per invocation. No index is built or
// reused across runs.
type Scanner struct {
	shards        corpus.ShardSet
	scorer        match.Scorer
	workers       int
	detailed      bool
	maxChunkChars int
	maxChunks     int
	logger        *slog.Logger
	monitor       search.Monitor
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner) error

// WithScorer sets the match scorer. Default is the alignment scorer with
// the default threshold.
func WithScorer(scorer match.Scorer) ScannerOption {
	return func(s *Scanner) error {
		if scorer == nil {
			return search.ErrScorerRequired
		}
		s.scorer = scorer
		return nil
	}
}

// WithWorkers sets the scoring worker pool size.
// Default is search.DefaultWorkers.
func WithWorkers(size int) ScannerOption {
	return func(s *Scanner) error {
		if size < 1 {
			size = 1
		}
		s.workers = size
		return nil
	}
}

// WithDetailedResults toggles per-chunk match histories in the output.
func WithDetailedResults(detailed bool) ScannerOption {
	return func(s *Scanner) error {
		s.detailed = detailed
		return nil
	}
}

// WithMaxChunkChars sets the chunk size bound in characters.
// Default is corpus.DefaultMaxChunkChars.
func WithMaxChunkChars(chars int) ScannerOption {
	return func(s *Scanner) error {
		if chars < 1 {
			chars = corpus.DefaultMaxChunkChars
		}
		s.maxChunkChars = chars
		return nil
	}
}

// WithMaxChunks caps the number of chunks built per shard. Zero means no cap.
func WithMaxChunks(chunks int) ScannerOption {
	return func(s *Scanner) error {
		if chunks < 0 {
			chunks = 0
		}
		s.maxChunks = chunks
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMonitor sets a search monitor. Default is no monitoring.
func WithMonitor(monitor search.Monitor) ScannerOption {
	return func(s *Scanner) error {
		s.monitor = monitor
		return nil
	}
}

// NewScanner creates a scanner over the given corpus shard set.
func NewScanner(shards corpus.ShardSet, opts ...ScannerOption) (*Scanner, error) {
	s := &Scanner{
		shards:        shards,
		scorer:        match.NewAlignment(match.DefaultThreshold),
		workers:       search.DefaultWorkers,
		maxChunkChars: corpus.DefaultMaxChunkChars,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Run scans the corpus for the given queries and returns one result
// record per query, in query order. A single query is searched with
// chunk-level and shard-level early exit on a perfect match; several
// queries are searched in batch mode over the whole corpus.
func (s *Scanner) Run(ctx context.Context, queries []string) ([]report.Record, error) {
	coordinatorOpts := []search.Option{
		search.WithWorkers(s.workers),
		search.WithDetailedResults(s.detailed),
		search.WithLogger(s.logger),
	}
	if s.monitor != nil {
		coordinatorOpts = append(coordinatorOpts, search.WithMonitor(s.monitor))
	}
	coordinator, err := search.NewCoordinator(s.scorer, coordinatorOpts...)
	if err != nil {
		return nil, err
	}

	runnerOpts := []search.RunnerOption{
		search.WithMaxChunkChars(s.maxChunkChars),
		search.WithMaxChunks(s.maxChunks),
		search.WithRunnerLogger(s.logger),
	}
	if s.monitor != nil {
		runnerOpts = append(runnerOpts, search.WithRunnerMonitor(s.monitor))
	}
	runner, err := search.NewRunner(coordinator, s.shards, runnerOpts...)
	if err != nil {
		return nil, err
	}

	results, err := runner.Run(ctx, queries)
	if err != nil {
		return nil, err
	}

	records := make([]report.Record, len(results))
	for i, best := range results {
		records[i] = toRecord(best, s.detailed)
	}
	return records, nil
}

// toRecord converts a running best result to its output form. Empty
// matches become explicit nulls in the output.
func toRecord(best *search.BestResult, detailed bool) report.Record {
	record := report.Record{
		Solution: best.Query,
		Score:    best.Score,
	}
	if best.Match != "" {
		match := best.Match
		record.ClosestSolution = &match
	}
	if detailed {
		history := make([]report.ChunkRecord, len(best.ChunkResults))
		for i, r := range best.ChunkResults {
			entry := report.ChunkRecord{ChunkIndex: r.ChunkIndex, Score: r.Score}
			if r.Match != "" {
				match := r.Match
				entry.ClosestSolution = &match
			}
			history[i] = entry
		}
		record.ChunkResults = &history
	}
	return record
}
