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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/pileworks/novelty"
	"github.com/pileworks/novelty/corpus"
	"github.com/pileworks/novelty/dolos"
	"github.com/pileworks/novelty/match"
	"github.com/pileworks/novelty/report"
	"github.com/pileworks/novelty/search"
	"github.com/pileworks/novelty/setup"
)

func main() {
	app := &cli.App{
		Name:  "novelty",
		Usage: "Approximate substring search over a large text corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "search",
				Usage:  "Search the corpus for the closest match to each query",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to a JSONL query file with canonical_solution fields",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "result-dir",
						Aliases: []string{"r"},
						Usage:   "Directory for the result file",
						Value:   "results",
					},
					&cli.StringFlag{
						Name:  "corpus-dir",
						Usage: "Directory holding the corpus shards",
						Value: corpus.DefaultShardDir,
					},
					&cli.StringFlag{
						Name:  "corpus-format",
						Usage: "Shard file name format with one %d verb",
						Value: corpus.DefaultNameFormat,
					},
					&cli.IntFlag{
						Name:  "num-corpus-files",
						Usage: "Limit the search to the first N corpus shards (0 means all)",
					},
					&cli.StringFlag{
						Name:  "scorer",
						Usage: "Match scorer (alignment or window)",
						Value: "alignment",
					},
					&cli.IntFlag{
						Name:  "threshold",
						Usage: "Similarity score a match must clear",
						Value: match.DefaultThreshold,
					},
					&cli.Float64Flag{
						Name:  "stride",
						Usage: "Window stride as a fraction of query length (window scorer only)",
						Value: match.DefaultStrideFraction,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent scoring workers",
						Value: search.DefaultWorkers,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk size bound in characters",
						Value: corpus.DefaultMaxChunkChars,
					},
					&cli.IntFlag{
						Name:  "max-chunks",
						Usage: "Cap the chunks built per shard (0 means no cap)",
					},
					&cli.BoolFlag{
						Name:  "detailed",
						Usage: "Record the per-chunk match history for each query",
					},
				},
			},
			{
				Name:   "dolos",
				Usage:  "Score detailed search results with the Dolos analyzer",
				Action: dolosCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to a detailed JSONL search result file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "result-dir",
						Aliases: []string{"r"},
						Usage:   "Directory for the analyzer result file",
						Value:   "results",
					},
					&cli.StringFlag{
						Name:  "command",
						Usage: "Analyzer binary to invoke",
						Value: dolos.DefaultCommand,
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Source language passed to the analyzer",
						Value: dolos.DefaultLanguage,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of programs analyzed concurrently",
						Value: dolos.DefaultWorkers,
					},
					&cli.IntFlag{
						Name:  "max-chunk-solutions",
						Usage: "Cap the chunk solutions analyzed per program",
						Value: dolos.DefaultMaxChunkSolutions,
					},
				},
			},
			{
				Name:   "setup-corpus",
				Usage:  "Download and convert the reference corpus shards",
				Action: setupCorpusCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "corpus-dir",
						Usage: "Directory for the converted corpus shards",
						Value: corpus.DefaultShardDir,
					},
					&cli.StringFlag{
						Name:  "staging-dir",
						Usage: "Directory for the downloaded Parquet parts",
						Value: setup.DefaultStagingDir,
					},
					&cli.StringFlag{
						Name:  "base-url",
						Usage: "Base URL the Parquet parts are downloaded from",
						Value: setup.DefaultBaseURL,
					},
					&cli.IntFlag{
						Name:  "num-corpus-files",
						Usage: "Number of corpus parts to download",
						Value: corpus.DefaultShardCount,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	inputPath := c.String("input")
	if !strings.HasSuffix(inputPath, ".jsonl") {
		return fmt.Errorf("input file %s must be a .jsonl file", inputPath)
	}

	queries, err := corpus.LoadQueries(inputPath)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	shards := corpus.ShardSet{
		Dir:        c.String("corpus-dir"),
		NameFormat: c.String("corpus-format"),
		Count:      corpus.DefaultShardCount,
	}
	shards, err = shards.Limit(c.Int("num-corpus-files"))
	if err != nil {
		return fmt.Errorf("invalid corpus limit: %w", err)
	}

	scorer, err := buildScorer(c)
	if err != nil {
		return err
	}

	scanner, err := novelty.NewScanner(shards,
		novelty.WithScorer(scorer),
		novelty.WithWorkers(c.Int("workers")),
		novelty.WithDetailedResults(c.Bool("detailed")),
		novelty.WithMaxChunkChars(c.Int("chunk-size")),
		novelty.WithMaxChunks(c.Int("max-chunks")),
	)
	if err != nil {
		return fmt.Errorf("failed to create scanner: %w", err)
	}

	slog.Info("starting corpus search",
		"queries", len(queries), "shards", shards.Count, "scorer", c.String("scorer"))

	records, err := scanner.Run(ctx, queries)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	resultFile := filepath.Base(inputPath)
	if err := report.Write(c.String("result-dir"), resultFile, records); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	slog.Info("search finished",
		"results", filepath.Join(c.String("result-dir"), resultFile))
	return nil
}

func buildScorer(c *cli.Context) (match.Scorer, error) {
	threshold := c.Int("threshold")
	switch c.String("scorer") {
	case "alignment":
		return match.NewAlignment(threshold), nil
	case "window":
		return match.NewWindow(threshold, c.Float64("stride")), nil
	default:
		return nil, fmt.Errorf("invalid scorer %q: must be alignment or window", c.String("scorer"))
	}
}

func dolosCommand(c *cli.Context) error {
	ctx := context.Background()

	inputPath := c.String("input")
	if !strings.HasSuffix(inputPath, ".jsonl") {
		return fmt.Errorf("input file %s must be a .jsonl file", inputPath)
	}

	analyzer, err := dolos.NewAnalyzer(
		dolos.WithCommand(c.String("command")),
		dolos.WithLanguage(c.String("language")),
		dolos.WithWorkers(c.Int("workers")),
		dolos.WithMaxChunkSolutions(c.Int("max-chunk-solutions")),
	)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}

	if err := analyzer.Run(ctx, inputPath, c.String("result-dir")); err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	return nil
}

func setupCorpusCommand(c *cli.Context) error {
	ctx := context.Background()

	count := c.Int("num-corpus-files")
	if count < 1 {
		return fmt.Errorf("num-corpus-files must be greater than 0")
	}
	shards := corpus.ShardSet{
		Dir:        c.String("corpus-dir"),
		NameFormat: corpus.DefaultNameFormat,
		Count:      count,
	}

	bootstrapper, err := setup.NewBootstrapper(shards,
		setup.WithBaseURL(c.String("base-url")),
		setup.WithStagingDir(c.String("staging-dir")),
	)
	if err != nil {
		return fmt.Errorf("failed to create bootstrapper: %w", err)
	}

	if err := bootstrapper.Run(ctx); err != nil {
		return fmt.Errorf("corpus setup failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
