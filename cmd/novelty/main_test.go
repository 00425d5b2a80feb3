package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/pileworks/novelty/report"
)

func searchApp() *cli.App {
	return &cli.App{
		Name: "novelty",
		Commands: []*cli.Command{
			{
				Name:   "search",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true},
					&cli.StringFlag{Name: "result-dir", Aliases: []string{"r"}, Value: "results"},
					&cli.StringFlag{Name: "corpus-dir", Value: "Github_Split"},
					&cli.StringFlag{Name: "corpus-format", Value: "The_Pile_Github_Split_%d.jsonl"},
					&cli.IntFlag{Name: "num-corpus-files"},
					&cli.StringFlag{Name: "scorer", Value: "alignment"},
					&cli.IntFlag{Name: "threshold", Value: 60},
					&cli.Float64Flag{Name: "stride", Value: 0.05},
					&cli.IntFlag{Name: "workers", Value: 8},
					&cli.IntFlag{Name: "chunk-size", Value: 2_000_000},
					&cli.IntFlag{Name: "max-chunks"},
					&cli.BoolFlag{Name: "detailed"},
				},
			},
		},
	}
}

func writeQueryFile(t *testing.T, dir string, queries []string) string {
	t.Helper()
	var lines []byte
	for _, q := range queries {
		line, err := json.Marshal(map[string]string{"canonical_solution": q})
		require.NoError(t, err)
		lines = append(lines, line...)
		lines = append(lines, '\n')
	}
	path := filepath.Join(dir, "queries.jsonl")
	require.NoError(t, os.WriteFile(path, lines, 0644))
	return path
}

func writeCorpusShard(t *testing.T, dir string, part int, docs []string) {
	t.Helper()
	var lines []byte
	for _, doc := range docs {
		line, err := json.Marshal(map[string]string{"text": doc})
		require.NoError(t, err)
		lines = append(lines, line...)
		lines = append(lines, '\n')
	}
	name := fmt.Sprintf("The_Pile_Github_Split_%d.jsonl", part)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), lines, 0644))
}

func TestSearchCommand(t *testing.T) {
	t.Run("input must be a jsonl file", func(t *testing.T) {
		err := searchApp().Run([]string{"novelty", "search", "--input", "queries.txt"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".jsonl")
	})

	t.Run("input flag is required", func(t *testing.T) {
		err := searchApp().Run([]string{"novelty", "search"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input")
	})

	t.Run("invalid scorer is rejected", func(t *testing.T) {
		dir := t.TempDir()
		input := writeQueryFile(t, dir, []string{"def f(): pass\n"})
		err := searchApp().Run([]string{"novelty", "search",
			"--input", input, "--scorer", "levenshtein"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid scorer")
	})

	t.Run("shard limit above the set size is rejected", func(t *testing.T) {
		dir := t.TempDir()
		input := writeQueryFile(t, dir, []string{"def f(): pass\n"})
		err := searchApp().Run([]string{"novelty", "search",
			"--input", input, "--num-corpus-files", "99"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "corpus limit")
	})

	t.Run("end to end over a small corpus", func(t *testing.T) {
		root := t.TempDir()
		corpusDir := filepath.Join(root, "corpus")
		require.NoError(t, os.MkdirAll(corpusDir, 0755))
		query := "def add(a, b):\n    return a + b\n"
		writeCorpusShard(t, corpusDir, 0, []string{
			"~~~~ unrelated document ~~~~",
			"import os\n" + query + "print(1)\n",
		})

		input := writeQueryFile(t, root, []string{query})
		resultDir := filepath.Join(root, "results")

		err := searchApp().Run([]string{"novelty", "search",
			"--input", input,
			"--result-dir", resultDir,
			"--corpus-dir", corpusDir,
			"--num-corpus-files", "1",
			"--threshold", "50",
		})
		require.NoError(t, err)

		records, err := report.Read(filepath.Join(resultDir, "queries.jsonl"))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, query, records[0].Solution)
		assert.Equal(t, 100, records[0].Score)
	})
}

func TestBuildScorer(t *testing.T) {
	run := func(t *testing.T, args ...string) error {
		t.Helper()
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "scorer", Value: "alignment"},
				&cli.IntFlag{Name: "threshold", Value: 60},
				&cli.Float64Flag{Name: "stride", Value: 0.05},
			},
			Action: func(c *cli.Context) error {
				_, err := buildScorer(c)
				return err
			},
		}
		return app.Run(append([]string{"test"}, args...))
	}

	assert.NoError(t, run(t))
	assert.NoError(t, run(t, "--scorer", "window"))
	assert.Error(t, run(t, "--scorer", "exact"))
}

func TestDolosCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "novelty",
		Commands: []*cli.Command{
			{
				Name:   "dolos",
				Action: dolosCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true},
					&cli.StringFlag{Name: "result-dir", Aliases: []string{"r"}, Value: "results"},
					&cli.StringFlag{Name: "command", Value: "dolos"},
					&cli.StringFlag{Name: "language", Value: "python"},
					&cli.IntFlag{Name: "workers", Value: 8},
					&cli.IntFlag{Name: "max-chunk-solutions", Value: 500},
				},
			},
		},
	}

	t.Run("input must be a jsonl file", func(t *testing.T) {
		err := app.Run([]string{"novelty", "dolos", "--input", "results.csv"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".jsonl")
	})

	t.Run("missing input file fails", func(t *testing.T) {
		err := app.Run([]string{"novelty", "dolos",
			"--input", filepath.Join(t.TempDir(), "absent.jsonl")})
		assert.Error(t, err)
	})
}

func TestSetupCorpusCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "novelty",
		Commands: []*cli.Command{
			{
				Name:   "setup-corpus",
				Action: setupCorpusCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "corpus-dir", Value: "Github_Split"},
					&cli.StringFlag{Name: "staging-dir", Value: "parquet_files"},
					&cli.StringFlag{Name: "base-url", Value: "https://example.invalid/"},
					&cli.IntFlag{Name: "num-corpus-files", Value: 10},
				},
			},
		},
	}

	err := app.Run([]string{"novelty", "setup-corpus", "--num-corpus-files", "0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "num-corpus-files")
}

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info"},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			t.Run(level, func(t *testing.T) {
				require.NoError(t, newApp().Run([]string{"test", "--log-level", level}))
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, level := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(level, func(t *testing.T) {
				require.NoError(t, newApp().Run([]string{"test", "--log-level", level}))
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		app := newApp()
		app.Action = func(c *cli.Context) error {
			assert.Equal(t, "debug", c.String("log-level"))
			return nil
		}
		require.NoError(t, app.Run([]string{"test", "-l", "debug"}))
	})
}

func TestMain(m *testing.M) {
	// Keep test output quiet regardless of the ambient default logger.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
	code := m.Run()
	os.Exit(code)
}
