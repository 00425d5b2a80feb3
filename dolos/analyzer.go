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


package dolos

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/pileworks/novelty/report"
)

const (
	// DefaultCommand is the analyzer binary looked up on PATH.
	DefaultCommand = "dolos"
	// DefaultLanguage is the source language passed to the analyzer.
	DefaultLanguage = "python"
	// DefaultWorkers is the number of programs analyzed concurrently.
	DefaultWorkers = 8
	// DefaultMaxChunkSolutions caps how many chunk solutions are analyzed
	// per program.
	DefaultMaxChunkSolutions = 500

	scoreMarker      = "Similarity score:"
	resultFilePrefix = "DolosMatch_"
)

// ChunkScore is one analyzer verdict: the similarity between a program's
// canonical solution and the closest solution found in one corpus chunk.
type ChunkScore struct {
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

// Result holds all positive analyzer verdicts for one program, sorted by
// descending score.
type Result struct {
	ProgramIndex int          `json:"program_index"`
	BestMatches  []ChunkScore `json:"program_best_matches"`
}

// Analyzer runs the external similarity analyzer over a solutions tree.
type Analyzer struct {
	command           string
	language          string
	workers           int
	maxChunkSolutions int
	logger            *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer) error

// WithCommand sets the analyzer binary. Default is DefaultCommand.
func WithCommand(command string) Option {
	return func(a *Analyzer) error {
		if command == "" {
			command = DefaultCommand
		}
		a.command = command
		return nil
	}
}

// WithLanguage sets the source language passed to the analyzer.
// Default is DefaultLanguage.
func WithLanguage(language string) Option {
	return func(a *Analyzer) error {
		if language == "" {
			language = DefaultLanguage
		}
		a.language = language
		return nil
	}
}

// WithWorkers sets how many programs are analyzed concurrently.
// Default is DefaultWorkers.
func WithWorkers(size int) Option {
	return func(a *Analyzer) error {
		if size < 1 {
			size = 1
		}
		a.workers = size
		return nil
	}
}

// WithMaxChunkSolutions caps the chunk solutions analyzed per program.
// Default is DefaultMaxChunkSolutions.
func WithMaxChunkSolutions(limit int) Option {
	return func(a *Analyzer) error {
		if limit < 1 {
			limit = DefaultMaxChunkSolutions
		}
		a.maxChunkSolutions = limit
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAnalyzer creates an analyzer with the given options.
func NewAnalyzer(opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		command:           DefaultCommand,
		language:          DefaultLanguage,
		workers:           DefaultWorkers,
		maxChunkSolutions: DefaultMaxChunkSolutions,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Run executes the whole workflow: load the detailed result file at
// inputPath, materialize it into a temporary solutions tree, analyze every
// program and write the results as a JSONL file into resultDir. The
// temporary tree is removed afterwards.
func (a *Analyzer) Run(ctx context.Context, inputPath, resultDir string) error {
	records, err := report.Read(inputPath)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return ErrNoPrograms
	}

	workDir, err := os.MkdirTemp("", "novelty-dolos-*")
	if err != nil {
		return fmt.Errorf("creating solutions tree: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			a.logger.Warn("removing solutions tree", "dir", workDir, "error", err)
		}
	}()

	programDirs, err := BuildTree(workDir, records, a.maxChunkSolutions)
	if err != nil {
		return err
	}

	results, err := a.Analyze(ctx, programDirs)
	if err != nil {
		return err
	}

	name := resultFilePrefix + strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)) + ".jsonl"
	return writeResults(resultDir, name, results)
}

// Analyze runs the analyzer over the given program directories in a
// worker pool. A program whose analysis fails keeps an empty match list.
// Results come back sorted by program index.
func (a *Analyzer) Analyze(ctx context.Context, programDirs []string) ([]Result, error) {
	if len(programDirs) == 0 {
		return nil, ErrNoPrograms
	}

	pool, err := ants.NewPool(a.workers)
	if err != nil {
		return nil, fmt.Errorf("creating analyzer pool: %w", err)
	}
	defer pool.Release()

	results := make([]Result, len(programDirs))
	var wg sync.WaitGroup
	for i, programDir := range programDirs {
		index, err := programIndex(programDir)
		if err != nil {
			return nil, err
		}
		results[i] = Result{ProgramIndex: index, BestMatches: []ChunkScore{}}

		wg.Add(1)
		task := func() {
			defer wg.Done()
			matches, err := a.analyzeProgram(ctx, programDir)
			if err != nil {
				a.logger.Warn("program analysis failed", "dir", programDir, "error", err)
				return
			}
			results[i].BestMatches = matches
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			a.logger.Warn("submitting analysis task", "dir", programDir, "error", err)
		}
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].ProgramIndex < results[j].ProgramIndex
	})
	return results, ctx.Err()
}

// analyzeProgram scores one program's canonical solution against each of
// its chunk solutions. A pair whose analyzer run fails is logged and
// skipped.
func (a *Analyzer) analyzeProgram(ctx context.Context, programDir string) ([]ChunkScore, error) {
	canonical := filepath.Join(programDir, canonicalFile)
	chunkFiles, err := filepath.Glob(filepath.Join(programDir, chunksDirName, "*.py"))
	if err != nil {
		return nil, fmt.Errorf("listing chunk solutions in %s: %w", programDir, err)
	}

	matches := []ChunkScore{}
	for _, chunkFile := range chunkFiles {
		if ctx.Err() != nil {
			return matches, ctx.Err()
		}
		index, err := chunkIndex(chunkFile)
		if err != nil {
			a.logger.Warn("skipping chunk solution", "file", chunkFile, "error", err)
			continue
		}
		score, err := a.scorePair(ctx, canonical, chunkFile)
		if err != nil {
			a.logger.Warn("analyzer run failed", "file", chunkFile, "error", err)
			continue
		}
		if score > 0 {
			matches = append(matches, ChunkScore{ChunkIndex: index, Score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

// scorePair runs the analyzer on one file pair and extracts its similarity
// score from the terminal output.
func (a *Analyzer) scorePair(ctx context.Context, canonical, chunkFile string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.command,
		"run", "-f", "terminal", "--language", a.language, canonical, chunkFile)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("running %s: %w", a.command, err)
	}
	return parseSimilarityScore(string(out))
}

// parseSimilarityScore extracts the score from the analyzer's terminal
// output, the first line carrying the score marker.
func parseSimilarityScore(output string) (float64, error) {
	for _, line := range strings.Split(output, "\n") {
		pos := strings.Index(line, scoreMarker)
		if pos < 0 {
			continue
		}
		raw := strings.TrimSpace(line[pos+len(scoreMarker):])
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing similarity score %q: %w", raw, err)
		}
		return score, nil
	}
	return 0, ErrNoScore
}

// writeResults saves analyzer results as a JSONL file named file inside
// dir, one result per line.
func writeResults(dir, file string, results []Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating result directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, file)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating result file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, result := range results {
		line, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("encoding result for program %d: %w", result.ProgramIndex, err)
		}
		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("writing result file %s: %w", path, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing result file %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing result file %s: %w", path, err)
	}
	return f.Sync()
}
