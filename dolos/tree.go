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
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pileworks/novelty/report"
)

const (
	canonicalFile = "canonical_solution.py"
	chunksDirName = "chunks_solutions"
	chunkFileFmt  = "closest_solution_%d.py"
	programDirFmt = "novelty_test_%d"
)

// BuildTree materializes records under workDir as one directory per
// record: the canonical solution next to a chunks_solutions directory
// holding the closest chunk solutions, capped at maxChunkSolutions per
// record. Chunk entries without a closest solution are skipped. Returns
// the program directories in record order.
func BuildTree(workDir string, records []report.Record, maxChunkSolutions int) ([]string, error) {
	if maxChunkSolutions < 1 {
		maxChunkSolutions = DefaultMaxChunkSolutions
	}

	dirs := make([]string, 0, len(records))
	for i, record := range records {
		programDir := filepath.Join(workDir, fmt.Sprintf(programDirFmt, i+1))
		chunksDir := filepath.Join(programDir, chunksDirName)
		if err := os.MkdirAll(chunksDir, 0755); err != nil {
			return nil, fmt.Errorf("creating program directory %s: %w", programDir, err)
		}

		canonical := filepath.Join(programDir, canonicalFile)
		if err := os.WriteFile(canonical, []byte(record.Solution), 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", canonical, err)
		}

		var history []report.ChunkRecord
		if record.ChunkResults != nil {
			history = *record.ChunkResults
		}
		written := 0
		for _, chunk := range history {
			if written >= maxChunkSolutions {
				break
			}
			if chunk.ClosestSolution == nil {
				continue
			}
			path := filepath.Join(chunksDir, fmt.Sprintf(chunkFileFmt, chunk.ChunkIndex))
			if err := os.WriteFile(path, []byte(*chunk.ClosestSolution), 0644); err != nil {
				return nil, fmt.Errorf("writing %s: %w", path, err)
			}
			written++
		}
		dirs = append(dirs, programDir)
	}
	return dirs, nil
}

// programIndex recovers the one-based program index from a program
// directory name.
func programIndex(programDir string) (int, error) {
	name := filepath.Base(programDir)
	pos := strings.LastIndexByte(name, '_')
	if pos < 0 {
		return 0, fmt.Errorf("%w: %s", ErrBadProgramDir, name)
	}
	index, err := strconv.Atoi(name[pos+1:])
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrBadProgramDir, name)
	}
	return index, nil
}

// chunkIndex recovers the corpus chunk index from a chunk solution file
// name.
func chunkIndex(path string) (int, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	pos := strings.LastIndexByte(name, '_')
	if pos < 0 {
		return 0, fmt.Errorf("%w: %s", ErrBadProgramDir, name)
	}
	return strconv.Atoi(name[pos+1:])
}
