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


// Package report reads and writes JSONL result files: one record per
// query, with the best match found in the corpus and, in detailed mode,
// the per-chunk match history.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ChunkRecord is one entry of a query's per-chunk match history.
type ChunkRecord struct {
	ChunkIndex      int     `json:"chunk_index"`
	ClosestSolution *string `json:"closest_solution"`
	Score           int     `json:"score"`
}

// Record is the final result for one query. ClosestSolution is null when
// nothing in the corpus cleared the threshold. ChunkResults is absent
// outside detailed mode; in detailed mode it is always present, as an
// empty array when no chunk produced a history entry.
type Record struct {
	Solution        string         `json:"solution"`
	ClosestSolution *string        `json:"closest_solution"`
	Score           int            `json:"score"`
	ChunkResults    *[]ChunkRecord `json:"chunk_results,omitempty"`
}

// Write saves records as a JSONL file named file inside dir, creating dir
// if needed. Records are written in the given order, one per line.
func Write(dir, file string, records []Record) error {
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
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("encoding result for %q: %w", record.Solution, err)
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

// Read loads a JSONL result file, typically as input to the analyzer
// workflow.
func Read(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening result file %s: %w", path, err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		var record Record
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			return nil, fmt.Errorf("parsing %s line %d: %w", path, lineNo, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading result file %s: %w", path, err)
	}
	return records, nil
}
