package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pileworks/novelty/core"
)

// Corpus documents can be whole source files, so lines may be large.
const maxLineBytes = 64 << 20

type queryLine struct {
	CanonicalSolution *string `json:"canonical_solution"`
}

type documentLine struct {
	Text *string `json:"text"`
}

// LoadQueries reads a JSONL query file and returns the canonical solutions
// in file order. Any malformed or duplicate line is fatal: query files are
// small, hand-picked inputs and must be exactly right.
func LoadQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening query file %s: %w", path, err)
	}
	defer f.Close()

	var (
		queries []string
		seen    = make(map[core.ID]struct{})
		lineNo  int
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		lineNo++
		var line queryLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			return nil, fmt.Errorf("parsing %s line %d: %w", path, lineNo, err)
		}
		if line.CanonicalSolution == nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNo, ErrMissingSolutionField)
		}
		query := *line.CanonicalSolution
		if err := core.ValidateQuery(query); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNo, err)
		}
		id := core.IDFromContent(query)
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNo, ErrDuplicateQuery)
		}
		seen[id] = struct{}{}
		queries = append(queries, query)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading query file %s: %w", path, err)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyQueryFile)
	}
	return queries, nil
}

// LoadDocuments reads one corpus shard file and returns its documents in
// file order. A malformed line fails the whole shard; the caller decides
// whether to skip the shard or abort.
func LoadDocuments(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus shard %s: %w", path, err)
	}
	defer f.Close()

	var (
		docs   []string
		lineNo int
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		lineNo++
		var line documentLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			return nil, fmt.Errorf("parsing %s line %d: %w", path, lineNo, err)
		}
		if line.Text == nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNo, ErrMissingTextField)
		}
		docs = append(docs, *line.Text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading corpus shard %s: %w", path, err)
	}
	return docs, nil
}
