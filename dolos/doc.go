// Package dolos scores code similarity between queries and their closest
// corpus matches using the external Dolos analyzer.
//
// The analyzer is invoked as a subprocess on pairs of source files and is
// treated as an opaque scoring oracle: the only contract is a single
// "Similarity score:" line on its stdout. The workflow materializes a
// detailed fuzzy-search result file into a temporary file tree (one
// directory per query holding its canonical solution and the closest chunk
// solutions), analyzes every pair in a worker pool, and writes one JSONL
// result per query with its matches sorted by descending score.
package dolos
