package corpus

import "errors"

var (
	// ErrMissingSolutionField is returned when a query line has no canonical_solution field.
	ErrMissingSolutionField = errors.New("missing canonical_solution field")

	// ErrMissingTextField is returned when a corpus line has no text field.
	ErrMissingTextField = errors.New("missing text field")

	// ErrEmptyQueryFile is returned when a query file contains no lines.
	ErrEmptyQueryFile = errors.New("query file is empty")

	// ErrDuplicateQuery is returned when the same query text appears twice in one run.
	ErrDuplicateQuery = errors.New("duplicate query")

	// ErrShardCountExceeded is returned when more shards are requested than the set holds.
	ErrShardCountExceeded = errors.New("requested shard count exceeds available shards")
)
