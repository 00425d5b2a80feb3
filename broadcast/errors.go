package broadcast

import "errors"

var (
	// ErrRegionExists is returned when publishing over a still-live region.
	// The coordinator must release a chunk's region before publishing the next.
	ErrRegionExists = errors.New("region already published")

	// ErrRegionNotFound is returned when attaching to a name that holds no region.
	ErrRegionNotFound = errors.New("region not found")

	// ErrRegionCorrupt is returned when a region does not decode to exactly
	// one published chunk.
	ErrRegionCorrupt = errors.New("region does not decode to a whole chunk")

	// ErrRegionReleased is returned when releasing a region twice.
	ErrRegionReleased = errors.New("region already released")
)
