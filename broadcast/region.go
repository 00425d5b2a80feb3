package broadcast

import (
	"fmt"
	"sync"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/pileworks/novelty/core"
)

// Exchange is a registry of named chunk regions shared between the
// coordinator and its scoring workers. The coordinator owns each region
// exclusively between Publish and Release; workers only Attach.
type Exchange struct {
	mu      sync.Mutex
	regions map[string][]byte
}

// NewExchange creates an empty exchange.
func NewExchange() *Exchange {
	return &Exchange{regions: make(map[string][]byte)}
}

// Publish encodes the chunk into a region under the given name, sized
// exactly to the encoded length. Publishing over a live region returns
// ErrRegionExists; the caller must release the previous region first.
func (e *Exchange) Publish(name string, chunk core.Chunk) (*Region, error) {
	buf := make([]byte, varint.PositiveInt.Size(chunk.Index)+ord.String.Size(chunk.Text))
	n := varint.PositiveInt.Marshal(chunk.Index, buf)
	ord.String.Marshal(chunk.Text, buf[n:])

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.regions[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrRegionExists, name)
	}
	e.regions[name] = buf
	return &Region{exchange: e, name: name}, nil
}

// Attach decodes the region under the given name back to the published
// chunk. The region must decode to exactly the published chunk; partial or
// trailing bytes mean corruption.
func (e *Exchange) Attach(name string) (core.Chunk, error) {
	e.mu.Lock()
	buf, ok := e.regions[name]
	e.mu.Unlock()
	if !ok {
		return core.Chunk{}, fmt.Errorf("%w: %q", ErrRegionNotFound, name)
	}

	index, n, err := varint.PositiveInt.Unmarshal(buf)
	if err != nil {
		return core.Chunk{}, fmt.Errorf("decoding region %q index: %w", name, err)
	}
	text, m, err := ord.String.Unmarshal(buf[n:])
	if err != nil {
		return core.Chunk{}, fmt.Errorf("decoding region %q text: %w", name, err)
	}
	if n+m != len(buf) {
		return core.Chunk{}, fmt.Errorf("%w: %q has %d trailing bytes", ErrRegionCorrupt, name, len(buf)-n-m)
	}
	return core.Chunk{Index: index, Text: text}, nil
}

// Region is a handle to one published chunk.
type Region struct {
	exchange *Exchange
	name     string
	released bool
}

// Name returns the name workers attach the region by.
func (r *Region) Name() string {
	return r.name
}

// Release frees the region. It must only be called after every worker task
// reading the chunk has completed. Releasing twice returns ErrRegionReleased.
func (r *Region) Release() error {
	r.exchange.mu.Lock()
	defer r.exchange.mu.Unlock()
	if r.released {
		return fmt.Errorf("%w: %q", ErrRegionReleased, r.name)
	}
	r.released = true
	delete(r.exchange.regions, r.name)
	return nil
}
