// Package memory provides an exact, in-memory cosine similarity index.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores L2-normalised vectors and scores queries by dot product,
// which equals cosine similarity. Search is a linear scan, which is fast
// enough for the few thousand chunks of a campus knowledge base.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	entries    []entry
	positions  map[string]int
}

type entry struct {
	id     string
	vector []float32
}

// New creates an empty index for vectors of the given size.
func New(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: vector dimensions must be positive, got %d", domain.ErrInvalidInput, dimensions)
	}
	return &Index{
		dimensions: dimensions,
		positions:  make(map[string]int),
	}, nil
}

// Factory adapts New to driven.VectorIndexFactory.
func Factory(dimensions int) (driven.VectorIndex, error) {
	return New(dimensions)
}

// Add inserts or replaces the vector for chunkID. A replaced vector keeps
// its original insertion position.
func (i *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	if len(embedding) != i.dimensions {
		return fmt.Errorf("%w: got %d, index holds %d", domain.ErrDimensionMismatch, len(embedding), i.dimensions)
	}
	vec := normalised(embedding)

	i.mu.Lock()
	defer i.mu.Unlock()
	if pos, ok := i.positions[chunkID]; ok {
		i.entries[pos].vector = vec
		return nil
	}
	i.positions[chunkID] = len(i.entries)
	i.entries = append(i.entries, entry{id: chunkID, vector: vec})
	return nil
}

// Delete removes a vector. Deleting an unknown ID is not an error.
func (i *Index) Delete(_ context.Context, chunkID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	pos, ok := i.positions[chunkID]
	if !ok {
		return nil
	}
	i.entries = append(i.entries[:pos], i.entries[pos+1:]...)
	delete(i.positions, chunkID)
	for p := pos; p < len(i.entries); p++ {
		i.positions[i.entries[p].id] = p
	}
	return nil
}

// Search returns the k most similar vectors. Equal scores keep insertion order.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != i.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index holds %d",
			domain.ErrDimensionMismatch, len(query), i.dimensions)
	}
	if k <= 0 {
		return nil, nil
	}
	q := normalised(query)

	i.mu.RLock()
	hits := make([]driven.VectorHit, len(i.entries))
	for n, e := range i.entries {
		hits[n] = driven.VectorHit{ChunkID: e.id, Similarity: dot(q, e.vector)}
	}
	i.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Similarity > hits[b].Similarity
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of stored vectors.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Dimensions returns the vector size the index accepts.
func (i *Index) Dimensions() int {
	return i.dimensions
}

// Close is a no-op. Readers that still hold the index can keep searching it.
func (i *Index) Close() error {
	return nil
}

func normalised(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for n, x := range v {
		out[n] = float32(float64(x) * inv)
	}
	return out
}

func dot(a, b []float32) float64 {
	var s float64
	for n := range a {
		s += float64(a[n]) * float64(b[n])
	}
	return s
}
