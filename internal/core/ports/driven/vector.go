package driven

import "context"

// VectorIndex stores one vector per chunk and answers nearest-neighbour
// queries by cosine similarity. Vectors of the wrong size are rejected with
// domain.ErrDimensionMismatch.
type VectorIndex interface {
	Add(ctx context.Context, chunkID string, embedding []float32) error
	Delete(ctx context.Context, chunkID string) error

	// Search returns at most k hits, most similar first. Equal scores keep
	// the order in which chunks were added.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	Len() int
	Dimensions() int
	Close() error
}

// VectorHit is a chunk and its cosine similarity to the query, in [-1, 1].
type VectorHit struct {
	ChunkID    string
	Similarity float64
}

// VectorIndexFactory opens an empty index for vectors of the given size.
// Each build gets its own index so a failed build never touches the live one.
type VectorIndexFactory func(dimensions int) (VectorIndex, error)
