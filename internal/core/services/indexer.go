package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/logger"
)

// Indexer embeds chunks and loads them into a fresh vector index.
// Any failure rejects the whole build; a partial index is never returned.
type Indexer struct {
	embedder  driven.EmbeddingService
	newIndex  driven.VectorIndexFactory
	batchSize int
	workers   int
}

// NewIndexer creates an indexer. Non-positive batchSize or workers use the defaults.
func NewIndexer(
	embedder driven.EmbeddingService,
	newIndex driven.VectorIndexFactory,
	batchSize, workers int,
) *Indexer {
	if batchSize <= 0 {
		batchSize = domain.DefaultEmbedBatchSize
	}
	if workers <= 0 {
		workers = domain.DefaultWorkers
	}
	return &Indexer{
		embedder:  embedder,
		newIndex:  newIndex,
		batchSize: batchSize,
		workers:   workers,
	}
}

// Embedder returns the embedding service used for builds.
func (x *Indexer) Embedder() driven.EmbeddingService {
	return x.embedder
}

// Index embeds every chunk and returns a populated vector index whose
// insertion order matches chunks. progress, if set, receives the number
// of embedded chunks after each batch.
func (x *Indexer) Index(
	ctx context.Context,
	chunks []domain.Chunk,
	progress func(done, total int),
) (driven.VectorIndex, error) {
	if x.embedder == nil {
		return nil, domain.NewEmbeddingError(domain.ErrBackendUnreachable, domain.ErrNotConfigured)
	}
	if x.newIndex == nil {
		return nil, fmt.Errorf("%w: no vector index factory", domain.ErrNotConfigured)
	}

	vectors, err := x.embedAll(ctx, chunks, progress)
	if err != nil {
		return nil, err
	}

	dims, err := checkVectors(x.embedder.Dimensions(), vectors)
	if err != nil {
		return nil, err
	}

	index, err := x.newIndex(dims)
	if err != nil {
		return nil, fmt.Errorf("create vector index: %w", err)
	}
	for i, c := range chunks {
		if err := index.Add(ctx, c.ID, vectors[i]); err != nil {
			_ = index.Close()
			if errors.Is(err, domain.ErrDimensionMismatch) {
				return nil, domain.NewEmbeddingError(domain.ErrDimensionMismatch, err)
			}
			return nil, fmt.Errorf("add chunk %s: %w", c.ID, err)
		}
	}
	return index, nil
}

// embedAll runs the batches in parallel. Each vector is written to its
// chunk's slot so the result is independent of batch completion order.
func (x *Indexer) embedAll(
	ctx context.Context,
	chunks []domain.Chunk,
	progress func(done, total int),
) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	total := len(chunks)

	var (
		mu       sync.Mutex
		embedded int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.workers)

	for start := 0; start < total; start += x.batchSize {
		end := min(start+x.batchSize, total)
		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, c := range chunks[start:end] {
				texts = append(texts, c.Text)
			}

			batch, err := x.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return classifyEmbeddingError(err)
			}
			if len(batch) != len(texts) {
				return domain.NewEmbeddingError(domain.ErrDimensionMismatch,
					fmt.Errorf("backend returned %d vectors for %d texts", len(batch), len(texts)))
			}
			copy(vectors[start:end], batch)

			mu.Lock()
			embedded += len(texts)
			if progress != nil {
				progress(embedded, total)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("embedded %d chunks with %s", embedded, x.embedder.ModelName())
	return vectors, nil
}

// checkVectors verifies every vector has the model's dimensionality and
// only finite components. A backend that does not advertise its size is
// held to the size of the first vector.
func checkVectors(dims int, vectors [][]float32) (int, error) {
	if dims <= 0 && len(vectors) > 0 {
		dims = len(vectors[0])
	}
	if dims <= 0 {
		if len(vectors) == 0 {
			return domain.DefaultHashDimensions, nil
		}
		return 0, domain.NewEmbeddingError(domain.ErrDimensionMismatch, errors.New("empty vector"))
	}
	for i, v := range vectors {
		if len(v) != dims {
			return 0, domain.NewEmbeddingError(domain.ErrDimensionMismatch,
				fmt.Errorf("vector %d has %d dimensions, want %d", i, len(v), dims))
		}
		for _, f := range v {
			if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
				return 0, domain.NewEmbeddingError(domain.ErrDimensionMismatch,
					fmt.Errorf("vector %d has a non-finite component", i))
			}
		}
	}
	return dims, nil
}

func classifyEmbeddingError(err error) error {
	var embErr *domain.EmbeddingError
	if errors.As(err, &embErr) {
		return err
	}
	if errors.Is(err, domain.ErrDimensionMismatch) {
		return domain.NewEmbeddingError(domain.ErrDimensionMismatch, err)
	}
	return domain.NewEmbeddingError(domain.ErrBackendUnreachable, err)
}
