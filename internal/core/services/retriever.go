package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/metrics"
)

// Retriever finds the chunks most similar to a query.
type Retriever struct {
	defaultK int
	metrics  *metrics.Metrics
}

// NewRetriever creates a retriever. A non-positive defaultK uses 10.
func NewRetriever(defaultK int, m *metrics.Metrics) *Retriever {
	if defaultK <= 0 {
		defaultK = domain.DefaultRetrievalK
	}
	return &Retriever{defaultK: defaultK, metrics: m}
}

// Retrieve returns up to k chunks ordered by decreasing score. Equal scores
// keep chunk insertion order. k <= 0 uses the default.
//
// A nil index fails with INDEX_ABSENT. An empty index or blank query
// yields an empty result.
func (r *Retriever) Retrieve(
	ctx context.Context,
	idx *session.KnowledgeIndex,
	query string,
	k int,
) ([]domain.ScoredChunk, error) {
	if idx == nil {
		return nil, domain.NewRetrievalError(domain.ErrIndexAbsent, nil)
	}
	if k <= 0 {
		k = r.defaultK
	}
	if strings.TrimSpace(query) == "" || idx.Len() == 0 {
		return []domain.ScoredChunk{}, nil
	}

	vectors, embedder := idx.Vectors(), idx.Embedder()
	if vectors == nil || embedder == nil {
		return nil, domain.NewRetrievalError(domain.ErrIndexCorrupt, errors.New("index has no vectors or embedder"))
	}

	start := time.Now()
	defer func() { r.metrics.RetrievalObserved(time.Since(start)) }()

	qv, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, classifyEmbeddingError(err)
	}
	if len(qv) != vectors.Dimensions() {
		return nil, domain.NewRetrievalError(domain.ErrIndexCorrupt,
			fmt.Errorf("query vector has %d dimensions, index holds %d", len(qv), vectors.Dimensions()))
	}

	hits, err := vectors.Search(ctx, qv, k)
	if err != nil {
		if errors.Is(err, domain.ErrDimensionMismatch) {
			return nil, domain.NewRetrievalError(domain.ErrIndexCorrupt, err)
		}
		return nil, fmt.Errorf("vector search: %w", err)
	}

	type ranked struct {
		scored   domain.ScoredChunk
		position int
	}
	results := make([]ranked, 0, len(hits))
	for _, hit := range hits {
		chunk, pos, ok := idx.Chunk(hit.ChunkID)
		if !ok {
			return nil, domain.NewRetrievalError(domain.ErrIndexCorrupt,
				fmt.Errorf("vector %q has no chunk record", hit.ChunkID))
		}
		results = append(results, ranked{
			scored:   domain.ScoredChunk{Chunk: chunk, Score: hit.Similarity},
			position: pos,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].scored.Score != results[j].scored.Score {
			return results[i].scored.Score > results[j].scored.Score
		}
		return results[i].position < results[j].position
	})

	out := make([]domain.ScoredChunk, len(results))
	for i, res := range results {
		out[i] = res.scored
	}
	return out, nil
}
