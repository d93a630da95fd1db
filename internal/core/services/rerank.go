package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/logger"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/metrics"
)

// RerankStage reorders retrieved chunks with an independent relevance model.
// A nil reranker disables the stage.
type RerankStage struct {
	reranker driven.Reranker
	metrics  *metrics.Metrics
}

// NewRerankStage creates a rerank stage.
func NewRerankStage(reranker driven.Reranker, m *metrics.Metrics) *RerankStage {
	return &RerankStage{reranker: reranker, metrics: m}
}

// Enabled reports whether a reranker is configured.
func (s *RerankStage) Enabled() bool {
	return s != nil && s.reranker != nil
}

// Rerank returns at most topN candidates. When enabled, candidates are
// stably sorted by the reranker's score; ties keep the retriever order.
//
// A reranker failure never fails the pipeline: the first topN candidates
// in retriever order are returned together with a *domain.RerankError.
func (s *RerankStage) Rerank(
	ctx context.Context,
	query string,
	candidates []domain.ScoredChunk,
	topN int,
) ([]domain.ScoredChunk, *domain.RerankError) {
	if topN <= 0 {
		topN = domain.DefaultRerankTopK
	}
	if !s.Enabled() || len(candidates) == 0 {
		return truncate(candidates, topN), nil
	}

	scores, err := s.score(ctx, query, candidates)
	if err != nil {
		rerr := domain.NewRerankError(err)
		logger.Warn("%s reranker failed, keeping retrieval order: %v", s.reranker.Name(), err)
		s.metrics.RerankFallback()
		return truncate(candidates, topN), rerr
	}

	out := make([]domain.ScoredChunk, len(candidates))
	for i, c := range candidates {
		out[i] = domain.ScoredChunk{Chunk: c.Chunk, Score: scores[i]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return truncate(out, topN), nil
}

// score calls the reranker, turning panics and misaligned results into errors.
func (s *RerankStage) score(
	ctx context.Context,
	query string,
	candidates []domain.ScoredChunk,
) (scores []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			scores, err = nil, fmt.Errorf("reranker panic: %v", r)
		}
	}()

	passages := make([]string, len(candidates))
	for i, c := range candidates {
		passages[i] = c.Chunk.Text
	}

	scores, err = s.reranker.Score(ctx, query, passages)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("reranker returned %d scores for %d candidates", len(scores), len(candidates))
	}
	return scores, nil
}

func truncate(chunks []domain.ScoredChunk, n int) []domain.ScoredChunk {
	if n < len(chunks) {
		chunks = chunks[:n]
	}
	return append([]domain.ScoredChunk(nil), chunks...)
}
