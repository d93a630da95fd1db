// Package lexical scores passages with an in-memory full-text index.
//
// Each call builds a throwaway bleve index over the candidate passages and
// runs the query as a match query, so scores follow bleve's TF-IDF
// relevance model and are independent of the embedding similarity.
package lexical

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// Reranker implements driven.Reranker with bleve.
type Reranker struct{}

// New creates a lexical reranker.
func New() *Reranker {
	return &Reranker{}
}

type passage struct {
	Text string `json:"text"`
}

// Score returns one score per passage. Passages that do not match any
// query term score zero.
func (r *Reranker) Score(ctx context.Context, query string, passages []string) ([]float64, error) {
	scores := make([]float64, len(passages))
	if len(passages) == 0 {
		return scores, nil
	}

	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	defer index.Close()

	batch := index.NewBatch()
	for i, text := range passages {
		if err := batch.Index(strconv.Itoa(i), passage{Text: text}); err != nil {
			return nil, fmt.Errorf("index passage %d: %w", i, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("index passages: %w", err)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), len(passages), 0, false)
	res, err := index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= len(scores) {
			return nil, fmt.Errorf("unexpected hit id %q", hit.ID)
		}
		scores[i] = hit.Score
	}
	return scores, nil
}

// Name returns the reranker name for logging.
func (r *Reranker) Name() string {
	return "lexical"
}
