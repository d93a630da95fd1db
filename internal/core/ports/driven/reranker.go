package driven

import "context"

// Reranker scores passages against a query with a relevance model that is
// independent of the embedding similarity (normally a cross-encoder).
type Reranker interface {
	// Score returns one relevance score per passage, aligned with the input.
	// Higher is more relevant.
	Score(ctx context.Context, query string, passages []string) ([]float64, error)

	// Name returns the reranker name for logging.
	Name() string
}
