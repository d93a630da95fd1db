package driven

import "context"

// EmbeddingService maps text to vectors. The vector for a text depends on
// that text alone, never on the rest of its batch, so chunks and questions
// embedded at different times are comparable.
//
// Adapters: feature hashing (offline), Ollama, and OpenAI-compatible APIs.
// A response that does not hold one vector per input is reported with
// domain.ErrDimensionMismatch; a rejected key with domain.ErrAuthFailure.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns len(texts) vectors in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector size, or 0 while a remote model has not
	// answered yet.
	Dimensions() int

	ModelName() string

	// Ping checks reachability without embedding anything when possible.
	Ping(ctx context.Context) error

	Close() error
}
