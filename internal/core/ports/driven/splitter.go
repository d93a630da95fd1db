package driven

import "github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"

// Splitter cuts source documents into retrieval-sized chunks.
// Implementations are pure: the same input always yields the same chunks.
type Splitter interface {
	// Name returns the strategy name used in configuration.
	Name() string

	// Split chunks documents with the given size and overlap (in characters).
	Split(docs []domain.SourceDocument, chunkSize, chunkOverlap int) []domain.Chunk
}
