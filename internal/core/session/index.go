package session

import (
	"time"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

// KnowledgeIndex is a fully built, read-only knowledge base.
// It keeps the embedding service that built it so queries are embedded
// with exactly the same function.
type KnowledgeIndex struct {
	vectors  driven.VectorIndex
	embedder driven.EmbeddingService
	chunks   map[string]indexedChunk
	stats    []domain.SourceStat
	builtAt  time.Time
}

type indexedChunk struct {
	chunk    domain.Chunk
	position int
}

// NewKnowledgeIndex assembles an index from its parts.
// chunks must be in insertion order and already added to vectors.
func NewKnowledgeIndex(
	vectors driven.VectorIndex,
	embedder driven.EmbeddingService,
	chunks []domain.Chunk,
	stats []domain.SourceStat,
	builtAt time.Time,
) *KnowledgeIndex {
	table := make(map[string]indexedChunk, len(chunks))
	for i, c := range chunks {
		table[c.ID] = indexedChunk{chunk: c, position: i}
	}
	return &KnowledgeIndex{
		vectors:  vectors,
		embedder: embedder,
		chunks:   table,
		stats:    append([]domain.SourceStat(nil), stats...),
		builtAt:  builtAt,
	}
}

// Vectors returns the nearest-neighbour index.
func (k *KnowledgeIndex) Vectors() driven.VectorIndex {
	return k.vectors
}

// Embedder returns the embedding service the index was built with.
func (k *KnowledgeIndex) Embedder() driven.EmbeddingService {
	return k.embedder
}

// Chunk looks up a chunk and its insertion position.
func (k *KnowledgeIndex) Chunk(id string) (domain.Chunk, int, bool) {
	ic, ok := k.chunks[id]
	return ic.chunk, ic.position, ok
}

// Len returns the number of indexed chunks.
func (k *KnowledgeIndex) Len() int {
	return len(k.chunks)
}

// Stats returns a copy of the per-source statistics.
func (k *KnowledgeIndex) Stats() []domain.SourceStat {
	return append([]domain.SourceStat(nil), k.stats...)
}

// BuiltAt returns when the index was completed.
func (k *KnowledgeIndex) BuiltAt() time.Time {
	return k.builtAt
}

// Close releases the vector index.
func (k *KnowledgeIndex) Close() error {
	if k.vectors == nil {
		return nil
	}
	return k.vectors.Close()
}
