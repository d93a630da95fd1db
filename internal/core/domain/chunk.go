package domain

// UnknownSource is the attribution label used when a chunk has no identifier.
const UnknownSource = "unknown source"

// Metadata keys consulted for attribution, in order of preference.
const (
	MetaSource   = "source"
	MetaFilePath = "file_path"
	MetaURL      = "url"
	MetaPage     = "page"
)

// MetaTruncated is set to "true" on documents whose content was cut short
// while loading.
const MetaTruncated = "truncated"

// Chunk is a bounded slice of a SourceDocument's text.
type Chunk struct {
	// ID is unique within an index.
	ID string

	// Text is the chunk content.
	Text string

	// Origin is inherited unchanged from the source document.
	Origin Origin

	// Sequence is the ordinal position of the chunk within its document.
	Sequence int

	// Metadata is inherited from the source document.
	Metadata map[string]string
}

// SourceLabel returns the human-readable source for attribution.
func (c Chunk) SourceLabel() string {
	for _, key := range []string{MetaSource, MetaFilePath, MetaURL} {
		if v := c.Metadata[key]; v != "" {
			return v
		}
	}
	if c.Origin.Identifier != "" {
		return c.Origin.Identifier
	}
	return UnknownSource
}

// EmbeddedChunk pairs a chunk with its embedding vector.
type EmbeddedChunk struct {
	Chunk  Chunk
	Vector []float32
}

// ScoredChunk is a retrieved chunk with its relevance score.
type ScoredChunk struct {
	Chunk Chunk

	// Score is the similarity (retrieval) or relevance (rerank) score.
	Score float64
}

// ChunksOf strips scores from a retrieval result.
func ChunksOf(scored []ScoredChunk) []Chunk {
	out := make([]Chunk, len(scored))
	for i, s := range scored {
		out[i] = s.Chunk
	}
	return out
}
