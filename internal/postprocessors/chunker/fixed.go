package chunker

import (
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

// Ensure Fixed implements the interface.
var _ driven.Splitter = (*Fixed)(nil)

// Fixed splits text into fixed-size rune windows that advance by
// chunkSize - overlap.
type Fixed struct {
	params
}

// NewFixed creates a fixed-window splitter with the given options.
func NewFixed(opts ...Option) *Fixed {
	return &Fixed{params: newParams(opts)}
}

// Name returns the strategy name.
func (f *Fixed) Name() string {
	return "fixed"
}

// Split chunks every document. Sizes <= 0 and overlaps < 0 use the defaults.
func (f *Fixed) Split(docs []domain.SourceDocument, chunkSize, chunkOverlap int) []domain.Chunk {
	p := f.resolve(chunkSize, chunkOverlap)

	var chunks []domain.Chunk
	for i, doc := range docs {
		runes := []rune(doc.Text)
		if len(runes) == 0 {
			continue
		}

		seq := 0
		for start := 0; start < len(runes); start += p.chunkSize - p.overlap {
			end := start + p.chunkSize
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, newChunk(doc, i, seq, string(runes[start:end])))
			seq++
			if end == len(runes) {
				break
			}
		}
	}
	return chunks
}
