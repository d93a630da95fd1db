// Package chunker splits source documents into overlapping chunks.
//
// Two strategies are provided: Recursive, which breaks text at the most
// natural boundary available (paragraph, line, sentence, word, rune), and
// Fixed, a sliding window over runes. Lengths are counted in runes so
// multi-byte scripts are never cut inside a character.
package chunker

import (
	"fmt"
	"unicode/utf8"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// params holds the size settings shared by both strategies.
type params struct {
	chunkSize int
	overlap   int
}

// Option configures a splitter.
type Option func(*params)

// WithChunkSize sets the default chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *params) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the default overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *params) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

func newParams(opts []Option) params {
	p := params{chunkSize: DefaultChunkSize, overlap: DefaultChunkOverlap}
	for _, opt := range opts {
		opt(&p)
	}
	return p.resolve(0, -1)
}

// resolve applies per-call values over the defaults and keeps overlap
// strictly below the chunk size.
func (p params) resolve(size, overlap int) params {
	out := p
	if size > 0 {
		out.chunkSize = size
	}
	if overlap >= 0 {
		out.overlap = overlap
	}
	if out.overlap >= out.chunkSize {
		out.overlap = out.chunkSize / 4
	}
	return out
}

// chunkID is unique per document position and sequence within one split call.
func chunkID(doc domain.SourceDocument, docIndex, seq int) string {
	return fmt.Sprintf("%s#%d:%d", doc.Origin.Identifier, docIndex, seq)
}

func newChunk(doc domain.SourceDocument, docIndex, seq int, text string) domain.Chunk {
	return domain.Chunk{
		ID:       chunkID(doc, docIndex, seq),
		Text:     text,
		Origin:   doc.Origin,
		Sequence: seq,
		Metadata: doc.Metadata,
	}
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// lastRunes returns the final n runes of s (all of s if shorter).
func lastRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := len(s); i > 0; {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
		count++
		if count == n {
			return s[i:]
		}
	}
	return s
}
