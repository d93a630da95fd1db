package chunker

import (
	"strings"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

// Ensure Recursive implements the interface.
var _ driven.Splitter = (*Recursive)(nil)

// DefaultSeparators are tried in order: paragraph, line, sentence end, word,
// then a hard rune cut.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", "。", "！", "？", " ", ""}

// Recursive splits text at the most natural boundary that yields pieces
// small enough to fit, then packs pieces into chunks. Each chunk after the
// first starts with the last overlap characters of the previous chunk.
type Recursive struct {
	params
	separators []string
}

// NewRecursive creates a recursive splitter with the given options.
func NewRecursive(opts ...Option) *Recursive {
	return &Recursive{
		params:     newParams(opts),
		separators: DefaultSeparators,
	}
}

// Name returns the strategy name.
func (r *Recursive) Name() string {
	return "recursive"
}

// Split chunks every document. Sizes <= 0 and overlaps < 0 use the defaults.
func (r *Recursive) Split(docs []domain.SourceDocument, chunkSize, chunkOverlap int) []domain.Chunk {
	p := r.resolve(chunkSize, chunkOverlap)

	var chunks []domain.Chunk
	for i, doc := range docs {
		for seq, text := range r.splitText(doc.Text, p) {
			chunks = append(chunks, newChunk(doc, i, seq, text))
		}
	}
	return chunks
}

// splitText packs pieces into chunks of at most chunkSize runes.
func (r *Recursive) splitText(text string, p params) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	bodyLimit := p.chunkSize - p.overlap
	pieces := r.pieces(text, bodyLimit, r.separators)

	var (
		out    []string
		prefix string
		body   []string
		length int
	)
	emit := func() {
		joined := strings.Join(body, "")
		body, length = nil, 0
		if strings.TrimSpace(joined) == "" {
			return
		}
		chunk := prefix + joined
		out = append(out, chunk)
		prefix = lastRunes(chunk, p.overlap)
	}

	for _, piece := range pieces {
		capacity := bodyLimit
		if len(out) == 0 {
			capacity = p.chunkSize
		}
		n := runeLen(piece)
		if length > 0 && length+n > capacity {
			emit()
		}
		body = append(body, piece)
		length += n
	}
	if length > 0 {
		emit()
	}
	return out
}

// pieces breaks text into parts of at most limit runes. Separators stay
// attached to the preceding part so the parts concatenate back to text.
func (r *Recursive) pieces(text string, limit int, separators []string) []string {
	if runeLen(text) <= limit {
		return []string{text}
	}

	for i, sep := range separators {
		if sep == "" {
			return hardCut(text, limit)
		}
		if !strings.Contains(text, sep) {
			continue
		}

		var out []string
		for _, part := range strings.SplitAfter(text, sep) {
			if part == "" {
				continue
			}
			if runeLen(part) <= limit {
				out = append(out, part)
				continue
			}
			out = append(out, r.pieces(part, limit, separators[i+1:])...)
		}
		return out
	}

	return hardCut(text, limit)
}

// hardCut splits text into runs of limit runes.
func hardCut(text string, limit int) []string {
	runes := []rune(text)
	out := make([]string, 0, len(runes)/limit+1)
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}
