package services

import (
	"strings"
	"unicode/utf8"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

// ContextSeparator joins chunks in an assembled context.
const ContextSeparator = "\n\n---\n\n"

// AssembleContext joins the non-blank chunks into a context of at most
// maxChars runes (default 12000) and lists their sources.
//
// Chunks that would overflow the budget are skipped. If the first chunk
// alone overflows it is truncated. Sources are deduplicated and keep the
// order in which their chunks were included.
func AssembleContext(chunks []domain.Chunk, maxChars int) (string, []string) {
	if maxChars <= 0 {
		maxChars = domain.DefaultMaxContextChars
	}
	sepLen := utf8.RuneCountInString(ContextSeparator)

	var (
		parts   []string
		sources []string
		seen    = make(map[string]bool)
		used    int
	)
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}

		text := c.Text
		n := utf8.RuneCountInString(text)
		if len(parts) == 0 {
			if n > maxChars {
				text = domain.TruncateRunes(text, maxChars)
				n = maxChars
			}
		} else {
			if used+sepLen+n > maxChars {
				continue
			}
			n += sepLen
		}

		parts = append(parts, text)
		used += n

		label := c.SourceLabel()
		if !seen[label] {
			seen[label] = true
			sources = append(sources, label)
		}
	}

	if sources == nil {
		sources = []string{}
	}
	return strings.Join(parts, ContextSeparator), sources
}
