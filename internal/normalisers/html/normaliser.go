// Package html extracts readable text from HTML pages.
//
// Extraction first runs a readability pass that keeps the main article
// content. When that fails or finds nothing, a tag stripper removes
// script, style and navigation blocks and keeps the remaining text.
package html

import (
	"bytes"
	"context"
	"html"
	"net/url"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/logger"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct {
	readability bool
}

// Option configures the normaliser.
type Option func(*Normaliser)

// WithReadability toggles the readability pass. Enabled by default.
func WithReadability(enabled bool) Option {
	return func(n *Normaliser) {
		n.readability = enabled
	}
}

// New creates a new HTML normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{readability: true}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{normalisers.MIMEHTML, "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise converts an HTML document to text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.SourceDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	rawContent := string(raw.Content)
	title := extractHTMLTitle(rawContent, raw.URI)

	var text string
	if n.readability {
		article, err := readability.FromReader(bytes.NewReader(raw.Content), pageURL(raw.URI))
		if err != nil {
			logger.Debug("readability failed for %s: %v", raw.URI, err)
		} else {
			text = strings.TrimSpace(article.TextContent)
			if t := strings.TrimSpace(article.Title); t != "" {
				title = t
			}
		}
	}
	if text == "" {
		text = stripHTML(rawContent)
	}

	doc, err := raw.NewDocument(text, title, map[string]string{"format": "html"})
	if err != nil {
		return nil, err
	}
	return []domain.SourceDocument{doc}, nil
}

// pageURL parses the document location for resolving relative links.
func pageURL(uri string) *url.URL {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" {
		return &url.URL{Scheme: "file", Path: uri}
	}
	return u
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	titleTag          = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	breakTags         = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t]+`)
)

// noiseTags holds one pattern per noise element. Each closes only on its own
// end tag, so a block nested inside another cannot end the outer one.
var noiseTags = func() []*regexp.Regexp {
	names := []string{"head", "script", "style", "noscript", "svg", "header", "footer", "nav", "aside", "form"}
	res := make([]*regexp.Regexp, 0, len(names))
	for _, name := range names {
		res = append(res, regexp.MustCompile(`(?is)<`+name+`(?:\s[^>]*)?>.*?</`+name+`\s*>`))
	}
	return res
}()

// extractHTMLTitle extracts a title from the HTML content or falls back to the file name.
func extractHTMLTitle(content, uri string) string {
	if matches := titleTag.FindStringSubmatch(content); len(matches) > 1 {
		if title := strings.TrimSpace(html.UnescapeString(matches[1])); title != "" {
			return title
		}
	}
	return normalisers.TitleFromPath(uri)
}

// stripHTML removes noise blocks and tags and keeps one text line per block.
func stripHTML(content string) string {
	for _, re := range noiseTags {
		content = re.ReplaceAllString(content, "")
	}
	content = htmlComments.ReplaceAllString(content, "")

	content = openBlockElements.ReplaceAllString(content, "\n")
	content = blockElements.ReplaceAllString(content, "\n")
	content = breakTags.ReplaceAllString(content, "\n")

	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
