// Package plaintext normalises UTF-8 text files.
package plaintext

import (
	"bytes"
	"context"
	"errors"
	"unicode/utf8"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{normalisers.MIMEPlain, "text/csv"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise decodes the content as UTF-8. Invalid bytes fail the document
// with UNSUPPORTED_FORMAT instead of producing garbled text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.SourceDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := bytes.TrimPrefix(raw.Content, utf8BOM)
	if !utf8.Valid(content) {
		return nil, domain.NewLoadError(raw.Origin, domain.ErrUnsupportedFormat,
			errors.New("content is not valid UTF-8"))
	}

	doc, err := raw.NewDocument(string(content), normalisers.TitleFromPath(raw.URI), nil)
	if err != nil {
		return nil, err
	}
	return []domain.SourceDocument{doc}, nil
}
