// Package pdf extracts text from PDF documents, one document per page.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ledongthuc/pdf"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/logger"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{normalisers.MIMEPDF}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of every page. Pages without text are
// skipped; a PDF with no text at all fails with EMPTY.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) ([]domain.SourceDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	pages, err := extractPages(raw.Content)
	if err != nil {
		return nil, domain.NewLoadError(raw.Origin, domain.ErrUnsupportedFormat, err)
	}

	title := normalisers.TitleFromPath(raw.URI)
	docs := make([]domain.SourceDocument, 0, len(pages))
	for i, text := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := raw.NewDocument(text, title, map[string]string{
			domain.MetaPage: strconv.Itoa(i + 1),
		})
		if err != nil {
			if errors.Is(err, domain.ErrEmpty) {
				logger.Debug("pdf %s: page %d has no text", raw.URI, i+1)
				continue
			}
			return nil, err
		}
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, domain.NewLoadError(raw.Origin, domain.ErrEmpty, errors.New("no extractable text"))
	}
	return docs, nil
}

// extractPages returns the plain text of each page, in page order.
// The parser panics on some malformed files, which is reported as an error.
func extractPages(content []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	pages = make([]string, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages[i-1] = text
	}
	return pages, nil
}
