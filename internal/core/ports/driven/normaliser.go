package driven

import (
	"context"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

// Normaliser transforms raw documents into source documents.
// Each normaliser handles specific MIME types (e.g., PDF, HTML).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts text from a raw document.
	// It may return several documents (one per PDF page).
	// Undecodable content fails with a LoadError of reason UNSUPPORTED_FORMAT.
	Normalise(ctx context.Context, raw *domain.RawDocument) ([]domain.SourceDocument, error)
}

// NormaliserRegistry selects the appropriate normaliser for a document.
// It maintains a priority-ordered list of normalisers and dispatches
// based on MIME type.
type NormaliserRegistry interface {
	// Normalise transforms a raw document using the best matching normaliser.
	// An unknown MIME type fails with reason UNSUPPORTED_FORMAT.
	Normalise(ctx context.Context, raw *domain.RawDocument) ([]domain.SourceDocument, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}
