package driven

import (
	"context"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

// SourceLoader reads one kind of source into raw documents.
// Failures are reported as *domain.LoadError so a build can record them
// and carry on with the remaining sources.
type SourceLoader interface {
	// Kinds returns the source kinds this loader handles.
	Kinds() []domain.SourceKind

	// Load reads the referenced source.
	Load(ctx context.Context, ref domain.SourceRef) ([]domain.RawDocument, error)
}

// PageFetcher retrieves a web page.
type PageFetcher interface {
	// Fetch returns the page body. Non-2xx responses, transport errors
	// and timeouts are returned as errors.
	Fetch(ctx context.Context, url string) (*FetchedPage, error)

	// Close releases resources (browser processes).
	Close() error
}

// FetchedPage is the result of a page fetch.
type FetchedPage struct {
	// URL is the final URL after redirects.
	URL string

	// StatusCode is the HTTP status (200 for rendered pages).
	StatusCode int

	// ContentType is the response media type.
	ContentType string

	// Body is the raw response body.
	Body []byte

	// Truncated reports that Body was cut at the fetcher's size limit.
	Truncated bool
}
