// Package web loads web pages as knowledge sources.
package web

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/logger"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/normalisers"
)

// Ensure Loader implements the interface.
var _ driven.SourceLoader = (*Loader)(nil)

// Loader fetches URL sources through a PageFetcher, throttled by a
// token bucket shared by all concurrent loads.
type Loader struct {
	fetcher driven.PageFetcher
	limiter *rate.Limiter
}

// Option configures the loader.
type Option func(*Loader)

// WithRateLimit sets the sustained request rate. Zero or negative disables throttling.
func WithRateLimit(perSecond float64) Option {
	return func(l *Loader) {
		if perSecond <= 0 {
			l.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		l.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// New creates a web loader.
func New(fetcher driven.PageFetcher, opts ...Option) *Loader {
	l := &Loader{
		fetcher: fetcher,
		limiter: rate.NewLimiter(rate.Limit(domain.DefaultRequestsPerSecond), 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewFetcher returns the fetcher for the configured mode.
func NewFetcher(cfg domain.SourceSettings) driven.PageFetcher {
	if cfg.Fetcher == domain.FetcherBrowser {
		return NewBrowserFetcher(cfg.FetchTimeout, cfg.UserAgent)
	}
	return NewHTTPFetcher(cfg.FetchTimeout, cfg.UserAgent)
}

// Kinds returns the source kinds this loader handles.
func (l *Loader) Kinds() []domain.SourceKind {
	return []domain.SourceKind{domain.SourceKindURL}
}

// Load fetches the page. Any fetch problem (bad URL, transport error,
// timeout, non-2xx status) fails with FETCH_FAILED.
func (l *Loader) Load(ctx context.Context, ref domain.SourceRef) ([]domain.RawDocument, error) {
	origin := ref.Origin()

	target, err := validateURL(ref.Location)
	if err != nil {
		return nil, domain.NewLoadError(origin, domain.ErrFetchFailed, err)
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return nil, domain.NewLoadError(origin, domain.ErrFetchFailed, fmt.Errorf("rate limit: %w", err))
	}

	logger.Debug("fetching %s", target)
	page, err := l.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, domain.NewLoadError(origin, domain.ErrFetchFailed, err)
	}

	metadata := map[string]string{
		domain.MetaSource: ref.Location,
		domain.MetaURL:    ref.Location,
	}
	if page.URL != "" && page.URL != ref.Location {
		metadata["final_url"] = page.URL
	}
	if page.Truncated {
		logger.Warn("%s: body cut at %d bytes", target, len(page.Body))
		metadata[domain.MetaTruncated] = "true"
	}

	return []domain.RawDocument{{
		Origin:   origin,
		URI:      firstNonEmpty(page.URL, target),
		MIMEType: pageMIME(page.ContentType, target),
		Content:  page.Body,
		Metadata: metadata,
	}}, nil
}

// Close releases the fetcher.
func (l *Loader) Close() error {
	return l.fetcher.Close()
}

func validateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("url has no host")
	}
	return u.String(), nil
}

// pageMIME picks the media type from the response header, falling back
// to the URL extension and then to HTML.
func pageMIME(contentType, target string) string {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			return mt
		}
	}
	if u, err := url.Parse(target); err == nil {
		if mt := normalisers.MIMEForPath(u.Path); mt != normalisers.MIMEUnknown {
			return mt
		}
	}
	return normalisers.MIMEHTML
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
