package web

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

// Ensure BrowserFetcher implements the interface.
var _ driven.PageFetcher = (*BrowserFetcher)(nil)

// BrowserFetcher renders pages in headless Chrome. It is slower than
// HTTPFetcher but gets through pages that block non-browser clients or
// build their content with JavaScript.
type BrowserFetcher struct {
	timeout   time.Duration
	userAgent string
}

// NewBrowserFetcher creates a headless Chrome fetcher.
func NewBrowserFetcher(timeout time.Duration, userAgent string) *BrowserFetcher {
	if timeout <= 0 {
		timeout = domain.DefaultFetchTimeout
	}
	if userAgent == "" {
		userAgent = domain.DefaultBrowserAgent
	}
	return &BrowserFetcher{timeout: timeout, userAgent: userAgent}
}

// Fetch navigates to url and returns the rendered document HTML.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*driven.FetchedPage, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent(f.userAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var html, location string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", url, err)
	}
	if location == "" {
		location = url
	}

	return &driven.FetchedPage{
		URL:         location,
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(html),
	}, nil
}

// Close is a no-op; each fetch owns its browser process.
func (f *BrowserFetcher) Close() error {
	return nil
}
