package rod

import (
	"context"

	"github.com/fwojciec/docscout"
)

// Ensure Fetcher implements docscout.Fetcher at compile time.
var _ docscout.Fetcher = (*Fetcher)(nil)

// Fetcher returns rendered HTML for single URLs through a docscout.Browser.
type Fetcher struct {
	browser docscout.Browser
}

// NewFetcher creates a Fetcher that opens pages in browser. Closing the
// Fetcher closes the browser.
func NewFetcher(browser docscout.Browser) *Fetcher {
	return &Fetcher{browser: browser}
}

// Fetch opens url, waits for the network to settle and returns the DOM.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := f.browser.Open(ctx, url)
	if err != nil {
		return "", err
	}
	defer page.Close()

	if err := page.WaitNetworkIdle(ctx); err != nil {
		return "", err
	}
	return page.HTML(ctx)
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.browser.Close()
}
