package docscout

import "context"

// Fetcher downloads a page and returns its HTML.
type Fetcher interface {
	// Fetch is bounded by ctx.
	Fetch(ctx context.Context, url string) (html string, err error)
	Close() error
}

// SitemapService lists the page URLs a site publishes in its sitemaps.
type SitemapService interface {
	// DiscoverURLs reads Sitemap directives from robots.txt, falling back to
	// /sitemap.xml, and follows sitemap indexes.
	DiscoverURLs(ctx context.Context, baseURL string) ([]string, error)
}
