package crawl

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/fwojciec/docscout"
	"golang.org/x/sync/errgroup"
)

// Static engine batching.
const (
	// DefaultBatchSize is the number of pages fetched concurrently per batch.
	DefaultBatchSize = 50
	// DefaultBatchDelay is the pause between batches.
	DefaultBatchDelay = time.Second
)

var _ docscout.Engine = (*StaticEngine)(nil)

// StaticEngine crawls a site with plain HTTP fetches, following anchors to
// .html/.htm pages on the start host and its subdomains.
type StaticEngine struct {
	Fetcher docscout.Fetcher
	Parser  docscout.HTMLParser

	// Sitemaps, when set, seeds the frontier with sitemap URLs at depth 1.
	Sitemaps docscout.SitemapService

	Policy Policy

	BatchSize  int
	BatchDelay time.Duration
}

// Name returns docscout.EngineStatic.
func (e *StaticEngine) Name() docscout.EngineID { return docscout.EngineStatic }

// staticFrontier is the engine's URL→depth map with FIFO order. Depths are
// keyed by normalized URL; order keeps the URL as discovered, minus its
// fragment, so directory indexes are fetched and resolved with their
// trailing slash.
type staticFrontier struct {
	seen  *SeenSet
	depth map[string]int
	order []string
}

func (f *staticFrontier) add(rawURL string, depth int) {
	key := docscout.NormalizeURL(rawURL)
	f.seen.MarkSeen(key)
	f.depth[key] = depth
	f.order = append(f.order, docscout.StripFragment(rawURL))
}

func (f *staticFrontier) take(n int) []string {
	n = min(n, len(f.order))
	batch := f.order[:n]
	f.order = f.order[n:]
	return batch
}

// fetched is the outcome of fetching one frontier URL.
type fetched struct {
	url  string
	html string
	err  error
}

// Crawl fetches startURL and the pages it links to, breadth first, in
// concurrent batches.
func (e *StaticEngine) Crawl(ctx context.Context, startURL string, yield func(*docscout.CrawledPage) bool) error {
	start, err := url.Parse(startURL)
	if err != nil || start.Host == "" {
		return docscout.Errorf(docscout.EINVALID, "invalid start URL: %s", startURL)
	}
	host := start.Hostname()
	logger := e.Policy.Log()
	maxPages := e.Policy.Pages()
	maxDepth := e.Policy.Depth()

	frontier := &staticFrontier{seen: NewSeenSet(), depth: make(map[string]int)}
	frontier.add(startURL, 0)

	accept := func(link string, depth int) {
		if depth > maxDepth || !frontier.seen.ShouldCrawl(link) {
			return
		}
		u, err := url.Parse(link)
		if err != nil || !docscout.HostnameAllowed(u.Hostname(), host) {
			return
		}
		frontier.add(link, depth)
	}

	if e.Sitemaps != nil {
		urls, err := e.Sitemaps.DiscoverURLs(ctx, startURL)
		if err != nil {
			logger.Debug("sitemap unavailable", "url", startURL, "err", err)
		}
		for _, u := range urls {
			accept(u, 1)
		}
		e.Policy.Report(0, fmt.Sprintf("Discovered %d URLs", len(frontier.order)))
	}

	batchSize := e.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	batchDelay := e.BatchDelay
	if batchDelay < 0 {
		batchDelay = 0
	} else if batchDelay == 0 {
		batchDelay = DefaultBatchDelay
	}

	var yielded int
	for first := true; len(frontier.order) > 0 && yielded < maxPages; first = false {
		if ctx.Err() != nil {
			return nil
		}
		if !first && batchDelay > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(batchDelay):
			}
		}

		batch := frontier.take(min(batchSize, maxPages-yielded))
		results := e.fetchBatch(ctx, batch)
		if ctx.Err() != nil {
			return nil
		}

		for _, r := range results {
			if r.err != nil {
				logger.Warn("fetch failed", "url", r.url, "err", r.err)
				continue
			}
			key := docscout.NormalizeURL(r.url)
			depth := frontier.depth[key]
			doc, err := e.Parser.ParseHTML(r.html, r.url, nil)
			if err != nil {
				logger.Warn("parse failed", "url", r.url, "err", err)
				continue
			}
			if depth < maxDepth {
				for _, link := range doc.Links {
					accept(link, depth+1)
				}
			}

			page := &docscout.CrawledPage{
				URL:        key,
				Path:       docscout.URLPath(key),
				RawContent: r.html,
				Title:      doc.Title,
				Depth:      depth,
			}
			if !yield(page) {
				return nil
			}
			yielded++
			e.Policy.ReportPage(yielded, "Fetched", r.url)
			if yielded >= maxPages {
				break
			}
		}
	}
	return nil
}

// fetchBatch fetches urls concurrently. Results keep the input order.
// Individual failures are reported per result and never cancel the batch.
func (e *StaticEngine) fetchBatch(ctx context.Context, urls []string) []fetched {
	results := make([]fetched, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		g.Go(func() error {
			html, err := e.Policy.Fetch(gctx, u, e.Fetcher.Fetch)
			results[i] = fetched{url: u, html: html, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
