package crawl

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fwojciec/docscout"
)

var _ docscout.Engine = (*BrowserEngine)(nil)

// BrowserEngine crawls JavaScript-rendered sites through a headless browser.
// Every visited page goes through site detection: the matching rule prepares
// the page, extracts its content and chooses which anchors to follow.
type BrowserEngine struct {
	Browser docscout.Browser
	Sites   docscout.SiteRegistry
	Parser  docscout.HTMLParser

	// Store backs the job's request queue and result sink.
	// Defaults to a fresh in-memory store.
	Store docscout.QueueStore

	// PathPrefix, when set, limits the crawl to paths inside it.
	PathPrefix string

	Observer docscout.Observer
	Policy   Policy
}

// Name returns docscout.EngineBrowser.
func (e *BrowserEngine) Name() docscout.EngineID { return docscout.EngineBrowser }

// Crawl renders startURL and follows rule-selected links through the job's
// request queue. Failing to open the first page with EFATAL means the browser
// is unusable and is returned; other per-page failures are logged and skipped.
func (e *BrowserEngine) Crawl(ctx context.Context, startURL string, yield func(*docscout.CrawledPage) bool) error {
	start, err := url.Parse(startURL)
	if err != nil || start.Host == "" {
		return docscout.Errorf(docscout.EINVALID, "invalid start URL: %s", startURL)
	}
	logger := e.Policy.Log()
	maxPages := e.Policy.Pages()
	maxDepth := e.Policy.Depth()

	store := e.Store
	if store == nil {
		store = NewMemoryStore()
	}
	jobs := &JobQueue{
		Store:           store,
		AllowedHostname: start.Hostname(),
		PathPrefix:      e.PathPrefix,
		Observer:        e.Observer,
		Logger:          logger,
	}
	if err := jobs.Initialize(ctx, startURL); err != nil {
		return err
	}
	defer jobs.LogStats()

	var yielded int
	for yielded < maxPages && ctx.Err() == nil {
		req, ok, err := jobs.Next(ctx)
		if err != nil {
			return fmt.Errorf("next request: %w", err)
		}
		if !ok {
			break
		}

		page, links, err := e.visit(ctx, req)
		if err != nil {
			if docscout.ErrorCode(err) == docscout.EFATAL {
				return err
			}
			if ctx.Err() != nil {
				break
			}
			logger.Warn("page failed", "url", req.URL, "err", err)
			continue
		}

		if req.Depth < maxDepth {
			if _, err := jobs.EnqueueLinks(ctx, links, req.Depth+1); err != nil {
				return err
			}
		}
		if err := jobs.Harvest(ctx, page); err != nil {
			return err
		}
		if !yield(page) {
			break
		}
		yielded++
		e.Policy.ReportPage(yielded, "Rendered", req.URL)
	}
	return jobs.Flush(context.WithoutCancel(ctx))
}

// visit renders one request and returns its page and discovered links.
func (e *BrowserEngine) visit(ctx context.Context, req docscout.Request) (*docscout.CrawledPage, []string, error) {
	if err := e.Policy.Wait(ctx, req.URL); err != nil {
		return nil, nil, err
	}

	open := func(ctx context.Context) (docscout.Page, error) {
		ctx, cancel := context.WithTimeout(ctx, e.Policy.Timeout())
		defer cancel()
		p, err := e.Browser.Open(ctx, req.URL)
		if docscout.ErrorCode(err) == docscout.EFATAL {
			return nil, Permanent(err)
		}
		return p, err
	}
	page, err := Retry(ctx, req.URL, open, e.Policy.Log(), e.Policy.Delays())
	if err != nil {
		return nil, nil, err
	}
	defer page.Close()

	html, err := page.HTML(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read html: %w", err)
	}

	rule := e.Sites.Match(ctx, page, html)
	rule.Prepare(ctx, page)

	html, err = page.HTML(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read prepared html: %w", err)
	}

	pageURL := page.URL()
	if pageURL == "" {
		pageURL = req.URL
	}
	extraction, err := rule.ExtractContent(html, pageURL)
	if err != nil {
		return nil, nil, fmt.Errorf("extract %s: %w", rule.Type(), err)
	}
	doc, err := e.Parser.ParseHTML(html, pageURL, rule.LinkSelectors())
	if err != nil {
		return nil, nil, fmt.Errorf("parse html: %w", err)
	}

	cp := &docscout.CrawledPage{
		URL:        req.URL,
		Path:       docscout.URLPath(req.URL),
		RawContent: extraction.Content,
		Title:      doc.Title,
		Metadata:   extraction.Metadata,
		Depth:      req.Depth,
	}
	if rule.Markdown() {
		cp.ExtractorID = rule.Type()
	}
	if name := extraction.Metadata["name"]; name != "" {
		cp.Title = name
	}
	return cp, doc.Links, nil
}
