// Package colly implements the last-resort crawl engine on top of the colly
// scraping framework.
package colly

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/docscout"
	"github.com/fwojciec/docscout/crawl"
	"github.com/gocolly/colly/v2"
)

// Fallback engine defaults.
const (
	DefaultParallelism = 50
	DefaultDelay       = 100 * time.Millisecond
	DefaultUserAgent   = "docscout/1.0 (+https://github.com/fwojciec/docscout)"
)

const attemptKey = "attempt:"

var _ docscout.Engine = (*Engine)(nil)

// Engine crawls with an asynchronous colly collector. It follows the same
// link rules as the static engine: .html/.htm pages on the start host and
// its subdomains.
type Engine struct {
	Policy crawl.Policy

	// Parallelism bounds concurrent requests. Zero means DefaultParallelism.
	Parallelism int
	// Delay is the pause between requests to a domain. Negative disables.
	Delay     time.Duration
	UserAgent string
}

// NewEngine returns an Engine with default parallelism and delay.
func NewEngine(policy crawl.Policy) *Engine {
	return &Engine{Policy: policy}
}

// Name returns docscout.EngineFallback.
func (e *Engine) Name() docscout.EngineID { return docscout.EngineFallback }

// run is the state of one Crawl call. Collector callbacks run
// concurrently; mu serialises yields.
type run struct {
	mu      sync.Mutex
	yield   func(*docscout.CrawledPage) bool
	yielded map[string]bool
	count   int
	max     int
	stopped bool
	stop    context.CancelFunc
}

func (r *run) emit(page *docscout.CrawledPage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := docscout.NormalizeURL(page.URL)
	if r.stopped || r.yielded[key] {
		return
	}
	r.yielded[key] = true
	r.count++
	if !r.yield(page) || r.count >= r.max {
		r.stopped = true
		r.stop()
	}
}

func (r *run) done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

func (r *run) yieldedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Crawl visits startURL and follows anchors breadth first within the depth
// and page caps. Fetch errors are retried with the policy delays and then
// skipped.
func (e *Engine) Crawl(ctx context.Context, startURL string, yield func(*docscout.CrawledPage) bool) error {
	start, err := url.Parse(startURL)
	if err != nil || start.Host == "" {
		return docscout.Errorf(docscout.EINVALID, "invalid start URL: %s", startURL)
	}
	if ctx.Err() != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := e.Policy.Log()
	host := start.Hostname()
	seen := crawl.NewSeenSet()
	seen.MarkSeen(startURL)
	r := &run{yield: yield, yielded: make(map[string]bool), max: e.Policy.Pages(), stop: cancel}

	c, err := e.collector(ctx)
	if err != nil {
		return err
	}

	c.OnRequest(func(req *colly.Request) {
		if ctx.Err() != nil || r.done() {
			req.Abort()
			return
		}
		if err := e.Policy.Wait(ctx, req.URL.String()); err != nil {
			req.Abort()
		}
	})

	c.OnHTML("html", func(el *colly.HTMLElement) {
		pageURL := el.Request.URL.String()
		r.emit(&docscout.CrawledPage{
			URL:        pageURL,
			Path:       docscout.URLPath(pageURL),
			RawContent: string(el.Response.Body),
			Title:      strings.TrimSpace(el.DOM.Find("title").First().Text()),
			Depth:      el.Request.Depth - 1,
		})
		n := r.yieldedCount()
		e.Policy.ReportPage(n, "Fetched", pageURL)
	})

	c.OnHTML("a[href]", func(el *colly.HTMLElement) {
		if r.done() {
			return
		}
		link := el.Request.AbsoluteURL(el.Attr("href"))
		if link == "" {
			return
		}
		u, err := url.Parse(link)
		if err != nil || !docscout.HostnameAllowed(u.Hostname(), host) || !seen.ShouldCrawl(link) {
			return
		}
		seen.MarkSeen(link)
		_ = el.Request.Visit(docscout.NormalizeURL(link))
	})

	delays := e.Policy.Delays()
	c.OnError(func(resp *colly.Response, err error) {
		if ctx.Err() != nil || r.done() {
			return
		}
		target := resp.Request.URL.String()
		key := attemptKey + target
		attempt, _ := resp.Request.Ctx.GetAny(key).(int)
		if resp.StatusCode != 404 && attempt < len(delays) {
			resp.Request.Ctx.Put(key, attempt+1)
			t := time.NewTimer(delays[attempt])
			defer t.Stop()
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			if err := resp.Request.Retry(); err != nil {
				logger.Debug("retry failed", "url", target, "err", err)
			}
			return
		}
		logger.Warn("skip page", "url", target, "status", strconv.Itoa(resp.StatusCode), "err", err)
	})

	if err := c.Visit(startURL); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return docscout.Errorf(docscout.EINTERNAL, "visit %s: %v", startURL, err)
	}
	c.Wait()
	return nil
}

func (e *Engine) collector(ctx context.Context) (*colly.Collector, error) {
	ua := e.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	c := colly.NewCollector(
		colly.Async(true),
		colly.MaxDepth(e.Policy.Depth()+1),
		colly.UserAgent(ua),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(e.Policy.Timeout())

	parallelism := e.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	delay := e.Delay
	switch {
	case delay == 0:
		delay = DefaultDelay
	case delay < 0:
		delay = 0
	}
	if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: parallelism, Delay: delay}); err != nil {
		return nil, docscout.Errorf(docscout.EINTERNAL, "collector limits: %v", err)
	}
	return c, nil
}
