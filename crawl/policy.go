package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/docscout"
)

// Engine limits.
const (
	// DefaultMaxPages limits the number of pages an engine yields.
	DefaultMaxPages = 1000
	// DefaultMaxDepth limits how many links away from the start URL an engine goes.
	DefaultMaxDepth = 5
	// DefaultRequestTimeout bounds a single fetch or page render.
	DefaultRequestTimeout = 30 * time.Second
)

// Policy holds the limits and helpers every engine shares.
// A zero Policy is usable and applies the defaults.
type Policy struct {
	MaxPages       int
	MaxDepth       int
	RequestTimeout time.Duration
	RetryDelays    []time.Duration
	Limiter        docscout.DomainLimiter
	Progress       docscout.ProgressFunc
	Logger         *slog.Logger
}

// Pages returns the page cap.
func (p *Policy) Pages() int {
	if p.MaxPages <= 0 {
		return DefaultMaxPages
	}
	return p.MaxPages
}

// Depth returns the depth cap.
func (p *Policy) Depth() int {
	if p.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return p.MaxDepth
}

// Timeout returns the per-request timeout.
func (p *Policy) Timeout() time.Duration {
	if p.RequestTimeout <= 0 {
		return DefaultRequestTimeout
	}
	return p.RequestTimeout
}

// Delays returns the retry delays.
func (p *Policy) Delays() []time.Duration {
	if p.RetryDelays == nil {
		return DefaultRetryDelays()
	}
	return p.RetryDelays
}

// Log returns the logger, discarding output when none is configured.
func (p *Policy) Log() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

// Wait blocks on the rate limiter for the host of rawURL.
func (p *Policy) Wait(ctx context.Context, rawURL string) error {
	if p.Limiter == nil {
		return ctx.Err()
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	return p.Limiter.Wait(ctx, u.Host)
}

// Report forwards progress to the progress sink, if any.
func (p *Policy) Report(progress float64, description string) {
	if p.Progress == nil {
		return
	}
	p.Progress(min(max(progress, 0), 1), description)
}

// progressURLLen bounds the URL shown in progress descriptions.
const progressURLLen = 60

// ReportPage reports done pages out of the page cap, labelled with verb and
// the tail of pageURL.
func (p *Policy) ReportPage(done int, verb, pageURL string) {
	if p.Progress == nil {
		return
	}
	if len(pageURL) > progressURLLen {
		pageURL = "..." + pageURL[len(pageURL)-progressURLLen+3:]
	}
	p.Report(float64(done)/float64(p.Pages()), verb+" "+pageURL)
}

// Fetch fetches rawURL through fetch with rate limiting, the per-request
// timeout and retries. Missing pages are not retried.
func (p *Policy) Fetch(ctx context.Context, rawURL string, fetch FetchFunc) (string, error) {
	timed := func(ctx context.Context, u string) (string, error) {
		if err := p.Wait(ctx, u); err != nil {
			return "", Permanent(err)
		}
		ctx, cancel := context.WithTimeout(ctx, p.Timeout())
		defer cancel()
		html, err := fetch(ctx, u)
		if docscout.ErrorCode(err) == docscout.ENOTFOUND {
			return "", Permanent(err)
		}
		return html, err
	}
	return FetchWithRetryDelays(ctx, rawURL, timed, p.Log(), p.Delays())
}

// SeenSet tracks the URLs one crawl has already scheduled.
// Keys are normalized URLs. It is safe for concurrent use.
type SeenSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewSeenSet returns an empty SeenSet.
func NewSeenSet() *SeenSet {
	return &SeenSet{seen: make(map[string]struct{})}
}

// MarkSeen records rawURL.
func (s *SeenSet) MarkSeen(rawURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[docscout.NormalizeURL(rawURL)] = struct{}{}
}

// Seen reports whether rawURL was recorded.
func (s *SeenSet) Seen(rawURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[docscout.NormalizeURL(rawURL)]
	return ok
}

// Len returns the number of recorded URLs.
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// ShouldCrawl reports whether a static engine should fetch rawURL. It is
// false when rawURL was already seen, has a fragment, is unparsable, or its
// last path segment is not an .html/.htm file. Extensionless SPA routes are
// excluded on purpose: those sites go through the browser engine.
func (s *SeenSet) ShouldCrawl(rawURL string) bool {
	if docscout.HasFragment(rawURL) {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	if !docscout.HasHTMLExtension(rawURL) {
		return false
	}
	return !s.Seen(rawURL)
}
