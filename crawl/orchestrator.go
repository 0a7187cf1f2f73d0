// Package crawl runs crawl engines in tiers and holds the policy they share:
// page and depth caps, retries, per-domain rate limits, the seen-URL set and
// the browser engine's request queue.
package crawl

import (
	"context"
	"iter"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/fwojciec/docscout"
)

// Orchestrator defaults.
const (
	// DefaultMinPages is the number of pages a tier must yield to be accepted.
	DefaultMinPages = 2

	// DefaultEngine is reported when a run is aborted.
	DefaultEngine = docscout.EngineStatic
)

// Tier outcomes reported to the observer.
const (
	OutcomeAccepted     = "accepted"
	OutcomeInsufficient = "insufficient"
	OutcomeFatal        = "fatal"
	OutcomeFailed       = "failed"
	OutcomeAborted      = "aborted"
	OutcomeStopped      = "stopped"
)

// Orchestrator runs crawl engines as ordered tiers and streams their pages.
//
// GitHub repository URLs go to the GitHub engine only and its errors are
// returned unchanged. Every other URL tries the browser engine (when set),
// then the static engine, then the fallback engine, stopping at the first
// tier that yields at least MinPages pages. Pages streamed by a tier that
// turns out insufficient are not retracted, and a URL is never streamed twice
// within one run. Tiers never run concurrently.
type Orchestrator struct {
	GitHub   docscout.Engine
	Browser  docscout.Engine // nil disables the browser tier
	Static   docscout.Engine
	Fallback docscout.Engine

	MinPages int

	// BrowserAuthoritative fails the run when the browser tier is
	// insufficient instead of falling through to the static tiers.
	BrowserAuthoritative bool

	Observer docscout.Observer
	Logger   *slog.Logger
}

// Run crawls startURL, passing each page to yield, and returns the id of the
// engine whose result was accepted.
//
// Cancelling ctx aborts the run: Run stops promptly and returns DefaultEngine
// and a nil error. When yield returns false Run stops and returns the current
// engine's id. Insufficient yield on the last tier returns EINSUFFICIENT;
// EFATAL errors from any engine are returned immediately.
func (o *Orchestrator) Run(ctx context.Context, startURL string, yield func(*docscout.CrawledPage) bool) (docscout.EngineID, error) {
	u, err := url.Parse(startURL)
	if err != nil || u.Host == "" {
		return "", docscout.Errorf(docscout.EINVALID, "invalid URL: %s", startURL)
	}

	r := &run{o: o, startURL: startURL, yield: yield, seen: make(map[string]struct{})}

	if IsGitHubHost(u.Hostname()) {
		if o.GitHub == nil {
			return docscout.EngineGitHub, docscout.Errorf(docscout.EFATAL, "github engine not configured")
		}
		_, err := r.tier(ctx, o.GitHub)
		switch {
		case ctx.Err() != nil:
			o.finished(docscout.EngineGitHub, r.count, OutcomeAborted)
			return DefaultEngine, nil
		case err != nil:
			o.finished(docscout.EngineGitHub, r.count, OutcomeFatal)
			return docscout.EngineGitHub, err
		}
		o.finished(docscout.EngineGitHub, r.count, OutcomeAccepted)
		return docscout.EngineGitHub, nil
	}

	tiers := o.tiers()
	if len(tiers) == 0 {
		return DefaultEngine, docscout.Errorf(docscout.EINTERNAL, "no crawl engines configured")
	}
	minPages := o.MinPages
	if minPages <= 0 {
		minPages = DefaultMinPages
	}

	for i, engine := range tiers {
		if ctx.Err() != nil {
			return DefaultEngine, nil
		}
		id := engine.Name()
		stopped, err := r.tier(ctx, engine)
		switch {
		case ctx.Err() != nil:
			o.finished(id, r.count, OutcomeAborted)
			return DefaultEngine, nil
		case stopped:
			o.finished(id, r.count, OutcomeStopped)
			return id, nil
		case err != nil && docscout.ErrorCode(err) == docscout.EFATAL:
			o.finished(id, r.count, OutcomeFatal)
			return id, err
		case err != nil:
			o.log().Warn("engine failed", "engine", id, "url", startURL, "err", err)
		}

		// A tier that returned an error is insufficient whatever it yielded.
		if err == nil && r.count >= minPages {
			o.finished(id, r.count, OutcomeAccepted)
			return id, nil
		}
		if err != nil {
			o.finished(id, r.count, OutcomeFailed)
		} else {
			o.finished(id, r.count, OutcomeInsufficient)
		}

		last := i == len(tiers)-1
		if last || (id == docscout.EngineBrowser && o.BrowserAuthoritative) {
			return id, docscout.Errorf(docscout.EINSUFFICIENT, "%s engine found %d pages at %s, need %d", id, r.count, startURL, minPages)
		}
		o.log().Info("engine insufficient, trying next", "engine", id, "pages", r.count, "url", startURL)
	}
	// unreachable: the last tier always returns
	return DefaultEngine, nil
}

func (o *Orchestrator) tiers() []docscout.Engine {
	var tiers []docscout.Engine
	for _, e := range []docscout.Engine{o.Browser, o.Static, o.Fallback} {
		if e != nil {
			tiers = append(tiers, e)
		}
	}
	return tiers
}

func (o *Orchestrator) finished(engine docscout.EngineID, pages int, outcome string) {
	if o.Observer != nil {
		o.Observer.TierFinished(engine, pages, outcome)
	}
}

func (o *Orchestrator) log() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// run is the state of one orchestrator run.
type run struct {
	o        *Orchestrator
	startURL string
	yield    func(*docscout.CrawledPage) bool
	seen     map[string]struct{}

	// count is the number of pages the current tier produced.
	count int
}

// tier runs one engine, forwarding pages not yet streamed in this run.
// It reports whether the consumer stopped the stream.
func (r *run) tier(ctx context.Context, engine docscout.Engine) (bool, error) {
	r.count = 0
	var stopped bool
	err := engine.Crawl(ctx, r.startURL, func(page *docscout.CrawledPage) bool {
		if ctx.Err() != nil {
			return false
		}
		r.count++
		key := docscout.NormalizeURL(page.URL)
		if _, ok := r.seen[key]; ok {
			return true
		}
		r.seen[key] = struct{}{}
		if r.o.Observer != nil {
			r.o.Observer.PageYielded(engine.Name())
		}
		if !r.yield(page) {
			stopped = true
			return false
		}
		return true
	})
	return stopped, err
}

// IsGitHubHost reports whether host serves GitHub repositories.
func IsGitHubHost(host string) bool {
	host = strings.ToLower(host)
	return host == "github.com" || host == "www.github.com"
}

// Stream is a lazy, single-use stream of crawled pages.
type Stream struct {
	o        *Orchestrator
	ctx      context.Context
	cancel   context.CancelFunc
	startURL string
	started  atomic.Bool

	engine docscout.EngineID
	err    error
}

// Stream returns a stream that runs the orchestrator for startURL when
// iterated.
func (o *Orchestrator) Stream(ctx context.Context, startURL string) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	return &Stream{o: o, ctx: ctx, cancel: cancel, startURL: startURL}
}

// All returns the page sequence. It can be ranged over once; later calls
// yield nothing. Breaking out of the loop stops the crawl.
func (s *Stream) All() iter.Seq[*docscout.CrawledPage] {
	return func(yield func(*docscout.CrawledPage) bool) {
		if !s.started.CompareAndSwap(false, true) {
			return
		}
		defer s.cancel()
		s.engine, s.err = s.o.Run(s.ctx, s.startURL, yield)
	}
}

// Abort stops the stream at the next page or tier boundary. The stream then
// ends cleanly with DefaultEngine. Safe to call from any goroutine.
func (s *Stream) Abort() {
	s.cancel()
}

// Engine returns the id of the accepted engine once the stream has ended.
func (s *Stream) Engine() docscout.EngineID {
	return s.engine
}

// Err returns the error that ended the stream, if any.
func (s *Stream) Err() error {
	return s.err
}
