package mock

import (
	"context"

	"github.com/fwojciec/docscout"
)

// Compile-time interface verification.
var (
	_ docscout.Engine   = (*Engine)(nil)
	_ docscout.Observer = (*Observer)(nil)
)

// Engine is a mock implementation of docscout.Engine.
type Engine struct {
	NameFn  func() docscout.EngineID
	CrawlFn func(ctx context.Context, startURL string, yield func(*docscout.CrawledPage) bool) error
}

func (e *Engine) Name() docscout.EngineID {
	return e.NameFn()
}

func (e *Engine) Crawl(ctx context.Context, startURL string, yield func(*docscout.CrawledPage) bool) error {
	return e.CrawlFn(ctx, startURL, yield)
}

// Observer is a mock implementation of docscout.Observer.
// Nil functions are no-ops.
type Observer struct {
	PageYieldedFn  func(engine docscout.EngineID)
	TierFinishedFn func(engine docscout.EngineID, pages int, outcome string)
	LinkDroppedFn  func(reason string)
}

func (o *Observer) PageYielded(engine docscout.EngineID) {
	if o.PageYieldedFn != nil {
		o.PageYieldedFn(engine)
	}
}

func (o *Observer) TierFinished(engine docscout.EngineID, pages int, outcome string) {
	if o.TierFinishedFn != nil {
		o.TierFinishedFn(engine, pages, outcome)
	}
}

func (o *Observer) LinkDropped(reason string) {
	if o.LinkDroppedFn != nil {
		o.LinkDroppedFn(reason)
	}
}
