package docscout

import "context"

// EngineID identifies the crawl engine that produced a stream of pages.
type EngineID string

// Crawl engines in orchestrator tier order.
const (
	EngineGitHub   EngineID = "github"
	EngineBrowser  EngineID = "browser"
	EngineStatic   EngineID = "static"
	EngineFallback EngineID = "fallback"
)

// CrawledPage is one fetched unit produced by an engine.
// It is consumed by segmentation and is not persisted here.
type CrawledPage struct {
	URL        string
	Path       string
	RawContent string // HTML, or Markdown when ExtractorID is set
	Title      string

	// ExtractorID names the site rule (or engine) that produced RawContent
	// as Markdown. Empty means RawContent is raw HTML.
	ExtractorID string

	// Metadata carries extractor-specific fields such as name or description.
	Metadata map[string]string

	Depth int
}

// ProgressFunc receives crawl progress in the range 0..1 with a short
// human-readable description. Engines call it at discovery milestones.
type ProgressFunc func(progress float64, description string)

// Engine is one crawl strategy.
//
// Crawl streams pages to yield until the site is exhausted, a cap is hit,
// yield returns false, or ctx is cancelled. Cancellation is not an error:
// the engine stops at the next unit-of-work boundary and returns nil.
// A URL is never yielded twice by the same call, and yield is never called
// concurrently.
type Engine interface {
	Name() EngineID
	Crawl(ctx context.Context, startURL string, yield func(*CrawledPage) bool) error
}

// Observer receives crawl outcomes for metrics.
type Observer interface {
	PageYielded(engine EngineID)
	TierFinished(engine EngineID, pages int, outcome string)
	LinkDropped(reason string)
}
