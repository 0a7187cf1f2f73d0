package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docscout"
)

// Ensure LoggingEngine implements docscout.Engine.
var _ docscout.Engine = (*LoggingEngine)(nil)

// LoggingEngine wraps an Engine and logs each crawl with its page count.
// Errors are returned unchanged.
type LoggingEngine struct {
	next   docscout.Engine
	logger *slog.Logger
}

// NewLoggingEngine creates a new LoggingEngine.
func NewLoggingEngine(next docscout.Engine, logger *slog.Logger) *LoggingEngine {
	return &LoggingEngine{next: next, logger: logger}
}

// Name returns the wrapped engine's id.
func (e *LoggingEngine) Name() docscout.EngineID {
	return e.next.Name()
}

// Crawl delegates to the wrapped engine, counting yielded pages.
func (e *LoggingEngine) Crawl(ctx context.Context, startURL string, yield func(*docscout.CrawledPage) bool) (err error) {
	var pages int
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelWarn
		}
		e.logger.Log(ctx, level, "crawl",
			"engine", string(e.next.Name()),
			"url", startURL,
			"pages", pages,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Crawl(ctx, startURL, func(p *docscout.CrawledPage) bool {
		pages++
		e.logger.Debug("page", "engine", string(e.next.Name()), "url", p.URL, "extractor", p.ExtractorID)
		return yield(p)
	})
}
