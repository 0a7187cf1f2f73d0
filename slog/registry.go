package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docscout"
)

// Ensure LoggingRegistry implements docscout.SiteRegistry.
var _ docscout.SiteRegistry = (*LoggingRegistry)(nil)

// LoggingRegistry wraps a SiteRegistry with debug logging of site detection.
type LoggingRegistry struct {
	next   docscout.SiteRegistry
	logger *slog.Logger
}

// NewLoggingRegistry creates a new LoggingRegistry.
func NewLoggingRegistry(next docscout.SiteRegistry, logger *slog.Logger) *LoggingRegistry {
	return &LoggingRegistry{next: next, logger: logger}
}

// Match delegates to the wrapped registry and logs the chosen rule.
func (r *LoggingRegistry) Match(ctx context.Context, page docscout.Page, html string) docscout.SiteRule {
	begin := time.Now()
	rule := r.next.Match(ctx, page, html)
	r.logger.Debug("site detection",
		"url", page.URL(),
		"rule", rule.Type(),
		"duration", time.Since(begin),
	)
	return rule
}
