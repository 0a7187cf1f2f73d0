// Package slog decorates docscout services with log/slog logging.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docscout"
)

var _ docscout.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService logs how many seed URLs each sitemap lookup found.
// A failed lookup only costs the static engine its seeds, so it is logged at
// info level.
type LoggingSitemapService struct {
	next   docscout.SitemapService
	logger *slog.Logger
}

func NewLoggingSitemapService(next docscout.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	begin := time.Now()
	urls, err := s.next.DiscoverURLs(ctx, baseURL)
	attrs := []any{"base", baseURL, "urls", len(urls), "duration", time.Since(begin)}
	switch {
	case err != nil:
		s.logger.Info("sitemap unavailable", append(attrs, "err", err)...)
	case len(urls) == 0:
		s.logger.Info("sitemap empty", attrs...)
	default:
		s.logger.Debug("sitemap", attrs...)
	}
	return urls, err
}
