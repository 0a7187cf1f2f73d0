package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docscout"
)

var _ docscout.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher logs every fetch. Successful fetches are logged at debug
// level and failures at warn level with their error code.
type LoggingFetcher struct {
	next   docscout.Fetcher
	logger *slog.Logger
}

func NewLoggingFetcher(next docscout.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	begin := time.Now()
	html, err := f.next.Fetch(ctx, url)
	if err != nil {
		f.logger.Warn("fetch failed",
			"url", url,
			"code", docscout.ErrorCode(err),
			"duration", time.Since(begin),
			"err", err,
		)
		return "", err
	}
	f.logger.Debug("fetch", "url", url, "bytes", len(html), "duration", time.Since(begin))
	return html, nil
}

func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
