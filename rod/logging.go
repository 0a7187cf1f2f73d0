package rod

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docscout"
)

// Ensure LoggingBrowser implements docscout.Browser.
var _ docscout.Browser = (*LoggingBrowser)(nil)

// LoggingBrowser wraps a Browser with debug logging of page opens.
type LoggingBrowser struct {
	next   docscout.Browser
	logger *slog.Logger
}

// NewLoggingBrowser creates a new LoggingBrowser.
func NewLoggingBrowser(next docscout.Browser, logger *slog.Logger) *LoggingBrowser {
	return &LoggingBrowser{next: next, logger: logger}
}

// Open logs the URL being opened and delegates to the wrapped browser.
func (b *LoggingBrowser) Open(ctx context.Context, url string) (page docscout.Page, err error) {
	defer func(begin time.Time) {
		b.logger.Debug("open",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.Open(ctx, url)
}

// Close delegates to the wrapped browser.
func (b *LoggingBrowser) Close() error {
	return b.next.Close()
}
