package slog_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/docscout/mock"
	dsslog "github.com/fwojciec/docscout/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sitemapReturning(urls []string, err error) *mock.SitemapService {
	return &mock.SitemapService{
		DiscoverURLsFn: func(context.Context, string) ([]string, error) { return urls, err },
	}
}

func TestLoggingSitemapService_DiscoverURLs(t *testing.T) {
	t.Parallel()

	t.Run("logs the number of seed URLs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		svc := dsslog.NewLoggingSitemapService(
			sitemapReturning([]string{"https://example.com/a", "https://example.com/b"}, nil),
			debugLogger(&buf),
		)

		urls, err := svc.DiscoverURLs(context.Background(), "https://example.com")

		require.NoError(t, err)
		assert.Len(t, urls, 2)
		assert.Contains(t, buf.String(), "base=https://example.com")
		assert.Contains(t, buf.String(), "urls=2")
	})

	t.Run("notes an empty sitemap", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		svc := dsslog.NewLoggingSitemapService(sitemapReturning(nil, nil), debugLogger(&buf))

		_, err := svc.DiscoverURLs(context.Background(), "https://example.com")

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "sitemap empty")
	})

	t.Run("logs and returns lookup errors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		svc := dsslog.NewLoggingSitemapService(sitemapReturning(nil, errors.New("dial tcp: refused")), debugLogger(&buf))

		_, err := svc.DiscoverURLs(context.Background(), "https://example.com")

		require.EqualError(t, err, "dial tcp: refused")
		assert.Contains(t, buf.String(), "sitemap unavailable")
		assert.Contains(t, buf.String(), `err="dial tcp: refused"`)
	})
}
