//go:build integration

package http_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	dshttp "github.com/fwojciec/docscout/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hits the live htmx.org sitemap.
func TestSitemapService_LiveSite(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	urls, err := dshttp.NewSitemapService(nil).DiscoverURLs(ctx, "https://htmx.org/docs/")
	require.NoError(t, err)
	require.NotEmpty(t, urls)

	for _, raw := range urls {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "htmx.org", u.Host)
		assert.Contains(t, u.Path, "/docs")
	}
}
