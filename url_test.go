package docscout_test

import (
	"testing"

	"github.com/fwojciec/docscout"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"drops fragment and trailing slash", "https://x.com/a/#f", "https://x.com/a"},
		{"keeps query", "https://x.com/a/?q=1#f", "https://x.com/a?q=1"},
		{"root path", "https://x.com/", "https://x.com"},
		{"no change needed", "https://x.com/docs/page.html", "https://x.com/docs/page.html"},
		{"repeated slashes", "https://x.com/a//", "https://x.com/a"},
		{"unparsable input unchanged", "http://[::1", "http://[::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := docscout.NormalizeURL(tt.in)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, docscout.NormalizeURL(got), "normalize must be idempotent")
		})
	}
}

func TestURLPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/docs/x?q=1", docscout.URLPath("https://docs.example.com/docs/x?q=1"))
	assert.Equal(t, "/", docscout.URLPath("https://docs.example.com"))
	assert.Equal(t, "/?q=1", docscout.URLPath("https://docs.example.com?q=1"))
	assert.Equal(t, "/a", docscout.URLPath("https://docs.example.com/a#frag"))
	assert.Equal(t, "http://[::1", docscout.URLPath("http://[::1"))
}

func TestHasHTMLExtension(t *testing.T) {
	t.Parallel()

	assert.True(t, docscout.HasHTMLExtension("https://x.com/a.html"))
	assert.True(t, docscout.HasHTMLExtension("https://x.com/a.HTML"))
	assert.True(t, docscout.HasHTMLExtension("https://x.com/a.htm?x=1"))
	assert.False(t, docscout.HasHTMLExtension("https://x.com/a.png"))
	assert.False(t, docscout.HasHTMLExtension("https://x.com/docs/intro"))
	assert.False(t, docscout.HasHTMLExtension("https://x.com/"))
}

func TestHostnameAllowed(t *testing.T) {
	t.Parallel()

	assert.True(t, docscout.HostnameAllowed("docs.example.com", "docs.example.com"))
	assert.True(t, docscout.HostnameAllowed("api.docs.example.com", "docs.example.com"))
	assert.True(t, docscout.HostnameAllowed("Docs.Example.com", "docs.example.com"))
	assert.False(t, docscout.HostnameAllowed("example.com", "docs.example.com"))
	assert.False(t, docscout.HostnameAllowed("python.example.com", "docs.example.com"))
	assert.False(t, docscout.HostnameAllowed("evildocs.example.com", "docs.example.com"))
}

func TestPathAllowed(t *testing.T) {
	t.Parallel()

	assert.True(t, docscout.PathAllowed("/anything", ""))
	assert.True(t, docscout.PathAllowed("/docs", "/docs"))
	assert.True(t, docscout.PathAllowed("/docs/x", "/docs"))
	assert.True(t, docscout.PathAllowed("/docs/x", "/docs/"))
	assert.False(t, docscout.PathAllowed("/docsearch", "/docs"))
	assert.False(t, docscout.PathAllowed("/blog/x", "/docs"))
}
