package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/docscout"
	"github.com/fwojciec/docscout/crawl"
	"github.com/fwojciec/docscout/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBrowser serves pages of a fakeSite. Opening a URL listed in failing
// returns err.
func fakeBrowser(site fakeSite, err error, failing ...string) *mock.Browser {
	return &mock.Browser{
		OpenFn: func(_ context.Context, url string) (docscout.Page, error) {
			for _, f := range failing {
				if f == url {
					return nil, err
				}
			}
			return &mock.Page{
				URLFn:   func() string { return url },
				HTMLFn:  func(context.Context) (string, error) { return "<html>" + url + "</html>", nil },
				CloseFn: func() error { return nil },
			}, nil
		},
		CloseFn: func() error { return nil },
	}
}

func staticRule(typ string, markdown bool, prepared *[]string) *mock.SiteRule {
	return &mock.SiteRule{
		TypeFn: func() string { return typ },
		PrepareFn: func(_ context.Context, page docscout.Page) {
			if prepared != nil {
				*prepared = append(*prepared, page.URL())
			}
		},
		LinkSelectorsFn: func() []string { return []string{"nav a"} },
		MarkdownFn:      func() bool { return markdown },
		ExtractContentFn: func(html string, pageURL string) (*docscout.Extraction, error) {
			if markdown {
				return &docscout.Extraction{
					Content:  "# " + pageURL,
					Metadata: map[string]string{"name": "Name of " + pageURL},
				}, nil
			}
			return &docscout.Extraction{Content: html}, nil
		},
	}
}

func registryOf(rule docscout.SiteRule) *mock.SiteRegistry {
	return &mock.SiteRegistry{
		MatchFn: func(context.Context, docscout.Page, string) docscout.SiteRule { return rule },
	}
}

func TestBrowserEngine_Crawl(t *testing.T) {
	t.Parallel()

	site := fakeSite{
		"https://ui.example.com/docs": {
			"https://ui.example.com/docs/button",
			"https://ui.example.com/docs/button#props",
			"https://ui.example.com/docs/input?tab=api",
			"https://ui.example.com/blog/news",
			"https://cdn.example.com/docs/asset",
		},
		"https://ui.example.com/docs/button":        {"https://ui.example.com/docs"},
		"https://ui.example.com/docs/input?tab=api": nil,
	}

	t.Run("visits scoped links and harvests results", func(t *testing.T) {
		t.Parallel()

		var prepared []string
		var selectors [][]string
		parser := site.parser()
		parse := parser.ParseHTMLFn
		parser.ParseHTMLFn = func(html, baseURL string, linkSelectors []string) (*docscout.HTMLDocument, error) {
			selectors = append(selectors, linkSelectors)
			return parse(html, baseURL, linkSelectors)
		}
		store := crawl.NewMemoryStore()
		e := &crawl.BrowserEngine{
			Browser:    fakeBrowser(site, nil),
			Sites:      registryOf(staticRule("default", false, &prepared)),
			Parser:     parser,
			Store:      store,
			PathPrefix: "/docs",
		}

		pages := collect(t, e, "https://ui.example.com/docs/")

		assert.Equal(t, []string{
			"https://ui.example.com/docs",
			"https://ui.example.com/docs/button",
			"https://ui.example.com/docs/input?tab=api",
		}, urls(pages))
		assert.Equal(t, urls(pages), prepared, "every page is prepared")
		assert.Equal(t, []string{"nav a"}, selectors[0])
		assert.Equal(t, "<html>https://ui.example.com/docs</html>", pages[0].RawContent)
		assert.Empty(t, pages[0].ExtractorID)
		assert.Equal(t, "/docs/input?tab=api", pages[2].Path)
		assert.Equal(t, 1, pages[2].Depth)

		sink, err := store.OpenSink(context.Background(), crawl.JobID("https://ui.example.com/docs/"))
		require.NoError(t, err)
		assert.Len(t, sink.(*crawl.MemorySink).Pages(), 3, "remaining results are flushed at the end")
	})

	t.Run("markdown rules set the extractor id and title", func(t *testing.T) {
		t.Parallel()

		e := &crawl.BrowserEngine{
			Browser: fakeBrowser(site, nil),
			Sites:   registryOf(staticRule("storybook", true, nil)),
			Parser:  site.parser(),
			Policy:  crawl.Policy{MaxPages: 1},
		}

		pages := collect(t, e, "https://ui.example.com/docs")

		require.Len(t, pages, 1)
		assert.Equal(t, "storybook", pages[0].ExtractorID)
		assert.Equal(t, "# https://ui.example.com/docs", pages[0].RawContent)
		assert.Equal(t, "Name of https://ui.example.com/docs", pages[0].Title)
	})

	t.Run("skips pages that fail to open", func(t *testing.T) {
		t.Parallel()

		e := &crawl.BrowserEngine{
			Browser: fakeBrowser(site, errors.New("navigation timeout"), "https://ui.example.com/docs/button"),
			Sites:   registryOf(staticRule("default", false, nil)),
			Parser:  site.parser(),
			Policy:  crawl.Policy{RetryDelays: []time.Duration{time.Millisecond}},
		}

		pages := collect(t, e, "https://ui.example.com/docs")

		assert.Equal(t, []string{
			"https://ui.example.com/docs",
			"https://ui.example.com/docs/input?tab=api",
		}, urls(pages))
	})

	t.Run("returns fatal browser errors without retrying", func(t *testing.T) {
		t.Parallel()

		var opens int
		fatal := docscout.Errorf(docscout.EFATAL, "browser unreachable")
		e := &crawl.BrowserEngine{
			Browser: &mock.Browser{OpenFn: func(context.Context, string) (docscout.Page, error) {
				opens++
				return nil, fatal
			}},
			Sites:  registryOf(staticRule("default", false, nil)),
			Parser: site.parser(),
		}

		err := e.Crawl(context.Background(), "https://ui.example.com/docs", func(*docscout.CrawledPage) bool { return true })

		assert.Equal(t, docscout.EFATAL, docscout.ErrorCode(err))
		assert.Equal(t, 1, opens)
	})

	t.Run("returns nil once the context is cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		e := &crawl.BrowserEngine{
			Browser: fakeBrowser(site, nil),
			Sites:   registryOf(staticRule("default", false, nil)),
			Parser:  site.parser(),
		}

		var n int
		err := e.Crawl(ctx, "https://ui.example.com/docs", func(*docscout.CrawledPage) bool {
			n++
			cancel()
			return true
		})

		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("counts dropped links through the observer", func(t *testing.T) {
		t.Parallel()

		dropped := map[string]int{}
		e := &crawl.BrowserEngine{
			Browser:    fakeBrowser(site, nil),
			Sites:      registryOf(staticRule("default", false, nil)),
			Parser:     site.parser(),
			PathPrefix: "/docs",
			Observer:   &mock.Observer{LinkDroppedFn: func(reason string) { dropped[reason]++ }},
		}

		collect(t, e, "https://ui.example.com/docs")

		assert.Equal(t, map[string]int{
			crawl.DropFragment: 1,
			crawl.DropPath:     1,
			crawl.DropHostname: 1,
		}, dropped)
	})
}
