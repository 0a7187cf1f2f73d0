package crawl_test

import (
	"testing"

	"github.com/fwojciec/docscout"
	"github.com/fwojciec/docscout/crawl"
	"github.com/fwojciec/docscout/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmenter(t *testing.T) {
	t.Parallel()

	s := &crawl.Segmenter{
		HTML: &mock.Segmenter{SegmentFn: func(p *docscout.CrawledPage) (*docscout.Article, error) {
			return &docscout.Article{URL: p.URL, Title: "html"}, nil
		}},
		Markdown: &mock.Segmenter{SegmentFn: func(p *docscout.CrawledPage) (*docscout.Article, error) {
			return &docscout.Article{URL: p.URL, Title: "markdown"}, nil
		}},
	}

	tests := []struct {
		name string
		page *docscout.CrawledPage
		want string
	}{
		{"extractor output is markdown", &docscout.CrawledPage{URL: "https://x.com/?path=/docs/a", ExtractorID: "storybook"}, "markdown"},
		{"md files are markdown", &docscout.CrawledPage{URL: "https://x.com/docs/README.md"}, "markdown"},
		{"mdx files are markdown", &docscout.CrawledPage{URL: "https://x.com/a.MDX", Path: "/a.MDX"}, "markdown"},
		{"markdown with query is markdown", &docscout.CrawledPage{URL: "https://x.com/a.markdown?raw=1"}, "markdown"},
		{"html pages are html", &docscout.CrawledPage{URL: "https://x.com/a.html"}, "html"},
		{"extensionless pages are html", &docscout.CrawledPage{URL: "https://x.com/docs/intro"}, "html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			article, err := s.Segment(tt.page)

			require.NoError(t, err)
			assert.Equal(t, tt.want, article.Title)
		})
	}
}
