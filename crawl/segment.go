package crawl

import (
	"path"
	"strings"

	"github.com/fwojciec/docscout"
)

var _ docscout.Segmenter = (*Segmenter)(nil)

// Segmenter routes each crawled page to the segmenter for its content type.
// Pages produced by an extractor, and pages whose path names a Markdown
// file, go to Markdown; everything else is treated as HTML.
type Segmenter struct {
	HTML     docscout.Segmenter
	Markdown docscout.Segmenter
}

// Segment segments page with the matching segmenter.
func (s *Segmenter) Segment(page *docscout.CrawledPage) (*docscout.Article, error) {
	if IsMarkdownPage(page) {
		return s.Markdown.Segment(page)
	}
	return s.HTML.Segment(page)
}

// IsMarkdownPage reports whether page carries Markdown content.
func IsMarkdownPage(page *docscout.CrawledPage) bool {
	if page.ExtractorID != "" {
		return true
	}
	p := page.Path
	if p == "" {
		p = docscout.URLPath(page.URL)
	}
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".md", ".mdx", ".markdown":
		return true
	}
	return false
}
