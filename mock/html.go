package mock

import "github.com/fwojciec/docscout"

// Compile-time interface verification.
var (
	_ docscout.HTMLParser = (*HTMLParser)(nil)
	_ docscout.Segmenter  = (*Segmenter)(nil)
)

// HTMLParser is a mock implementation of docscout.HTMLParser.
type HTMLParser struct {
	ParseHTMLFn func(html string, baseURL string, linkSelectors []string) (*docscout.HTMLDocument, error)
}

func (p *HTMLParser) ParseHTML(html string, baseURL string, linkSelectors []string) (*docscout.HTMLDocument, error) {
	return p.ParseHTMLFn(html, baseURL, linkSelectors)
}

// Segmenter is a mock implementation of docscout.Segmenter.
type Segmenter struct {
	SegmentFn func(page *docscout.CrawledPage) (*docscout.Article, error)
}

func (s *Segmenter) Segment(page *docscout.CrawledPage) (*docscout.Article, error) {
	return s.SegmentFn(page)
}
