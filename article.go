package docscout

import "context"

// ArticleComponent is one titled section of extracted content.
// Body is never empty: segmenters drop components without content.
type ArticleComponent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Article is the segmented form of one crawled page.
type Article struct {
	URL        string              `json:"url"`
	Path       string              `json:"path"`
	Title      string              `json:"title"`
	Components []*ArticleComponent `json:"components"`
}

// Segmenter turns a crawled page into an Article.
//
// Malformed input never fails: it only produces coarser components.
// Segment returns a nil Article when the page content is empty or
// whitespace-only.
type Segmenter interface {
	Segment(page *CrawledPage) (*Article, error)
}

// ArticleStore persists the articles of one crawl with all-or-nothing
// semantics: saved articles become visible only on Commit.
type ArticleStore interface {
	Save(ctx context.Context, article *Article) error

	// Commit publishes every saved article, replacing a previous crawl.
	Commit() error

	// Abort discards every saved article.
	Abort() error
}
