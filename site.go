package docscout

import "context"

// Extraction is the result of a site rule's content extraction.
type Extraction struct {
	// Content is Markdown for rules that convert the page, or the raw HTML
	// when the rule delegates to HTML segmentation.
	Content  string
	Metadata map[string]string
}

// SiteRule binds a site detector to optional page preparation, the anchors
// used for link discovery, and a content extractor.
type SiteRule interface {
	// Type identifies the rule, e.g. "storybook". It becomes the page's
	// ExtractorID when the rule produces Markdown.
	Type() string

	// Detect reports whether the rule applies to the page.
	// html is the page DOM at detection time.
	Detect(ctx context.Context, page Page, html string) bool

	// Prepare manipulates the page before content is harvested.
	// It is best-effort and never fails.
	Prepare(ctx context.Context, page Page)

	// LinkSelectors returns CSS selectors for anchors to follow.
	LinkSelectors() []string

	// Markdown reports whether ExtractContent returns Markdown rather than
	// the raw HTML.
	Markdown() bool

	// ExtractContent extracts the page content from its HTML.
	ExtractContent(html string, pageURL string) (*Extraction, error)
}

// SiteRegistry is an ordered list of site rules. Match returns the first rule
// that detects the page; the final rule always matches.
type SiteRegistry interface {
	Match(ctx context.Context, page Page, html string) SiteRule
}
