package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docscout"
	"golang.org/x/net/html"
)

var _ docscout.Segmenter = (*Segmenter)(nil)

// IntroductionTitle names the component holding content before the first
// heading.
const IntroductionTitle = "Introduction"

// contentCandidates are the main-content selectors, grouped by preference.
// The first group with a non-empty match wins; within a group the element
// with the longest text is chosen.
var contentCandidates = [][]string{
	// Documentation frameworks
	{
		".theme-doc-markdown", ".markdown", ".md-content", ".rst-content",
		".VPDoc", ".vp-doc", ".theme-default-content", ".nextra-content",
		".sbdocs-content", ".sbdocs", ".markdown-body", ".documentation-content",
	},
	// Landmarks and application roots
	{"main", "[role=main]", "#root", "#app", "#__next", "#__nuxt"},
	// Generic content containers
	{".content", "#content", ".main-content", "article", ".post-content", ".page-content"},
}

// headingSelector matches heading-like elements, including the classes
// Storybook docs use instead of heading tags.
const headingSelector = "h1, h2, h3, h4, .sbdocs-title, .sbdocs-h1, .sbdocs-h2, .sbdocs-h3, [role=heading]"

// Segmenter splits HTML pages into titled components at their headings.
type Segmenter struct {
	// Extractor handles pages without a recognizable content element.
	Extractor docscout.Extractor
}

// NewSegmenter creates a Segmenter that falls back to extractor.
func NewSegmenter(extractor docscout.Extractor) *Segmenter {
	return &Segmenter{Extractor: extractor}
}

// Segment locates the page's main content and splits it at headings.
// Pages without a content element become a single component extracted from
// the whole document. Malformed HTML never fails; it only yields coarser
// components.
func (s *Segmenter) Segment(page *docscout.CrawledPage) (*docscout.Article, error) {
	if strings.TrimSpace(page.RawContent) == "" {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.RawContent))
	if err != nil {
		return s.fallback(page, nil), nil
	}

	title := page.Title
	if title == "" {
		title = documentTitle(doc)
	}

	content := findContent(doc)
	if content == nil {
		return s.fallback(page, doc), nil
	}

	article := &docscout.Article{URL: page.URL, Path: page.Path, Title: title}
	headings := findHeadings(content)
	if len(headings) == 0 {
		componentTitle := title
		if componentTitle == "" {
			componentTitle = IntroductionTitle
		}
		article.Components = appendComponent(nil, componentTitle, renderText(content))
		return article, nil
	}

	for _, sec := range newRenderer(headings).render(content.Get(0)) {
		sectionTitle := sec.title
		if sectionTitle == "" {
			sectionTitle = IntroductionTitle
		}
		article.Components = appendComponent(article.Components, sectionTitle, strings.Join(sec.blocks, "\n\n"))
	}
	if article.Title == "" && len(article.Components) > 0 {
		article.Title = article.Components[0].Title
	}
	return article, nil
}

// fallback builds a one-component article from whole-document extraction.
// doc may be nil when the page could not be parsed.
func (s *Segmenter) fallback(page *docscout.CrawledPage, doc *goquery.Document) *docscout.Article {
	title := page.Title
	var body string

	if s.Extractor != nil {
		if res, err := s.Extractor.Extract(page.RawContent); err == nil {
			if title == "" {
				title = strings.TrimSpace(res.Title)
			}
			body = res.TextContent
			if strings.TrimSpace(body) == "" && res.ContentHTML != "" {
				if d, err := goquery.NewDocumentFromReader(strings.NewReader(res.ContentHTML)); err == nil {
					body = renderText(d.Selection)
				}
			}
		}
	}
	if strings.TrimSpace(body) == "" && doc != nil {
		body = renderText(doc.Find("body"))
	}
	if title == "" && doc != nil {
		title = documentTitle(doc)
	}
	if title == "" {
		title = IntroductionTitle
	}

	return &docscout.Article{
		URL:        page.URL,
		Path:       page.Path,
		Title:      title,
		Components: appendComponent(nil, title, body),
	}
}

// findContent returns the main-content element or nil.
func findContent(doc *goquery.Document) *goquery.Selection {
	for _, group := range contentCandidates {
		var best *goquery.Selection
		var bestLen int
		doc.Find(strings.Join(group, ", ")).Each(func(_ int, sel *goquery.Selection) {
			n := len(strings.TrimSpace(sel.Text()))
			if n > bestLen {
				best, bestLen = sel, n
			}
		})
		if best != nil {
			return best
		}
	}
	return nil
}

// findHeadings returns the heading-like elements of content that have text.
// Headings nested inside another heading count once.
func findHeadings(content *goquery.Selection) map[*html.Node]bool {
	headings := make(map[*html.Node]bool)
	content.Find(headingSelector).Each(func(_ int, sel *goquery.Selection) {
		if nodeText(sel.Get(0)) == "" {
			return
		}
		if sel.ParentsFiltered(headingSelector).Length() > 0 {
			return
		}
		headings[sel.Get(0)] = true
	})
	return headings
}

// appendComponent appends a component with the cleaned body, dropping it
// when the body is empty.
func appendComponent(components []*docscout.ArticleComponent, title, body string) []*docscout.ArticleComponent {
	body = docscout.CleanMarkdownWhitespace(body)
	if body == "" {
		return components
	}
	return append(components, &docscout.ArticleComponent{Title: title, Body: body})
}
