package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docscout"
)

var _ docscout.HTMLParser = (*Parser)(nil)

// Parser implements docscout.HTMLParser with goquery.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseHTML parses html and collects the title and the absolute URLs of
// anchors matching linkSelectors (every a[href] when empty). Links keep
// document order, are deduplicated and keep their fragments.
func (p *Parser) ParseHTML(html string, baseURL string, linkSelectors []string) (*docscout.HTMLDocument, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, docscout.Errorf(docscout.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docscout.Errorf(docscout.EINVALID, "failed to parse HTML: %v", err)
	}

	return &docscout.HTMLDocument{
		Title: documentTitle(doc),
		Links: collectLinks(doc.Selection, base, linkSelectors),
	}, nil
}

// documentTitle returns the trimmed <title> text.
func documentTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// collectLinks resolves the href of every anchor matching selectors below
// root. The selectors are combined into one query so matches come back in
// document order.
func collectLinks(root *goquery.Selection, base *url.URL, selectors []string) []string {
	query := "a[href]"
	if len(selectors) > 0 {
		query = strings.Join(selectors, ", ")
	}

	seen := make(map[string]struct{})
	var links []string
	root.Find(query).Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" {
			return
		}

		// Skip non-HTTP links (javascript:, mailto:, etc.)
		if isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" {
			return
		}
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)
	})
	return links
}

// resolveURL resolves href against base. Returns an empty string for
// unparsable hrefs and for non-HTTP results.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
