package docscout

// HTMLDocument is the subset of a parsed HTML page the engines need.
type HTMLDocument struct {
	Title string

	// Links are absolute URLs of matching anchors in document order,
	// deduplicated. Fragments are preserved so scope filters can see them.
	Links []string
}

// HTMLParser parses HTML pages for engines.
type HTMLParser interface {
	// ParseHTML parses html, resolving anchors against baseURL.
	// Only anchors matching one of linkSelectors are collected; an empty
	// list means every a[href].
	ParseHTML(html string, baseURL string, linkSelectors []string) (*HTMLDocument, error)
}
