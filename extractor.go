package docscout

// ExtractResult is the main content of a whole document.
type ExtractResult struct {
	Title string

	// ContentHTML is the content block with navigation, footers and
	// sidebars removed.
	ContentHTML string

	TextContent string
}

// Extractor pulls the main content out of a whole HTML document. The HTML
// segmenter falls back to it when a page has no recognizable content element.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Converter renders HTML as Markdown.
type Converter interface {
	Convert(html string) (string, error)
}
