// Package readability extracts the main content of whole HTML documents
// using go-readability. It backs the HTML segmenter when a page has no
// recognizable content element.
package readability

import (
	"strings"

	"github.com/fwojciec/docscout"
	"github.com/go-shiori/go-readability"
)

var _ docscout.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the title, content HTML and cleaned plain text of rawHTML.
func (e *Extractor) Extract(rawHTML string) (*docscout.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docscout.Errorf(docscout.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, docscout.Errorf(docscout.EINTERNAL, "readability: %v", err)
	}

	return &docscout.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: article.Content,
		TextContent: docscout.CleanWhitespace(docscout.StripZeroWidth(article.TextContent)),
	}, nil
}
