// Package trafilatura extracts the main content of whole HTML documents
// using go-trafilatura. It is the alternative to readability for the HTML
// segmenter's whole-document fallback.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/docscout"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ docscout.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura.
type Extractor struct {
	// Tables keeps table content in the output.
	Tables bool
}

// NewExtractor creates an Extractor that keeps tables.
func NewExtractor() *Extractor {
	return &Extractor{Tables: true}
}

// Extract returns the title, content HTML and plain text of rawHTML.
// Comment sections are excluded.
func (e *Extractor) Extract(rawHTML string) (*docscout.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docscout.Errorf(docscout.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		ExcludeTables:   !e.Tables,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, docscout.Errorf(docscout.EINTERNAL, "trafilatura: %v", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &docscout.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		ContentHTML: contentHTML,
		TextContent: docscout.CleanWhitespace(docscout.StripZeroWidth(result.ContentText)),
	}, nil
}

func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
