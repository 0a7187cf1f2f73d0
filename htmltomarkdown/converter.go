// Package htmltomarkdown converts HTML fragments to Markdown for site rules
// that hand Markdown to segmentation.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/docscout"
)

var _ docscout.Converter = (*Converter)(nil)

// removedTags are interactive or decorative elements with no documentation
// value.
var removedTags = []string{"button", "svg", "nav", "form", "iframe"}

// Converter wraps html-to-markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a Converter with CommonMark, table and strikethrough
// support.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
			strikethrough.NewStrikethroughPlugin(),
		),
	)
	for _, tag := range removedTags {
		conv.Register.TagType(tag, converter.TagTypeRemove, converter.PriorityStandard)
	}
	return &Converter{conv: conv}
}

// Convert transforms an HTML fragment into Markdown with zero-width
// characters removed and blank lines collapsed outside code blocks.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", docscout.Errorf(docscout.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", docscout.Errorf(docscout.EINTERNAL, "convert HTML: %v", err)
	}

	return docscout.CleanMarkdownWhitespace(docscout.StripZeroWidth(result)), nil
}
