// Package markdown segments Markdown pages into titled components.
package markdown

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/docscout"
)

// ContentTitle names the component holding text before the first heading.
const ContentTitle = "Content"

// Heading detection limits.
const (
	maxMarkerHeadingLen = 80
	maxPlainHeadingLen  = 50
)

var (
	atxHeadingRe   = regexp.MustCompile(`^(#{1,6})\s+(.*?)(?:\s+#+)?\s*$`)
	plainHeadingRe = regexp.MustCompile(`^[A-Z][A-Za-z0-9\s\-_()]+$`)
)

// heading is a detected section header.
type heading struct {
	line  int
	level int
	title string
}

var _ docscout.Segmenter = (*Segmenter)(nil)

// Segmenter splits Markdown at its headings.
//
// Besides ATX headings it recognises two forms produced by generators that
// drop the leading '#': short lines carrying a zero-width marker, and short
// capitalised lines set apart by a blank line above and text right below.
type Segmenter struct{}

// NewSegmenter returns a Segmenter.
func NewSegmenter() *Segmenter {
	return &Segmenter{}
}

// Segment parses page.RawContent as Markdown. A front-matter title wins over
// every other title source.
func (s *Segmenter) Segment(page *docscout.CrawledPage) (*docscout.Article, error) {
	if strings.TrimSpace(page.RawContent) == "" {
		return nil, nil
	}

	content := strings.ReplaceAll(page.RawContent, "\r\n", "\n")
	var fields map[string]string
	if block, rest, ok := splitFrontMatter(content); ok {
		fields = parseFrontMatter(block)
		content = rest
	}

	lines := strings.Split(content, "\n")
	headings := findHeadings(lines)

	article := &docscout.Article{URL: page.URL, Path: page.Path}
	start := len(lines)
	if len(headings) > 0 {
		start = headings[0].line
	}
	article.Components = appendComponent(nil, ContentTitle, lines[:start])
	for i, h := range headings {
		end := len(lines)
		if i+1 < len(headings) {
			end = headings[i+1].line
		}
		article.Components = appendComponent(article.Components, h.title, lines[h.line+1:end])
	}

	article.Title = resolveTitle(page, fields, headings, article.Components)
	return article, nil
}

// resolveTitle picks the article title: front matter, then the first
// level-one heading of extractor output, then the page title, then the
// first component.
func resolveTitle(page *docscout.CrawledPage, fields map[string]string, headings []heading, components []*docscout.ArticleComponent) string {
	if title := strings.TrimSpace(fields["title"]); title != "" {
		return title
	}
	if page.ExtractorID != "" {
		for _, h := range headings {
			if h.level == 1 {
				return h.title
			}
		}
	}
	if page.Title != "" {
		return page.Title
	}
	if len(components) > 0 {
		return components[0].Title
	}
	return ""
}

func appendComponent(components []*docscout.ArticleComponent, title string, lines []string) []*docscout.ArticleComponent {
	body := docscout.CleanMarkdownWhitespace(strings.Join(lines, "\n"))
	if body == "" {
		return components
	}
	return append(components, &docscout.ArticleComponent{Title: title, Body: body})
}

// findHeadings scans lines outside fenced code blocks for headings.
func findHeadings(lines []string) []heading {
	var (
		headings []heading
		fence    string
	)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if fence != "" {
			if strings.HasPrefix(trimmed, fence) && strings.Trim(trimmed, fence[:1]) == "" {
				fence = ""
			}
			continue
		}
		if marker := fenceMarker(trimmed); marker != "" {
			fence = marker
			continue
		}
		if h, ok := detectHeading(lines, i, trimmed); ok {
			headings = append(headings, h)
		}
	}
	return headings
}

// detectHeading applies the heading rules in precedence order.
func detectHeading(lines []string, i int, trimmed string) (heading, bool) {
	if m := atxHeadingRe.FindStringSubmatch(trimmed); m != nil {
		title := strings.TrimSpace(docscout.StripZeroWidth(m[2]))
		if strings.Trim(title, "#") == "" {
			return heading{}, false
		}
		return heading{line: i, level: len(m[1]), title: title}, true
	}

	if docscout.ContainsZeroWidth(trimmed) && utf8.RuneCountInString(trimmed) < maxMarkerHeadingLen {
		if title := strings.TrimSpace(docscout.StripZeroWidth(trimmed)); title != "" {
			return heading{line: i, level: 2, title: title}, true
		}
		return heading{}, false
	}

	if utf8.RuneCountInString(trimmed) >= maxPlainHeadingLen || !plainHeadingRe.MatchString(trimmed) {
		return heading{}, false
	}
	if i > 0 && strings.TrimSpace(lines[i-1]) != "" {
		return heading{}, false
	}
	if i+1 >= len(lines) || strings.TrimSpace(lines[i+1]) == "" {
		return heading{}, false
	}
	return heading{line: i, level: 2, title: trimmed}, true
}

func fenceMarker(line string) string {
	for _, m := range []string{"```", "~~~"} {
		if strings.HasPrefix(line, m) {
			return m
		}
	}
	return ""
}
