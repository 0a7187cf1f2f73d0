// Package fs provides file-based storage for segmented articles.
package fs

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docscout"
)

// URLToPath converts an article URL to a relative file path.
// Example: https://example.com/docs/api/users → docs/api/users.md
//
// Pages that differ only by query (Storybook serves every story from "/")
// get a short hash of the query appended so they do not collide.
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	p := u.Path
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", docscout.Errorf(docscout.EINVALID, "path traversal in URL: %s", rawURL)
		}
	}

	// Handle root or trailing slash → index
	p = strings.TrimPrefix(p, "/")
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index"
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".html", ".htm", ".md", ".mdx", ".markdown":
		p = strings.TrimSuffix(p, path.Ext(p))
	}

	if u.RawQuery != "" {
		p += fmt.Sprintf("-%08x", uint32(xxhash.Sum64String(u.RawQuery)))
	}
	return p + ".md", nil
}

// FormatArticle formats an article as Markdown with YAML frontmatter.
// Each component becomes a second-level section.
func FormatArticle(article *docscout.Article) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(article.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(quoteYAML(article.Title))
	b.WriteString("\n---\n")
	for _, c := range article.Components {
		b.WriteString("\n## ")
		b.WriteString(c.Title)
		b.WriteString("\n\n")
		b.WriteString(c.Body)
		b.WriteString("\n")
	}
	return b.String()
}

// quoteYAML quotes s when it would not survive as a plain YAML scalar.
func quoteYAML(s string) string {
	if s == "" || strings.ContainsAny(s, ":#\"'{}[]&*!|>%@`") || strings.TrimSpace(s) != s {
		return fmt.Sprintf("%q", s)
	}
	return s
}
