package goquery

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docscout"
)

// GitHubPagesType identifies the GitHub Pages rule.
const GitHubPagesType = "github-pages"

var githubPagesMarkers = []string{
	".markdown-body",
	".page-header",
	".main-content",
	"#main_content",
	"meta[name='generator'][content*='Jekyll']",
}

var githubPagesContent = []string{"main", "article", ".markdown-body", ".main-content", "#main_content"}

var _ docscout.SiteRule = (*GitHubPagesRule)(nil)

// GitHubPagesRule handles Jekyll-rendered project sites hosted on github.io.
// Content is rendered to Markdown-style text, one heading per section.
type GitHubPagesRule struct{}

// Type returns GitHubPagesType.
func (r *GitHubPagesRule) Type() string { return GitHubPagesType }

// Markdown reports true.
func (r *GitHubPagesRule) Markdown() bool { return true }

// LinkSelectors returns anchors inside the page body and its navigation.
func (r *GitHubPagesRule) LinkSelectors() []string {
	return []string{"main a[href]", "article a[href]", ".markdown-body a[href]", "nav a[href]", ".page-header a[href]"}
}

// Prepare does nothing; GitHub Pages sites are static.
func (r *GitHubPagesRule) Prepare(context.Context, docscout.Page) {}

func isGitHubPagesHost(host string) bool {
	host = strings.ToLower(host)
	return host == "github.io" || strings.HasSuffix(host, ".github.io")
}

// Detect requires a github.io host and a Pages layout marker.
func (r *GitHubPagesRule) Detect(_ context.Context, page docscout.Page, html string) bool {
	if page == nil {
		return false
	}
	u, err := url.Parse(page.URL())
	if err != nil || !isGitHubPagesHost(u.Hostname()) {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	for _, m := range githubPagesMarkers {
		if doc.Find(m).Length() > 0 {
			return true
		}
	}
	return false
}

// ExtractContent returns the page body as headed text blocks. Metadata
// carries the first h1 as name and the paragraph right after it as
// description.
func (r *GitHubPagesRule) ExtractContent(html string, _ string) (*docscout.Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docscout.Errorf(docscout.EINVALID, "failed to parse HTML: %v", err)
	}
	doc.Find("nav, header, footer").Remove()

	content := doc.Find("body")
	for _, sel := range githubPagesContent {
		if c := doc.Find(sel).First(); c.Length() > 0 {
			content = c
			break
		}
	}
	content.Find("script, style").Remove()

	meta := make(map[string]string)
	h1 := content.Find("h1").First()
	if name := collapse(h1.Text()); name != "" {
		meta["name"] = name
	}
	if desc := collapse(h1.NextFiltered("p").Text()); desc != "" {
		meta["description"] = desc
	}

	headings := findHeadings(content)
	var b strings.Builder
	for _, n := range content.Nodes {
		for i, s := range newRenderer(headings).render(n) {
			switch {
			case s.title == "":
			case i == 1 && s.title == meta["name"]:
				b.WriteString("# " + s.title + "\n\n")
			default:
				b.WriteString("## " + s.title + "\n\n")
			}
			for _, block := range s.blocks {
				b.WriteString(block + "\n\n")
			}
		}
	}
	return &docscout.Extraction{
		Content:  docscout.CleanMarkdownWhitespace(b.String()),
		Metadata: meta,
	}, nil
}
