package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docscout"
)

var _ docscout.FrameworkDetector = (*Detector)(nil)

// frameworkMarker lists selectors unique to one documentation generator.
// Any single match identifies the framework.
type frameworkMarker struct {
	framework docscout.Framework
	selectors []string
}

// frameworkMarkers are checked in order. VitePress comes before VuePress
// because it is VuePress's successor and shares some of its markers.
var frameworkMarkers = []frameworkMarker{
	{docscout.FrameworkDocusaurus, []string{
		"#__docusaurus_skipToContent_fallback",
		".theme-doc-sidebar-container",
		"[data-rh][data-theme], html[data-theme] [data-rh]",
	}},
	{docscout.FrameworkMkDocs, []string{
		"[data-md-color-scheme]",
		"[data-md-component]",
		".md-nav--primary",
	}},
	{docscout.FrameworkSphinx, []string{
		".toctree-wrapper",
		".wy-nav-side",
		".wy-menu-vertical",
		".sphinxsidebar",
	}},
	{docscout.FrameworkVitePress, []string{
		"#VPContent",
		".VPDoc",
		".VPDocAsideOutline",
	}},
	{docscout.FrameworkVuePress, []string{
		".theme-default-content",
		".sidebar-links",
		".vuepress-navbar",
	}},
	{docscout.FrameworkGitBook, []string{
		"[data-testid='space.sidebar']",
		"[data-testid='page.desktopTableOfContents']",
	}},
	{docscout.FrameworkNextra, []string{
		".nextra-navbar",
		".nextra-sidebar",
		".nextra-toc",
	}},
}

// generatorNames maps meta generator substrings to frameworks.
// vitepress must precede vuepress.
var generatorNames = []struct {
	name      string
	framework docscout.Framework
}{
	{"sphinx", docscout.FrameworkSphinx},
	{"gitbook", docscout.FrameworkGitBook},
	{"docusaurus", docscout.FrameworkDocusaurus},
	{"mkdocs", docscout.FrameworkMkDocs},
	{"vitepress", docscout.FrameworkVitePress},
	{"vuepress", docscout.FrameworkVuePress},
	{"nextra", docscout.FrameworkNextra},
}

// Detector identifies documentation frameworks from HTML content.
// It checks for framework-specific CSS classes, data attributes, meta tags,
// and structural markers that are unique to each documentation generator.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect analyzes HTML and returns the identified framework.
// Returns FrameworkUnknown if the framework cannot be determined.
func (d *Detector) Detect(html string) docscout.Framework {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return docscout.FrameworkUnknown
	}
	return d.DetectDocument(doc)
}

// DetectDocument is Detect for an already parsed document.
func (d *Detector) DetectDocument(doc *goquery.Document) docscout.Framework {
	// Meta generator tags first - most reliable when present
	if framework := frameworkFromGenerator(doc); framework != docscout.FrameworkUnknown {
		return framework
	}

	for _, m := range frameworkMarkers {
		for _, sel := range m.selectors {
			if doc.Find(sel).Length() > 0 {
				return m.framework
			}
		}
		if m.framework == docscout.FrameworkGitBook && hasGitBookClasses(doc) {
			return m.framework
		}
	}

	return docscout.FrameworkUnknown
}

func frameworkFromGenerator(doc *goquery.Document) docscout.Framework {
	generator := strings.ToLower(doc.Find("meta[name='generator']").Last().AttrOr("content", ""))
	if generator == "" {
		return docscout.FrameworkUnknown
	}
	for _, g := range generatorNames {
		if strings.Contains(generator, g.name) {
			return g.framework
		}
	}
	return docscout.FrameworkUnknown
}

// hasGitBookClasses reports whether the html element carries at least two of
// GitBook's distinctive classes: circular-corners, theme-clean, tint.
func hasGitBookClasses(doc *goquery.Document) bool {
	class := doc.Find("html").AttrOr("class", "")
	var count int
	for _, c := range []string{"circular-corners", "theme-clean", "tint"} {
		if strings.Contains(class, c) {
			count++
		}
	}
	return count >= 2
}
