package goquery

import (
	"context"

	"github.com/fwojciec/docscout"
)

// DefaultType identifies the catch-all rule.
const DefaultType = "default"

// frameworkLinkSelectors lists the navigation, table-of-contents and content
// anchors of each framework, most specific first.
var frameworkLinkSelectors = map[docscout.Framework][]string{
	docscout.FrameworkDocusaurus: {
		".table-of-contents a[href]",
		".theme-doc-sidebar-container a[href]",
		"nav.navbar a[href]",
		"article a[href]",
		"main a[href]",
	},
	docscout.FrameworkMkDocs: {
		".md-sidebar--secondary a[href]",
		"[data-md-component='toc'] a[href]",
		".md-nav--primary a[href]",
		"[data-md-component='navigation'] a[href]",
		".md-content a[href]",
		"article a[href]",
	},
	docscout.FrameworkSphinx: {
		".toctree-wrapper a[href]",
		"#localtoc a[href]",
		".wy-nav-side a[href]",
		".wy-menu-vertical a[href]",
		".sphinxsidebar a[href]",
		".document a[href]",
		".body a[href]",
		"article a[href]",
	},
	docscout.FrameworkVitePress: {
		".VPDocAsideOutline a[href]",
		".VPSidebar a[href]",
		".VPNav a[href]",
		".VPDoc a[href]",
		"main a[href]",
	},
	docscout.FrameworkVuePress: {
		".sidebar-links a[href]",
		".sidebar a[href]",
		".theme-default-content a[href]",
		"main a[href]",
	},
	docscout.FrameworkGitBook: {
		"[data-testid='page.desktopTableOfContents'] a[href]",
		"[data-testid='space.sidebar'] a[href]",
		"[data-testid='space.header'] a[href]",
		"[data-testid='page.contentEditor'] a[href]",
		"main a[href]",
		"article a[href]",
	},
	docscout.FrameworkNextra: {
		".nextra-toc a[href]",
		".nextra-sidebar a[href]",
		".nextra-navbar a[href]",
		"main a[href]",
		"article a[href]",
	},
}

// Frameworks lists the frameworks that get a dedicated rule, in match order.
var Frameworks = []docscout.Framework{
	docscout.FrameworkDocusaurus,
	docscout.FrameworkMkDocs,
	docscout.FrameworkSphinx,
	docscout.FrameworkVitePress,
	docscout.FrameworkVuePress,
	docscout.FrameworkGitBook,
	docscout.FrameworkNextra,
}

var _ docscout.SiteRule = (*FrameworkRule)(nil)

// FrameworkRule matches pages built by one documentation framework. It only
// narrows link discovery; content goes to HTML segmentation unchanged.
type FrameworkRule struct {
	Framework docscout.Framework
	Detector  docscout.FrameworkDetector
}

// NewFrameworkRule returns a rule for framework using detector.
func NewFrameworkRule(framework docscout.Framework, detector docscout.FrameworkDetector) *FrameworkRule {
	return &FrameworkRule{Framework: framework, Detector: detector}
}

func (r *FrameworkRule) Type() string { return string(r.Framework) }

func (r *FrameworkRule) Markdown() bool { return false }

func (r *FrameworkRule) Prepare(context.Context, docscout.Page) {}

func (r *FrameworkRule) Detect(_ context.Context, _ docscout.Page, html string) bool {
	return r.Detector.Detect(html) == r.Framework
}

// LinkSelectors returns the framework's selectors, or all anchors when the
// framework has none registered.
func (r *FrameworkRule) LinkSelectors() []string {
	if s, ok := frameworkLinkSelectors[r.Framework]; ok {
		return s
	}
	return defaultLinkSelectors
}

func (r *FrameworkRule) ExtractContent(html string, _ string) (*docscout.Extraction, error) {
	return &docscout.Extraction{Content: html}, nil
}

var defaultLinkSelectors = []string{"a[href]"}

var _ docscout.SiteRule = (*DefaultRule)(nil)

// DefaultRule matches every page.
type DefaultRule struct{}

func (r *DefaultRule) Type() string { return DefaultType }

func (r *DefaultRule) Markdown() bool { return false }

func (r *DefaultRule) Prepare(context.Context, docscout.Page) {}

func (r *DefaultRule) Detect(context.Context, docscout.Page, string) bool { return true }

func (r *DefaultRule) LinkSelectors() []string { return defaultLinkSelectors }

func (r *DefaultRule) ExtractContent(html string, _ string) (*docscout.Extraction, error) {
	return &docscout.Extraction{Content: html}, nil
}
