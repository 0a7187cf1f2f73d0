package goquery

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docscout"
)

// StorybookType identifies the Storybook rule.
const StorybookType = "storybook"

// Storybook preparation limits.
const (
	storybookReadyTimeout    = 10 * time.Second
	storybookExpandTimeout   = 8 * time.Second
	storybookScrollTimeout   = 5 * time.Second
	storybookRevealTimeout   = 5 * time.Second
	storybookArgTableTimeout = 8 * time.Second
	storybookGlobalsTimeout  = 2 * time.Second

	defaultSettleDelay = 500 * time.Millisecond
	defaultClickDelay  = 100 * time.Millisecond

	// maxCodeToggles limits how many "show code" toggles are opened.
	maxCodeToggles = 3
	// maxArgTableClicks bounds the argument-table expansion loop.
	maxArgTableClicks = 50
)

var (
	storybookMarkers = []string{
		"#storybook-root",
		"#storybook-preview-iframe",
		"#storybook-docs",
		".sbdocs",
		"[data-nodetype]",
	}

	storybookGlobals = "typeof window.__STORYBOOK_ADDONS_CHANNEL__ !== 'undefined'" +
		" || typeof window.__STORYBOOK_PREVIEW__ !== 'undefined'" +
		" || typeof window.__STORYBOOK_STORY_STORE__ !== 'undefined'"

	storybookContentSelectors = "#storybook-docs, .sbdocs, #storybook-root"

	storybookExpanders = "[data-nodetype='group'][aria-expanded='false'], " +
		"[data-nodetype='component'][aria-expanded='false'], " +
		".sidebar-subheading-action[aria-expanded='false']"

	storybookScrollContainers = []string{
		"#storybook-docs",
		".sbdocs-wrapper",
		"#storybook-root",
		"html",
	}

	showCodeText = regexp.MustCompile(`(?i)^\s*show\s+code\s*$`)
	showMoreText = regexp.MustCompile(`(?i)show\s+\d+\s+more`)

	storybookLinkSelectors = []string{
		"a[data-nodetype][href]",
		"#storybook-explorer-menu a[href]",
		"#storybook-explorer-tree a[href]",
		".sidebar-item a[href]",
		"a[href*='?path=/docs/']",
		"a[href*='?path=/story/']",
	}

	storybookDocsContainers = []string{
		"#storybook-docs .sbdocs-content",
		".sbdocs-content",
		"#storybook-docs",
		".sbdocs",
		"#storybook-root",
		"#root",
		"body",
	}

	storybookNoise = "script, style, noscript, button, .docblock-code-toggle, .sb-anchor, [aria-hidden='true']"
)

var _ docscout.SiteRule = (*StorybookRule)(nil)

// StorybookRule handles Storybook component documentation. Storybook renders
// docs client side and hides content behind collapsed sidebar groups, code
// toggles and argument tables, so pages are prepared before extraction and
// converted to Markdown.
type StorybookRule struct {
	Converter docscout.Converter
	Logger    *slog.Logger

	// SettleDelay is the pause between expansion passes and after scrolling.
	SettleDelay time.Duration
	// ClickDelay is the pause after each argument-table click.
	ClickDelay time.Duration
}

// Type returns StorybookType.
func (r *StorybookRule) Type() string { return StorybookType }

// Markdown reports true: Storybook content is converted to Markdown.
func (r *StorybookRule) Markdown() bool { return true }

// LinkSelectors returns the sidebar, story and docs anchors.
func (r *StorybookRule) LinkSelectors() []string { return storybookLinkSelectors }

// Detect matches Storybook URLs, DOM markers and preview globals.
func (r *StorybookRule) Detect(ctx context.Context, page docscout.Page, html string) bool {
	if page != nil && IsStorybookURL(page.URL()) {
		return true
	}
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		for _, m := range storybookMarkers {
			if doc.Find(m).Length() > 0 {
				return true
			}
		}
	}
	if page == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, storybookGlobalsTimeout)
	defer cancel()
	ok, err := page.EvalBool(ctx, storybookGlobals)
	return err == nil && ok
}

// IsStorybookURL reports whether rawURL addresses a Storybook docs page,
// story or preview iframe.
func IsStorybookURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	q := u.Query()
	if p := q.Get("path"); strings.HasPrefix(p, "/docs/") || strings.HasPrefix(p, "/story/") {
		return true
	}
	return strings.HasSuffix(u.Path, "iframe.html") && q.Get("id") != ""
}

// Prepare runs the preparation steps. Failures are logged and swallowed.
func (r *StorybookRule) Prepare(ctx context.Context, page docscout.Page) {
	RunSteps(ctx, page, r.Steps(), r.Logger)
}

// Steps returns the preparation steps in execution order.
func (r *StorybookRule) Steps() []Step {
	return []Step{
		{Name: "wait-ready", Timeout: storybookReadyTimeout, Run: r.waitReady},
		{Name: "expand-sections", Timeout: storybookExpandTimeout, Run: r.expandSections},
		{Name: "scroll-lazy-load", Timeout: storybookScrollTimeout, Run: r.scrollLazyLoad},
		{Name: "reveal-code", Timeout: storybookRevealTimeout, Run: r.revealCode},
		{Name: "expand-argtables", Timeout: storybookArgTableTimeout, Run: r.expandArgTables},
	}
}

func (r *StorybookRule) settle() time.Duration {
	if r.SettleDelay <= 0 {
		return defaultSettleDelay
	}
	return r.SettleDelay
}

func (r *StorybookRule) clickDelay() time.Duration {
	if r.ClickDelay <= 0 {
		return defaultClickDelay
	}
	return r.ClickDelay
}

// waitReady waits for the network to go idle and for docs content to render.
func (r *StorybookRule) waitReady(ctx context.Context, page docscout.Page) error {
	if err := page.WaitNetworkIdle(ctx); err != nil {
		return err
	}
	return page.WaitVisible(ctx, storybookContentSelectors)
}

// expandSections clicks sidebar expanders and every collapsed node, twice,
// since expanding a group can reveal further collapsed nodes.
func (r *StorybookRule) expandSections(ctx context.Context, page docscout.Page) error {
	for pass := range 2 {
		if pass > 0 {
			if err := sleep(ctx, r.settle()); err != nil {
				return err
			}
		}
		if _, err := page.Click(ctx, storybookExpanders, nil, 0); err != nil {
			return err
		}
		if _, err := page.Click(ctx, "[aria-expanded='false']", nil, 0); err != nil {
			return err
		}
	}
	return nil
}

// scrollLazyLoad scrolls the docs container to the bottom and back to the
// top so lazily rendered blocks mount.
func (r *StorybookRule) scrollLazyLoad(ctx context.Context, page docscout.Page) error {
	var err error
	for _, container := range storybookScrollContainers {
		if err = page.Scroll(ctx, container, true); err != nil {
			continue
		}
		if err = sleep(ctx, r.settle()); err != nil {
			return err
		}
		return page.Scroll(ctx, container, false)
	}
	return err
}

// revealCode opens the first few "show code" toggles.
func (r *StorybookRule) revealCode(ctx context.Context, page docscout.Page) error {
	_, err := page.Click(ctx, "button, .docblock-code-toggle", showCodeText, maxCodeToggles)
	return err
}

// expandArgTables opens collapsed argument-table rows and every "show N more"
// toggle, one click at a time with a short delay after each.
func (r *StorybookRule) expandArgTables(ctx context.Context, page docscout.Page) error {
	targets := []struct {
		selector string
		text     *regexp.Regexp
	}{
		{".docblock-argstable [aria-expanded='false']", nil},
		{".docblock-argstable button, .docblock-argstable-body button", showMoreText},
	}
	for _, target := range targets {
		for range maxArgTableClicks {
			n, err := page.Click(ctx, target.selector, target.text, 1)
			if err != nil {
				return err
			}
			if n == 0 {
				break
			}
			if err := sleep(ctx, r.clickDelay()); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExtractContent converts the docs container to Markdown. Metadata carries
// the component name and its description.
func (r *StorybookRule) ExtractContent(html string, pageURL string) (*docscout.Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docscout.Errorf(docscout.EINVALID, "failed to parse HTML: %v", err)
	}

	var container *goquery.Selection
	for _, sel := range storybookDocsContainers {
		if c := doc.Find(sel).First(); c.Length() > 0 && strings.TrimSpace(c.Text()) != "" {
			container = c
			break
		}
	}
	if container == nil {
		return &docscout.Extraction{}, nil
	}
	container.Find(storybookNoise).Remove()

	meta := make(map[string]string)
	titleSel := container.Find(".sbdocs-title, h1").First()
	if name := collapse(titleSel.Text()); name != "" {
		meta["name"] = name
	}
	descSel := container.Find(".sbdocs-p").First()
	if descSel.Length() == 0 {
		descSel = titleSel.NextFiltered("p")
	}
	if desc := collapse(descSel.Text()); desc != "" {
		meta["description"] = desc
	}

	fragment, err := goquery.OuterHtml(container)
	if err != nil {
		return nil, err
	}
	markdown, err := r.Converter.Convert(fragment)
	if err != nil {
		return nil, err
	}
	markdown = strings.TrimSpace(markdown)

	if name := meta["name"]; name != "" && !hasLevelOneHeading(markdown) {
		markdown = "# " + name + "\n\n" + markdown
	}
	return &docscout.Extraction{Content: markdown, Metadata: meta}, nil
}

func hasLevelOneHeading(markdown string) bool {
	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(line, "# ") {
			return true
		}
	}
	return false
}
