package mock

import (
	"context"

	"github.com/fwojciec/docscout"
)

// Compile-time interface verification.
var (
	_ docscout.SiteRule     = (*SiteRule)(nil)
	_ docscout.SiteRegistry = (*SiteRegistry)(nil)
)

// SiteRule is a mock implementation of docscout.SiteRule.
type SiteRule struct {
	TypeFn           func() string
	DetectFn         func(ctx context.Context, page docscout.Page, html string) bool
	PrepareFn        func(ctx context.Context, page docscout.Page)
	LinkSelectorsFn  func() []string
	MarkdownFn       func() bool
	ExtractContentFn func(html string, pageURL string) (*docscout.Extraction, error)
}

func (r *SiteRule) Type() string {
	return r.TypeFn()
}

func (r *SiteRule) Detect(ctx context.Context, page docscout.Page, html string) bool {
	return r.DetectFn(ctx, page, html)
}

func (r *SiteRule) Prepare(ctx context.Context, page docscout.Page) {
	r.PrepareFn(ctx, page)
}

func (r *SiteRule) LinkSelectors() []string {
	return r.LinkSelectorsFn()
}

func (r *SiteRule) Markdown() bool {
	return r.MarkdownFn()
}

func (r *SiteRule) ExtractContent(html string, pageURL string) (*docscout.Extraction, error) {
	return r.ExtractContentFn(html, pageURL)
}

// SiteRegistry is a mock implementation of docscout.SiteRegistry.
type SiteRegistry struct {
	MatchFn func(ctx context.Context, page docscout.Page, html string) docscout.SiteRule
}

func (r *SiteRegistry) Match(ctx context.Context, page docscout.Page, html string) docscout.SiteRule {
	return r.MatchFn(ctx, page, html)
}
