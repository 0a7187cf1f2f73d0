package mock

import (
	"context"
	"regexp"

	"github.com/fwojciec/docscout"
)

// Compile-time interface verification.
var (
	_ docscout.Browser = (*Browser)(nil)
	_ docscout.Page    = (*Page)(nil)
)

// Browser is a mock implementation of docscout.Browser.
type Browser struct {
	OpenFn  func(ctx context.Context, url string) (docscout.Page, error)
	CloseFn func() error
}

func (b *Browser) Open(ctx context.Context, url string) (docscout.Page, error) {
	return b.OpenFn(ctx, url)
}

func (b *Browser) Close() error {
	return b.CloseFn()
}

// Page is a mock implementation of docscout.Page.
type Page struct {
	URLFn             func() string
	HTMLFn            func(ctx context.Context) (string, error)
	EvalBoolFn        func(ctx context.Context, expr string) (bool, error)
	WaitNetworkIdleFn func(ctx context.Context) error
	WaitVisibleFn     func(ctx context.Context, selector string) error
	ClickFn           func(ctx context.Context, selector string, text *regexp.Regexp, limit int) (int, error)
	ScrollFn          func(ctx context.Context, selector string, bottom bool) error
	CloseFn           func() error
}

func (p *Page) URL() string {
	return p.URLFn()
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.HTMLFn(ctx)
}

func (p *Page) EvalBool(ctx context.Context, expr string) (bool, error) {
	return p.EvalBoolFn(ctx, expr)
}

func (p *Page) WaitNetworkIdle(ctx context.Context) error {
	return p.WaitNetworkIdleFn(ctx)
}

func (p *Page) WaitVisible(ctx context.Context, selector string) error {
	return p.WaitVisibleFn(ctx, selector)
}

func (p *Page) Click(ctx context.Context, selector string, text *regexp.Regexp, limit int) (int, error) {
	return p.ClickFn(ctx, selector, text, limit)
}

func (p *Page) Scroll(ctx context.Context, selector string, bottom bool) error {
	return p.ScrollFn(ctx, selector, bottom)
}

func (p *Page) Close() error {
	return p.CloseFn()
}
