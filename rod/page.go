package rod

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/fwojciec/docscout"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Page timing defaults.
const (
	// NetworkIdle is how long no request may be in flight before the network
	// counts as idle.
	NetworkIdle = 500 * time.Millisecond
	// ClickTimeout bounds a native click before falling back to a scripted one.
	ClickTimeout = 2 * time.Second
)

const scrollJS = `(selector, bottom) => {
	const el = document.querySelector(selector);
	if (!el) return false;
	const target = (el === document.documentElement || el === document.body) ? document.scrollingElement : el;
	target.scrollTop = bottom ? target.scrollHeight : 0;
	return true;
}`

const serializeJS = `() => {
	const root = document.documentElement;
	if (typeof root.getHTML === 'function') {
		return '<!DOCTYPE html>' + root.getHTML({serializableShadowRoots: true, shadowRoots: [...document.querySelectorAll('*')].map(el => el.shadowRoot).filter(Boolean)});
	}
	return '<!DOCTYPE html>' + root.outerHTML;
}`

var _ docscout.Page = (*Page)(nil)

// Page is a rendered Chrome tab. Every call binds the tab to the caller's
// context, so a page opened under a short timeout stays usable afterwards.
type Page struct {
	page *rod.Page

	mu     sync.Mutex
	url    string
	closed bool
}

// URL returns the current page URL, falling back to the navigated URL when
// the target info is unavailable.
func (p *Page) URL() string {
	info, err := p.page.Info()
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil && info.URL != "" {
		p.url = info.URL
	}
	return p.url
}

// HTML serializes the DOM including open shadow roots.
func (p *Page) HTML(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(serializeJS)
	if err != nil {
		html, herr := p.page.Context(ctx).HTML()
		if herr != nil {
			return "", p.wrap(ctx, "serializing page", herr)
		}
		return html, nil
	}
	return res.Value.Str(), nil
}

// EvalBool evaluates expr and reports its truthiness.
func (p *Page) EvalBool(ctx context.Context, expr string) (bool, error) {
	res, err := p.page.Context(ctx).Eval("() => Boolean(" + expr + ")")
	if err != nil {
		return false, p.wrap(ctx, "evaluating script", err)
	}
	return res.Value.Bool(), nil
}

// WaitNetworkIdle waits until no request has been in flight for NetworkIdle.
func (p *Page) WaitNetworkIdle(ctx context.Context) error {
	wait := p.page.Context(ctx).WaitRequestIdle(NetworkIdle, nil, nil, nil)
	wait()
	return ctx.Err()
}

// WaitVisible waits until an element matching selector exists.
func (p *Page) WaitVisible(ctx context.Context, selector string) error {
	if _, err := p.page.Context(ctx).Element(selector); err != nil {
		return p.wrap(ctx, "waiting for "+selector, err)
	}
	return nil
}

// Click clicks up to limit matching elements whose text matches the pattern.
// Elements that reject a native click get a scripted one; elements that
// reject both are skipped.
func (p *Page) Click(ctx context.Context, selector string, text *regexp.Regexp, limit int) (int, error) {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return 0, p.wrap(ctx, "querying "+selector, err)
	}
	clicked := 0
	for _, el := range els {
		if limit > 0 && clicked >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return clicked, err
		}
		if text != nil {
			t, err := el.Text()
			if err != nil || !text.MatchString(t) {
				continue
			}
		}
		if clickElement(ctx, el) {
			clicked++
		}
	}
	return clicked, nil
}

func clickElement(ctx context.Context, el *rod.Element) bool {
	if err := el.Context(ctx).Timeout(ClickTimeout).Click(proto.InputMouseButtonLeft, 1); err == nil {
		return true
	}
	if ctx.Err() != nil {
		return false
	}
	_, err := el.Context(ctx).Eval(`() => this.click()`)
	return err == nil
}

// Scroll scrolls the first element matching selector to its bottom or top.
// A missing element is not an error.
func (p *Page) Scroll(ctx context.Context, selector string, bottom bool) error {
	if _, err := p.page.Context(ctx).Eval(scrollJS, selector, bottom); err != nil {
		return p.wrap(ctx, "scrolling "+selector, err)
	}
	return nil
}

// Close closes the tab. Close is safe to call multiple times.
func (p *Page) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	return p.page.Close()
}

func (p *Page) wrap(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	p.mu.Lock()
	url := p.url
	p.mu.Unlock()
	return docscout.Errorf(docscout.EINTERNAL, "%s on %s: %v", op, url, err)
}
