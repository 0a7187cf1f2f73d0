package docscout

import (
	"context"
	"regexp"
)

// Page is a handle to a rendered browser page.
// Site rules inspect and prepare pages through this interface so they can be
// exercised against a fake page without real browser automation.
type Page interface {
	// URL returns the current page URL.
	URL() string

	// HTML returns the current serialized DOM.
	HTML(ctx context.Context) (string, error)

	// EvalBool evaluates a JavaScript expression and reports its truthiness.
	EvalBool(ctx context.Context, expr string) (bool, error)

	// WaitNetworkIdle blocks until no requests have been in flight for a
	// short settle period.
	WaitNetworkIdle(ctx context.Context) error

	// WaitVisible blocks until an element matching selector exists.
	WaitVisible(ctx context.Context, selector string) error

	// Click clicks up to limit elements matching selector, in document order.
	// When text is non-nil only elements whose text matches are clicked.
	// A limit <= 0 means no limit. Elements that cannot be clicked are skipped.
	// Returns the number of elements clicked.
	Click(ctx context.Context, selector string, text *regexp.Regexp, limit int) (int, error)

	// Scroll scrolls the first element matching selector to its bottom, or
	// back to its top when bottom is false.
	Scroll(ctx context.Context, selector string, bottom bool) error

	// Close releases the page.
	Close() error
}

// Browser opens rendered pages.
type Browser interface {
	// Open navigates a fresh page to url and waits for it to load.
	// Returns EFATAL when the browser itself is unreachable.
	Open(ctx context.Context, url string) (Page, error)

	// Close releases browser resources.
	Close() error
}
