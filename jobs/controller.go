// Package jobs coordinates indexing operations across jobs: at most one
// operation runs per normalized URL, and starting a new one cancels and
// waits for its predecessor.
package jobs

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/docscout"
	"github.com/google/uuid"
)

// DefaultWaitTimeout bounds how long Start waits for a cancelled predecessor.
const DefaultWaitTimeout = 5 * time.Second

// Token is the cancellation handle of one operation.
type Token struct {
	ID string

	ctx    context.Context
	cancel context.CancelFunc
}

func newToken(parent context.Context) *Token {
	ctx, cancel := context.WithCancel(parent)
	return &Token{ID: uuid.NewString(), ctx: ctx, cancel: cancel}
}

// Context returns a context that is done once the token is cancelled.
func (t *Token) Context() context.Context { return t.ctx }

// Cancel signals the operation to stop. Cancel is idempotent.
func (t *Token) Cancel() { t.cancel() }

// Cancelled reports whether Cancel was called or the parent context ended.
func (t *Token) Cancelled() bool { return t.ctx.Err() != nil }

// Operation is a snapshot of a registered operation.
type Operation struct {
	URL       string
	TokenID   string
	StartedAt time.Time
}

type entry struct {
	url     string
	token   *Token
	done    <-chan error
	started time.Time
}

// Controller is a per-URL single-flight guard. URLs are keyed by
// docscout.NormalizeURL. The zero value is not usable; use NewController.
type Controller struct {
	// WaitTimeout bounds the wait for a cancelled predecessor.
	WaitTimeout time.Duration
	Logger      *slog.Logger

	mu  sync.Mutex
	ops map[string]*entry
	now func() time.Time
}

// NewController returns an empty Controller.
func NewController(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		WaitTimeout: DefaultWaitTimeout,
		Logger:      logger,
		ops:         make(map[string]*entry),
		now:         time.Now,
	}
}

// Start cancels the operation registered for url, if any, and waits up to
// WaitTimeout for its completion channel before returning a fresh token.
// Timeouts and predecessor failures are logged, never returned. The new token
// derives from ctx and is registered immediately, so a concurrent Start for
// the same URL cancels it even before Register is called. When another Start
// installs its token while this one waits, that token is cancelled and waited
// for too, so at most one live token exists per URL.
func (c *Controller) Start(ctx context.Context, url string) *Token {
	key := docscout.NormalizeURL(url)

	var waited *entry
	for {
		c.mu.Lock()
		cur := c.ops[key]
		if cur == nil || cur == waited {
			tok := newToken(ctx)
			c.ops[key] = &entry{url: key, token: tok, started: c.now()}
			c.mu.Unlock()
			return tok
		}
		c.mu.Unlock()

		cur.token.Cancel()
		if cur.done != nil {
			c.wait(ctx, key, cur)
		}
		waited = cur
	}
}

func (c *Controller) wait(ctx context.Context, key string, prev *entry) {
	timer := time.NewTimer(c.WaitTimeout)
	defer timer.Stop()

	select {
	case err := <-prev.done:
		if err != nil && ctx.Err() == nil {
			c.Logger.Debug("previous operation failed", "url", key, "token", prev.token.ID, "err", err)
		}
	case <-timer.C:
		c.Logger.Warn("previous operation did not stop in time, starting anyway",
			"url", key, "token", prev.token.ID, "timeout", c.WaitTimeout)
	case <-ctx.Done():
	}
}

// Register attaches the completion channel of the operation holding tok.
// The channel yields the operation's result or is closed when it ends.
// Registering an unknown URL creates the entry.
func (c *Controller) Register(url string, tok *Token, done <-chan error) {
	key := docscout.NormalizeURL(url)

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.ops[key]
	if ok && e.token == tok {
		e.done = done
		return
	}
	// A superseded token must not displace its successor.
	if ok && tok.Cancelled() {
		return
	}
	c.ops[key] = &entry{url: key, token: tok, done: done, started: c.now()}
}

// Complete removes the operation registered for url. Complete is idempotent.
func (c *Controller) Complete(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ops, docscout.NormalizeURL(url))
}

// CancelAll cancels every registered operation, waits for their completion
// channels (ignoring their results) and clears the controller. Waiting stops
// early when ctx is done.
func (c *Controller) CancelAll(ctx context.Context) {
	c.mu.Lock()
	entries := make([]*entry, 0, len(c.ops))
	for _, e := range c.ops {
		entries = append(entries, e)
	}
	c.ops = make(map[string]*entry)
	c.mu.Unlock()

	for _, e := range entries {
		e.token.Cancel()
	}
	for _, e := range entries {
		if e.done == nil {
			continue
		}
		select {
		case <-e.done:
		case <-ctx.Done():
			return
		}
	}
}

// IsActive reports whether an operation is registered for url.
func (c *Controller) IsActive(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.ops[docscout.NormalizeURL(url)]
	return ok
}

// List returns the registered operations ordered by start time.
func (c *Controller) List() []Operation {
	c.mu.Lock()
	ops := make([]Operation, 0, len(c.ops))
	for _, e := range c.ops {
		ops = append(ops, Operation{URL: e.url, TokenID: e.token.ID, StartedAt: e.started})
	}
	c.mu.Unlock()

	slices.SortFunc(ops, func(a, b Operation) int {
		if n := a.StartedAt.Compare(b.StartedAt); n != 0 {
			return n
		}
		return strings.Compare(a.URL, b.URL)
	})
	return ops
}

// Run executes fn as the single operation for url: it starts a token,
// registers fn's completion and removes the entry when fn returns, unless a
// newer operation has replaced it by then.
func (c *Controller) Run(ctx context.Context, url string, fn func(ctx context.Context) error) error {
	tok := c.Start(ctx, url)
	defer tok.Cancel()

	done := make(chan error, 1)
	c.Register(url, tok, done)

	err := fn(tok.Context())
	done <- err
	close(done)
	c.release(url, tok)
	return err
}

// release removes the entry for url only while tok still owns it.
func (c *Controller) release(url string, tok *Token) {
	key := docscout.NormalizeURL(url)
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.ops[key]; ok && e.token == tok {
		delete(c.ops, key)
	}
}
