// Package rod implements docscout.Browser on top of a headless Chrome driven
// through go-rod.
package rod

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/docscout"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 75

var _ docscout.Browser = (*BrowserManager)(nil)

// BrowserManager opens rendered pages in a headless Chrome and recycles the
// browser every maxPages pages. Chrome's baseline memory keeps growing under
// load even when pages are closed.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	browser   *rod.Browser
	launcher  *launcher.Launcher
	cookies   []*proto.NetworkCookieParam
	logger    *slog.Logger
	pageCount int64
	maxPages  int64
	mu        sync.Mutex
	closed    atomic.Bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager) error

// WithMaxPages sets the maximum number of pages before the browser is recycled.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) error {
		bm.maxPages = n
		return nil
	}
}

// WithStorageState applies the cookies of a Playwright-style storage state
// blob to every browser the manager launches.
func WithStorageState(blob []byte) ManagerOption {
	return func(bm *BrowserManager) error {
		cookies, err := ParseStorageState(blob)
		if err != nil {
			return err
		}
		bm.cookies = cookies
		return nil
	}
}

// WithLogger sets the logger used for recycling events.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(bm *BrowserManager) error {
		bm.logger = logger
		return nil
	}
}

// NewBrowserManager launches a headless Chrome. Close must be called when the
// BrowserManager is no longer needed. A browser that cannot be launched is
// reported as EFATAL.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if err := opt(bm); err != nil {
			return nil, err
		}
	}

	if err := bm.launchBrowser(); err != nil {
		return nil, err
	}

	return bm, nil
}

// Open creates a tab, navigates it to url and waits for the load event.
func (bm *BrowserManager) Open(ctx context.Context, url string) (docscout.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bm.closed.Load() {
		return nil, docscout.Errorf(docscout.EFATAL, "browser is closed")
	}

	browser := bm.current()
	if browser == nil {
		return nil, docscout.Errorf(docscout.EFATAL, "browser is not running")
	}
	p, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, docscout.Errorf(docscout.EFATAL, "creating page: %v", err)
	}
	atomic.AddInt64(&bm.pageCount, 1)

	page := &Page{page: p, url: url}
	bound := p.Context(ctx)
	if err := bound.Navigate(url); err != nil {
		_ = page.Close()
		return nil, navigationError(ctx, url, err)
	}
	if err := bound.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, navigationError(ctx, url, err)
	}
	return page, nil
}

func navigationError(ctx context.Context, url string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return docscout.Errorf(docscout.EINTERNAL, "navigating to %s: %v", url, err)
}

// current returns the running browser, recycling it first when the page
// count has reached maxPages.
func (bm *BrowserManager) current() *rod.Browser {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if atomic.LoadInt64(&bm.pageCount) >= bm.maxPages {
		bm.recycleBrowser()
	}

	return bm.browser
}

// Close releases browser resources. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	return bm.closeBrowser()
}

// launchBrowser starts a new browser instance with stability flags and
// applies the storage state cookies.
func (bm *BrowserManager) launchBrowser() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return docscout.Errorf(docscout.EFATAL, "launching browser: %v", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return docscout.Errorf(docscout.EFATAL, "connecting to browser: %v", err)
	}
	if len(bm.cookies) > 0 {
		if err := browser.SetCookies(bm.cookies); err != nil {
			_ = browser.Close()
			lnchr.Kill()
			return docscout.Errorf(docscout.EFATAL, "applying storage state: %v", err)
		}
	}

	bm.browser = browser
	bm.launcher = lnchr
	return nil
}

// closeBrowser shuts down the current browser and launcher.
// Must be called with mu held.
func (bm *BrowserManager) closeBrowser() error {
	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
		bm.launcher = nil
	}
	return err
}

// recycleBrowser starts a fresh browser and closes the old one.
// If launching the new browser fails, the old browser is kept.
// Must be called with mu held.
func (bm *BrowserManager) recycleBrowser() {
	oldBrowser := bm.browser
	oldLauncher := bm.launcher
	bm.browser = nil
	bm.launcher = nil

	if err := bm.launchBrowser(); err != nil {
		bm.logger.Warn("browser recycle failed, keeping current browser", "err", err)
		bm.browser = oldBrowser
		bm.launcher = oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	atomic.StoreInt64(&bm.pageCount, 0)
	bm.logger.Debug("browser recycled")
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}
