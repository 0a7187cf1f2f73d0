package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docscout"
	"github.com/fwojciec/docscout/colly"
	"github.com/fwojciec/docscout/crawl"
	"github.com/fwojciec/docscout/fs"
	"github.com/fwojciec/docscout/github"
	"github.com/fwojciec/docscout/goquery"
	"github.com/fwojciec/docscout/htmltomarkdown"
	dshttp "github.com/fwojciec/docscout/http"
	"github.com/fwojciec/docscout/jobs"
	"github.com/fwojciec/docscout/markdown"
	dsprom "github.com/fwojciec/docscout/prometheus"
	"github.com/fwojciec/docscout/readability"
	"github.com/fwojciec/docscout/redis"
	"github.com/fwojciec/docscout/rod"
	dsslog "github.com/fwojciec/docscout/slog"
	"github.com/fwojciec/docscout/sqlite"
	"github.com/fwojciec/docscout/trafilatura"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Output directory for crawled articles. Set before calling Run().
	OutDir string

	Jobs *jobs.Controller

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{OutDir: defaultOutDir()}
}

// Close gracefully stops the program, releasing resources in reverse order.
func (m *Main) Close() error {
	if m.Jobs != nil {
		ctx, cancel := context.WithTimeout(context.Background(), jobs.DefaultWaitTimeout)
		m.Jobs.CancelAll(ctx)
		cancel()
	}
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i]())
	}
	m.closers = nil
	return errors.Join(errs...)
}

func (m *Main) onClose(fn func() error) {
	m.closers = append(m.closers, fn)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docscout"),
		kong.Description("Discover and extract documentation from websites and GitHub repositories."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docscout --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.wire(ctx, &cli.Config, kongCtx.Command(), deps); err != nil {
		return err
	}

	return kongCtx.Run(deps)
}

// wire builds the services the parsed command needs.
func (m *Main) wire(ctx context.Context, cfg *Config, command string, deps *Dependencies) error {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(deps.Stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	converter := htmltomarkdown.NewConverter()
	deps.Segmenter = &crawl.Segmenter{
		HTML:     goquery.NewSegmenter(newExtractor(cfg.Extractor)),
		Markdown: markdown.NewSegmenter(),
	}
	sitemaps := dsslog.NewLoggingSitemapService(dshttp.NewSitemapService(nil), logger)
	deps.Sitemaps = sitemaps
	fetcher := dsslog.NewLoggingFetcher(dshttp.NewFetcher(dshttp.WithTimeout(cfg.Timeout)), logger)
	deps.Fetcher = fetcher
	m.onClose(fetcher.Close)

	var browser *rod.BrowserManager
	if cfg.Browser {
		opts := []rod.ManagerOption{rod.WithLogger(logger)}
		if cfg.StorageState != "" {
			blob, err := os.ReadFile(cfg.StorageState)
			if err != nil {
				return fmt.Errorf("failed to read storage state: %w", err)
			}
			opts = append(opts, rod.WithStorageState(blob))
		}
		var err error
		browser, err = rod.NewBrowserManager(opts...)
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		m.onClose(browser.Close)
	}

	if strings.HasPrefix(command, "segment") && browser != nil {
		deps.Fetcher = rod.NewFetcher(rod.NewLoggingBrowser(browser, logger))
	}
	if !strings.HasPrefix(command, "crawl") {
		return nil
	}

	var observer docscout.Observer
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		o, err := dsprom.NewObserver(reg)
		if err != nil {
			return err
		}
		observer = o
		m.serveMetrics(cfg.MetricsAddr, reg, logger)
	}

	policy := func() crawl.Policy {
		return crawl.Policy{
			MaxPages:       cfg.MaxPages,
			MaxDepth:       cfg.MaxDepth,
			RequestTimeout: cfg.Timeout,
			Limiter:        crawl.NewDomainLimiter(cfg.Rate),
			Logger:         logger,
			Progress: func(progress float64, description string) {
				logger.Debug("progress", "pct", fmt.Sprintf("%.0f%%", progress*100), "step", description)
			},
		}
	}

	o := &crawl.Orchestrator{
		GitHub: dsslog.NewLoggingEngine(github.NewEngine(cfg.GitHubToken, policy()), logger),
		Static: dsslog.NewLoggingEngine(&crawl.StaticEngine{
			Fetcher:  fetcher,
			Parser:   goquery.NewParser(),
			Sitemaps: sitemaps,
			Policy:   policy(),
		}, logger),
		Fallback:             dsslog.NewLoggingEngine(colly.NewEngine(policy()), logger),
		BrowserAuthoritative: cfg.BrowserAuthoritative,
		Observer:             observer,
		Logger:               logger,
	}
	if browser != nil {
		store, err := m.openQueueStore(ctx, cfg)
		if err != nil {
			return err
		}
		o.Browser = dsslog.NewLoggingEngine(&crawl.BrowserEngine{
			Browser:  rod.NewLoggingBrowser(browser, logger),
			Sites:    dsslog.NewLoggingRegistry(goquery.NewDefaultRegistry(converter, logger), logger),
			Parser:   goquery.NewParser(),
			Store:    store,
			Observer: observer,
			Policy:   policy(),
		}, logger)
	}
	deps.Orchestrator = o

	m.Jobs = jobs.NewController(logger)
	deps.Jobs = m.Jobs
	outDir := m.OutDir
	deps.Stores = func(startURL string) docscout.ArticleStore {
		return fs.NewArticleStore(outDir, StoreName(startURL))
	}
	return nil
}

func newExtractor(name string) docscout.Extractor {
	if name == "readability" {
		return readability.NewExtractor()
	}
	return trafilatura.NewExtractor()
}

func (m *Main) openQueueStore(ctx context.Context, cfg *Config) (docscout.QueueStore, error) {
	switch cfg.Queue {
	case "sqlite":
		db := sqlite.NewDB(cfg.SQLitePath)
		if err := db.Open(); err != nil {
			return nil, fmt.Errorf("failed to open queue database at %q: %w", cfg.SQLitePath, err)
		}
		m.onClose(db.Close)
		return sqlite.NewQueueStore(db), nil
	case "redis":
		store, err := redis.NewQueueStore(ctx, redis.Config{Addr: cfg.RedisAddr})
		if err != nil {
			return nil, err
		}
		m.onClose(store.Close)
		return store, nil
	}
	return crawl.NewMemoryStore(), nil
}

func (m *Main) serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", dsprom.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", "addr", addr, "err", err)
		}
	}()
	m.onClose(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})
}

func defaultOutDir() string {
	if dir := os.Getenv("DOCSCOUT_OUT"); dir != "" {
		return dir
	}
	return filepath.Join(".", "docs")
}
