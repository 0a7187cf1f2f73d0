package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/docscout"
	"github.com/fwojciec/docscout/crawl"
	"github.com/fwojciec/docscout/jobs"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx          context.Context
	Stdout       io.Writer
	Stderr       io.Writer
	Logger       *slog.Logger
	Orchestrator *crawl.Orchestrator
	Segmenter    docscout.Segmenter
	Sitemaps     docscout.SitemapService
	Fetcher      docscout.Fetcher
	Jobs         *jobs.Controller

	// Stores opens the article store for one crawl of startURL.
	Stores func(startURL string) docscout.ArticleStore
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config `embed:""`

	Crawl    CrawlCmd    `cmd:"" help:"Crawl documentation sites and write one Markdown file per page"`
	Segment  SegmentCmd  `cmd:"" help:"Fetch a single page and print its segmented article as JSON"`
	Discover DiscoverCmd `cmd:"" help:"List the URLs found in a site's sitemaps"`
}

// Config holds the flags shared by every command.
type Config struct {
	Verbose bool `short:"v" env:"DOCSCOUT_VERBOSE" help:"Enable debug logging"`

	MaxPages int           `env:"DOCSCOUT_MAX_PAGES" default:"1000" help:"Maximum pages per crawl"`
	MaxDepth int           `env:"DOCSCOUT_MAX_DEPTH" default:"5" help:"Maximum link depth"`
	Timeout  time.Duration `env:"DOCSCOUT_TIMEOUT" default:"30s" help:"Per-request timeout"`
	Rate     float64       `env:"DOCSCOUT_RATE" default:"10" help:"Requests per second per domain (0 disables limiting)"`

	Browser              bool   `short:"b" env:"DOCSCOUT_BROWSER" help:"Try a headless browser before plain HTTP"`
	BrowserAuthoritative bool   `env:"DOCSCOUT_BROWSER_AUTHORITATIVE" help:"Fail instead of falling back when the browser yields too few pages"`
	StorageState         string `env:"DOCSCOUT_STORAGE_STATE" help:"Playwright storage state file whose cookies the browser uses"`

	Queue      string `env:"DOCSCOUT_QUEUE" enum:"memory,sqlite,redis" default:"memory" help:"Browser request queue backend (memory, sqlite, redis)"`
	SQLitePath string `name:"sqlite-path" env:"DOCSCOUT_SQLITE_PATH" default:"docscout.db" help:"SQLite queue database path"`
	RedisAddr  string `env:"DOCSCOUT_REDIS_ADDR" default:"localhost:6379" help:"Redis queue address"`

	GitHubToken string `name:"github-token" env:"GITHUB_TOKEN" help:"GitHub API token"`
	Extractor   string `env:"DOCSCOUT_EXTRACTOR" enum:"readability,trafilatura" default:"trafilatura" help:"Main content extractor for HTML pages"`
	MetricsAddr string `env:"DOCSCOUT_METRICS_ADDR" help:"Serve Prometheus metrics on this address"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URLs []string `arg:"" name:"url" help:"Documentation URLs; a repeated URL supersedes the earlier crawl"`
}

// SegmentCmd is the "segment" subcommand.
type SegmentCmd struct {
	URL string `arg:"" help:"Page URL"`
}

// DiscoverCmd is the "discover" subcommand.
type DiscoverCmd struct {
	URL string `arg:"" help:"Site URL"`
}
