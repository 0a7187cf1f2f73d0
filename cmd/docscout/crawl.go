package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fwojciec/docscout"
	"golang.org/x/sync/errgroup"
)

// Run executes the crawl command. Every URL is crawled concurrently as its
// own job, and a failing job does not stop the others. A URL given twice
// supersedes its earlier crawl.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	var g errgroup.Group
	for _, u := range c.URLs {
		g.Go(func() error {
			return deps.Jobs.Run(deps.Ctx, u, func(ctx context.Context) error {
				return crawlOne(ctx, deps, u)
			})
		})
	}
	return g.Wait()
}

// crawlOne streams, segments and stores the pages of one start URL. The
// articles are committed only when the job was not superseded or aborted.
func crawlOne(ctx context.Context, deps *Dependencies, startURL string) (err error) {
	store := deps.Stores(startURL)
	defer func() {
		if err != nil || ctx.Err() != nil {
			if aerr := store.Abort(); aerr != nil {
				deps.Logger.Warn("discard articles", "url", startURL, "err", aerr)
			}
		}
	}()

	stream := deps.Orchestrator.Stream(ctx, startURL)
	var pages, articles int
	for page := range stream.All() {
		pages++
		article, err := deps.Segmenter.Segment(page)
		if err != nil {
			deps.Logger.Warn("segment failed", "url", page.URL, "err", err)
			continue
		}
		if article == nil || len(article.Components) == 0 {
			continue
		}
		if err := store.Save(ctx, article); err != nil {
			stream.Abort()
			return fmt.Errorf("save %s: %w", page.URL, err)
		}
		articles++
	}
	if err := stream.Err(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s: %s\n", startURL, docscout.ErrorMessage(err))
		return err
	}
	if ctx.Err() != nil {
		fmt.Fprintf(deps.Stdout, "%s aborted pages=%d\n", startURL, pages)
		return nil
	}
	if err := store.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", startURL, err)
	}

	fmt.Fprintf(deps.Stdout, "%s engine=%s pages=%d articles=%d\n", startURL, stream.Engine(), pages, articles)
	return nil
}

// StoreName derives the output directory name for a crawl of startURL from
// its host and path, e.g. "docs.example.com_guide".
func StoreName(startURL string) string {
	u, err := url.Parse(startURL)
	if err != nil || u.Host == "" {
		return sanitize(startURL)
	}
	name := u.Hostname()
	if p := strings.Trim(u.Path, "/"); p != "" {
		name += "_" + p
	}
	return sanitize(name)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
