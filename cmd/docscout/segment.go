package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/docscout"
)

// Run executes the segment command.
func (c *SegmentCmd) Run(deps *Dependencies) error {
	html, err := deps.Fetcher.Fetch(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docscout.ErrorMessage(err))
		return err
	}

	article, err := deps.Segmenter.Segment(&docscout.CrawledPage{
		URL:        c.URL,
		Path:       docscout.URLPath(c.URL),
		RawContent: html,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docscout.ErrorMessage(err))
		return err
	}
	if article == nil {
		article = &docscout.Article{URL: c.URL, Path: docscout.URLPath(c.URL), Components: []*docscout.ArticleComponent{}}
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(article)
}
