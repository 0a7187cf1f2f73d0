package goquery_test

import (
	"context"
	"testing"

	"github.com/fwojciec/docscout/goquery"
	"github.com/fwojciec/docscout/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageAt(url string) *mock.Page {
	return &mock.Page{URLFn: func() string { return url }}
}

func TestGitHubPagesRule_Detect(t *testing.T) {
	t.Parallel()

	rule := &goquery.GitHubPagesRule{}

	t.Run("matches a github.io page with a markdown body", func(t *testing.T) {
		t.Parallel()

		html := `<section class="markdown-body"><h1>Project</h1></section>`

		assert.True(t, rule.Detect(context.Background(), pageAt("https://owner.github.io/project/"), html))
	})

	t.Run("rejects github.io pages without a layout marker", func(t *testing.T) {
		t.Parallel()

		assert.False(t, rule.Detect(context.Background(), pageAt("https://owner.github.io/"), `<div id="app"></div>`))
	})

	t.Run("rejects other hosts", func(t *testing.T) {
		t.Parallel()

		html := `<section class="markdown-body"></section>`

		assert.False(t, rule.Detect(context.Background(), pageAt("https://docs.example.com/"), html))
	})

	t.Run("rejects hosts that only end in github.io", func(t *testing.T) {
		t.Parallel()

		html := `<section class="markdown-body"></section>`

		assert.False(t, rule.Detect(context.Background(), pageAt("https://notgithub.io/"), html))
		assert.False(t, rule.Detect(context.Background(), pageAt("https://owner.notgithub.io/"), html))
	})
}

func TestGitHubPagesRule_ExtractContent(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<header><h1>Site header</h1></header>
<nav><a href="/">Home</a></nav>
<main>
<h1>Project</h1>
<p>A tool for things.</p>
<h2>Install</h2>
<p>Run it.</p>
<script>track()</script>
</main>
<footer>Footer text</footer>
</body></html>`

	got, err := (&goquery.GitHubPagesRule{}).ExtractContent(html, "https://owner.github.io/project/")

	require.NoError(t, err)
	assert.Equal(t, "# Project\n\nA tool for things.\n\n## Install\n\nRun it.", got.Content)
	assert.Equal(t, map[string]string{"name": "Project", "description": "A tool for things."}, got.Metadata)
}
