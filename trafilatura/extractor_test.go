package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/docscout"
	"github.com/fwojciec/docscout/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ docscout.Extractor = (*trafilatura.Extractor)(nil)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	docusaurus := `<!DOCTYPE html>
<html>
<head>
<title>Installation | My Project</title>
<meta property="og:title" content="Installation">
</head>
<body>
<nav class="navbar"><a href="/">Home</a><a href="/docs">Docs</a></nav>
<div class="main-wrapper">
<aside class="theme-doc-sidebar-container"><a href="/docs/intro">Sidebar Intro Link</a></aside>
<main>
<article>
<h1>Installation</h1>
<p>Install the command line tool with your package manager of choice before running it.</p>
<p>The tool needs a recent runtime and network access to the documentation site you index.</p>
<pre><code>npm install --global my-project</code></pre>
</article>
</main>
</div>
<footer>Copyright 2024 My Project</footer>
</body>
</html>`

	t.Run("extracts a title", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(docusaurus)

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
	})

	t.Run("extracts main content without navigation", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(docusaurus)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "package manager of choice")
		assert.NotContains(t, result.ContentHTML, "Sidebar Intro Link")
	})

	t.Run("fills plain text content", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(docusaurus)

		require.NoError(t, err)
		assert.Contains(t, result.TextContent, "network access")
		assert.NotContains(t, result.TextContent, "<p>")
	})

	t.Run("rejects whitespace-only input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract(" \n")

		require.Error(t, err)
		assert.Equal(t, docscout.EINVALID, docscout.ErrorCode(err))
	})
}
