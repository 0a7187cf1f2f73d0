package htmltomarkdown_test

import (
	"testing"

	"github.com/fwojciec/docscout"
	"github.com/fwojciec/docscout/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts headings and paragraphs", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<h1>Button</h1><p>A clickable button.</p><h2>Props</h2>`)

		require.NoError(t, err)
		assert.Equal(t, "# Button\n\nA clickable button.\n\n## Props", md)
	})

	t.Run("keeps code block indentation", func(t *testing.T) {
		t.Parallel()

		html := "<pre><code class=\"language-go\">func main() {\n    run()\n}</code></pre>"

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "```go\nfunc main() {\n    run()\n}\n```")
	})

	t.Run("converts links and inline code", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<p>Call <code>New()</code>, see <a href="https://example.com/api">API</a>.</p>`)

		require.NoError(t, err)
		assert.Contains(t, md, "`New()`")
		assert.Contains(t, md, "[API](https://example.com/api)")
	})

	t.Run("converts argument tables", func(t *testing.T) {
		t.Parallel()

		html := `<table>
<thead><tr><th>Name</th><th>Default</th></tr></thead>
<tbody><tr><td>size</td><td>medium</td></tr></tbody>
</table>`

		md, err := htmltomarkdown.NewConverter().Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "| Name")
		assert.Contains(t, md, "size")
		assert.Contains(t, md, "medium")
	})

	t.Run("drops buttons and zero-width characters", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert("<h2>Hooks\u200B</h2><button>Show code</button><p>text</p>")

		require.NoError(t, err)
		assert.Equal(t, "## Hooks\n\ntext", md)
	})

	t.Run("converts strikethrough", func(t *testing.T) {
		t.Parallel()

		md, err := htmltomarkdown.NewConverter().Convert(`<p><del>old</del> new</p>`)

		require.NoError(t, err)
		assert.Contains(t, md, "~~old~~")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := htmltomarkdown.NewConverter().Convert("  ")

		require.Error(t, err)
		assert.Equal(t, docscout.EINVALID, docscout.ErrorCode(err))
	})
}
