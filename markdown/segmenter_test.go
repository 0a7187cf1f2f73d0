package markdown_test

import (
	"testing"

	"github.com/fwojciec/docscout"
	"github.com/fwojciec/docscout/markdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func segment(t *testing.T, page *docscout.CrawledPage) *docscout.Article {
	t.Helper()
	article, err := markdown.NewSegmenter().Segment(page)
	require.NoError(t, err)
	return article
}

func components(article *docscout.Article) [][2]string {
	var got [][2]string
	for _, c := range article.Components {
		got = append(got, [2]string{c.Title, c.Body})
	}
	return got
}

func TestSegmenter_Segment(t *testing.T) {
	t.Parallel()

	t.Run("splits at ATX headings", func(t *testing.T) {
		t.Parallel()

		article := segment(t, &docscout.CrawledPage{RawContent: "# A\n\ntext1\n\n## B\n\ntext2"})

		assert.Equal(t, [][2]string{{"A", "text1"}, {"B", "text2"}}, components(article))
		assert.Equal(t, "A", article.Title)
	})

	t.Run("takes the title from front matter", func(t *testing.T) {
		t.Parallel()

		article := segment(t, &docscout.CrawledPage{
			RawContent: "---\ntitle: X\n---\n# A\ntext",
			Title:      "Page title",
		})

		assert.Equal(t, "X", article.Title)
		assert.Equal(t, [][2]string{{"A", "text"}}, components(article))
	})

	t.Run("reads malformed front matter line by line", func(t *testing.T) {
		t.Parallel()

		article := segment(t, &docscout.CrawledPage{RawContent: "---\ntitle: \"Quoted: yes\"\n  bad: [\n---\n# A\ntext"})

		assert.Equal(t, "Quoted: yes", article.Title)
	})

	t.Run("detects a heading marked with a zero-width space", func(t *testing.T) {
		t.Parallel()

		article := segment(t, &docscout.CrawledPage{RawContent: "intro\n\nHooks\u200B\nUse hooks to share logic."})

		assert.Equal(t, [][2]string{
			{"Content", "intro"},
			{"Hooks", "Use hooks to share logic."},
		}, components(article))
	})

	t.Run("detects short capitalised lines as headings", func(t *testing.T) {
		t.Parallel()

		article := segment(t, &docscout.CrawledPage{RawContent: "Getting Started\nInstall the package.\n\nUsage (basic)\nCall the function."})

		assert.Equal(t, [][2]string{
			{"Getting Started", "Install the package."},
			{"Usage (basic)", "Call the function."},
		}, components(article))
	})

	t.Run("ignores plain lines without following text", func(t *testing.T) {
		t.Parallel()

		article := segment(t, &docscout.CrawledPage{RawContent: "# A\n\nNot A Heading\n\nmore text"})

		assert.Equal(t, [][2]string{{"A", "Not A Heading\n\nmore text"}}, components(article))
	})

	t.Run("ignores headings inside code fences", func(t *testing.T) {
		t.Parallel()

		raw := "# Usage\n\n```sh\n# install\n    npm i  pkg\n```\n\ndone"

		article := segment(t, &docscout.CrawledPage{RawContent: raw})

		assert.Equal(t, [][2]string{{"Usage", "```sh\n# install\n    npm i  pkg\n```\n\ndone"}}, components(article))
	})

	t.Run("uses the first level-one heading of extractor output", func(t *testing.T) {
		t.Parallel()

		article := segment(t, &docscout.CrawledPage{
			RawContent:  "## Props\n\nsize\n\n# Button\n\ntext",
			Title:       "Storybook",
			ExtractorID: "storybook",
		})

		assert.Equal(t, "Button", article.Title)
	})

	t.Run("prefers the page title for plain markdown files", func(t *testing.T) {
		t.Parallel()

		article := segment(t, &docscout.CrawledPage{RawContent: "# Heading\n\ntext", Title: "Readme"})

		assert.Equal(t, "Readme", article.Title)
	})

	t.Run("keeps the filename title of repository files over their first heading", func(t *testing.T) {
		t.Parallel()

		article := segment(t, &docscout.CrawledPage{
			URL:        "https://github.com/o/r/blob/main/docs/getting-started.md",
			Path:       "/docs/getting-started.md",
			RawContent: "# Welcome to the project\n\nInstall it.",
			Title:      "Getting Started",
		})

		assert.Equal(t, "Getting Started", article.Title)
	})

	t.Run("strips closing hashes but keeps a trailing hash in the title", func(t *testing.T) {
		t.Parallel()

		article := segment(t, &docscout.CrawledPage{RawContent: "## C#\n\nlanguage\n\n## Setup ##\n\nsteps"})

		assert.Equal(t, [][2]string{{"C#", "language"}, {"Setup", "steps"}}, components(article))
	})

	t.Run("drops headings without a body", func(t *testing.T) {
		t.Parallel()

		article := segment(t, &docscout.CrawledPage{RawContent: "# Empty\n\n## Full\n\ntext"})

		assert.Equal(t, [][2]string{{"Full", "text"}}, components(article))
	})

	t.Run("returns nil for whitespace-only content", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, segment(t, &docscout.CrawledPage{RawContent: "\n \t\n"}))
	})
}
