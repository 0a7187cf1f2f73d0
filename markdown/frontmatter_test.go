package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFrontMatter(t *testing.T) {
	t.Parallel()

	t.Run("keeps scalar values only", func(t *testing.T) {
		t.Parallel()

		got := parseFrontMatter("title: Guide\nweight: 3\ndraft: false\ntags:\n  - a\n  - b\nnav:\n  parent: x")

		assert.Equal(t, map[string]string{"title": "Guide", "weight": "3", "draft": "false"}, got)
	})

	t.Run("falls back to key value lines", func(t *testing.T) {
		t.Parallel()

		got := parseFrontMatter("title: 'It''s: broken\ndescription: \"Quoted\"\n: nokey")

		assert.Equal(t, "Quoted", got["description"])
		assert.Equal(t, "'It''s: broken", got["title"])
		assert.NotContains(t, got, "")
	})
}

func TestSplitFrontMatter(t *testing.T) {
	t.Parallel()

	t.Run("requires a closing delimiter", func(t *testing.T) {
		t.Parallel()

		_, rest, ok := splitFrontMatter("---\ntitle: x\n# A")

		assert.False(t, ok)
		assert.Equal(t, "---\ntitle: x\n# A", rest)
	})

	t.Run("returns the block and the body", func(t *testing.T) {
		t.Parallel()

		block, rest, ok := splitFrontMatter("---\ntitle: x\n---\n# A")

		assert.True(t, ok)
		assert.Equal(t, "title: x", block)
		assert.Equal(t, "# A", rest)
	})
}
