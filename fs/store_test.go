package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/docscout"
	"github.com/fwojciec/docscout/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func article(url, title, body string) *docscout.Article {
	return &docscout.Article{
		URL:        url,
		Title:      title,
		Components: []*docscout.ArticleComponent{{Title: title, Body: body}},
	}
}

func TestArticleStore_SaveWritesToTempDirectory(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store := fs.NewArticleStore(base, "output")

	err := store.Save(context.Background(), article("https://example.com/docs/api", "API", "Welcome to the API."))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(base, "output.tmp", "docs", "api.md"))
	require.NoError(t, err, "file should exist in temp directory")

	_, err = os.Stat(filepath.Join(base, "output", "docs", "api.md"))
	assert.True(t, os.IsNotExist(err), "final directory should not exist until commit")
}

func TestArticleStore_CommitMovesFromTempToFinal(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store := fs.NewArticleStore(base, "output")
	require.NoError(t, store.Save(context.Background(), article("https://example.com/a", "A", "a body")))

	require.NoError(t, store.Commit())

	content, err := os.ReadFile(filepath.Join(base, "output", "a.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "source: https://example.com/a")
	assert.Contains(t, string(content), "a body")

	_, err = os.Stat(filepath.Join(base, "output.tmp"))
	assert.True(t, os.IsNotExist(err), "temp directory should be removed after commit")
}

func TestArticleStore_CommitReplacesPreviousOutput(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	first := fs.NewArticleStore(base, "output")
	require.NoError(t, first.Save(context.Background(), article("https://example.com/old", "Old", "old")))
	require.NoError(t, first.Commit())

	second := fs.NewArticleStore(base, "output")
	require.NoError(t, second.Save(context.Background(), article("https://example.com/new", "New", "new")))
	require.NoError(t, second.Commit())

	_, err := os.Stat(filepath.Join(base, "output", "old.md"))
	assert.True(t, os.IsNotExist(err), "stale article should be gone")
	_, err = os.Stat(filepath.Join(base, "output", "new.md"))
	require.NoError(t, err)
}

func TestArticleStore_AbortCleansUpTempDirectory(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store := fs.NewArticleStore(base, "output")
	require.NoError(t, store.Save(context.Background(), article("https://example.com/a", "A", "a")))

	require.NoError(t, store.Abort())

	_, err := os.Stat(filepath.Join(base, "output.tmp"))
	assert.True(t, os.IsNotExist(err), "temp directory should be removed after abort")
	_, err = os.Stat(filepath.Join(base, "output"))
	assert.True(t, os.IsNotExist(err), "final directory should not exist after abort")
}

func TestArticleStore_RejectsPathTraversal(t *testing.T) {
	t.Parallel()

	store := fs.NewArticleStore(t.TempDir(), "output")

	err := store.Save(context.Background(), article("https://example.com/../../../etc/passwd", "Bad", "bad"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "path traversal")
}
