package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fwojciec/docscout"
)

// Ensure ArticleStore implements docscout.ArticleStore at compile time.
var _ docscout.ArticleStore = (*ArticleStore)(nil)

// ArticleStore implements docscout.ArticleStore with atomic update semantics.
// Articles are saved to a temporary directory, then moved atomically on Commit.
type ArticleStore struct {
	baseDir string
	name    string
}

// NewArticleStore creates a new ArticleStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewArticleStore(baseDir, name string) *ArticleStore {
	return &ArticleStore{
		baseDir: baseDir,
		name:    name,
	}
}

func (s *ArticleStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *ArticleStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes article under the temporary directory.
func (s *ArticleStore) Save(ctx context.Context, article *docscout.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	relPath, err := URLToPath(article.URL)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(FormatArticle(article)), 0644)
}

// Commit replaces the output directory with the temporary one.
func (s *ArticleStore) Commit() error {
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort removes the temporary directory.
func (s *ArticleStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}
