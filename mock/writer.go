package mock

import (
	"context"

	"github.com/fwojciec/docscout"
)

var _ docscout.ArticleStore = (*ArticleStore)(nil)

// ArticleStore is a mock implementation of docscout.ArticleStore.
type ArticleStore struct {
	SaveFn   func(ctx context.Context, article *docscout.Article) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *ArticleStore) Save(ctx context.Context, article *docscout.Article) error {
	return s.SaveFn(ctx, article)
}

func (s *ArticleStore) Commit() error {
	return s.CommitFn()
}

func (s *ArticleStore) Abort() error {
	return s.AbortFn()
}
