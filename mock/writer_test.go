package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/docscout"
	"github.com/fwojciec/docscout/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleStore_ImplementsInterface(t *testing.T) {
	t.Parallel()

	var _ docscout.ArticleStore = &mock.ArticleStore{}
}

func TestArticleStore_Save(t *testing.T) {
	t.Parallel()

	t.Run("delegates to SaveFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *docscout.Article
		s := &mock.ArticleStore{
			SaveFn: func(_ context.Context, article *docscout.Article) error {
				calledWith = article
				return nil
			},
		}

		article := &docscout.Article{URL: "https://example.com/doc", Title: "Test Doc"}

		err := s.Save(context.Background(), article)

		require.NoError(t, err)
		assert.Equal(t, article, calledWith)
	})
}

func TestObserver_NilFunctionsAreNoOps(t *testing.T) {
	t.Parallel()

	o := &mock.Observer{}

	assert.NotPanics(t, func() {
		o.PageYielded(docscout.EngineStatic)
		o.TierFinished(docscout.EngineStatic, 1, "accepted")
		o.LinkDropped("fragment")
	})
}
