//go:build integration

package redis_test

import (
	"context"
	"os"
	"testing"

	"github.com/fwojciec/docscout"
	"github.com/fwojciec/docscout/redis"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openStore connects to REDIS_ADDR (default localhost:6379) under a unique
// prefix so parallel tests do not share keys.
func openStore(t *testing.T) *redis.QueueStore {
	t.Helper()
	store, err := redis.NewQueueStore(context.Background(), redis.Config{
		Addr:   os.Getenv("REDIS_ADDR"),
		Prefix: "docscout-test-" + uuid.NewString(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRequestQueue(t *testing.T) {
	t.Parallel()

	t.Run("deduplicates and returns requests in order", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		q, err := openStore(t).OpenQueue(ctx, "job")
		require.NoError(t, err)

		for _, u := range []string{"https://x.com/a", "https://x.com/b", "https://x.com/a#top"} {
			_, err := q.Add(ctx, docscout.Request{URL: u, UniqueKey: docscout.URLPath(u), Depth: 2})
			require.NoError(t, err)
		}

		first, ok, err := q.Next(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, docscout.Request{URL: "https://x.com/a", UniqueKey: "/a", Depth: 2}, first)

		second, ok, err := q.Next(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "/b", second.UniqueKey)

		_, ok, err = q.Next(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		added, err := q.Add(ctx, docscout.Request{URL: "https://x.com/a"})
		require.NoError(t, err)
		assert.False(t, added, "handled keys stay deduplicated")
	})

	t.Run("drop resets dedup state", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		q, err := openStore(t).OpenQueue(ctx, "job")
		require.NoError(t, err)

		_, err = q.Add(ctx, docscout.Request{URL: "https://x.com/a"})
		require.NoError(t, err)
		require.NoError(t, q.Drop(ctx))

		n, err := q.(*redis.RequestQueue).Pending(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		added, err := q.Add(ctx, docscout.Request{URL: "https://x.com/a"})
		require.NoError(t, err)
		assert.True(t, added)
	})
}

func TestResultSink(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sink, err := openStore(t).OpenSink(ctx, "job")
	require.NoError(t, err)

	page := &docscout.CrawledPage{URL: "https://x.com/a", Path: "/a", Title: "A", RawContent: "# A", ExtractorID: "storybook", Metadata: map[string]string{"name": "A"}}
	require.NoError(t, sink.Push(ctx, []*docscout.CrawledPage{page}))
	require.NoError(t, sink.Push(ctx, []*docscout.CrawledPage{{URL: "https://x.com/b"}}))

	pages, err := sink.(*redis.ResultSink).Pages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, page, pages[0])
	assert.Equal(t, "https://x.com/b", pages[1].URL)

	require.NoError(t, sink.Drop(ctx))
	pages, err = sink.(*redis.ResultSink).Pages(ctx)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestNewQueueStore_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := redis.NewQueueStore(context.Background(), redis.Config{Addr: "127.0.0.1:1"})

	assert.Equal(t, docscout.EFATAL, docscout.ErrorCode(err))
}
