package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fwojciec/docscout/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates the queue tables", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(sqlite.Memory)
		require.NoError(t, db.Open())
		t.Cleanup(func() { db.Close() })

		ctx := context.Background()
		for _, table := range []string{"requests", "results"} {
			var n int
			require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n), table)
			assert.Zero(t, n, table)
		}
	})

	t.Run("fails when the directory does not exist", func(t *testing.T) {
		t.Parallel()

		assert.Error(t, sqlite.NewDB("/nonexistent/dir/queue.db").Open())
	})

	t.Run("uses WAL for file databases", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(filepath.Join(t.TempDir(), "queue.db"))
		require.NoError(t, db.Open())
		t.Cleanup(func() { db.Close() })

		var mode string
		require.NoError(t, db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", mode)
	})

	t.Run("keeps rows across reopen", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "queue.db")

		db := sqlite.NewDB(path)
		require.NoError(t, db.Open())
		_, err := db.ExecContext(ctx, `INSERT INTO requests (queue, unique_key, url, created_at)
			VALUES ('job', '/a', 'https://example.com/a', '2025-01-01T00:00:00Z')`)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db = sqlite.NewDB(path)
		require.NoError(t, db.Open())
		t.Cleanup(func() { db.Close() })

		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM requests").Scan(&n))
		assert.Equal(t, 1, n)
	})

	t.Run("close before open is a no-op", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, sqlite.NewDB(sqlite.Memory).Close())
	})
}
