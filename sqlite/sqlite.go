// Package sqlite persists browser crawl request queues and result sinks in
// SQLite, so an interrupted job can be inspected or resumed.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Memory is the path of a private in-memory database.
const Memory = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS requests (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	queue      TEXT NOT NULL,
	unique_key TEXT NOT NULL,
	url        TEXT NOT NULL,
	depth      INTEGER NOT NULL DEFAULT 0,
	handled    INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	UNIQUE (queue, unique_key)
);
CREATE INDEX IF NOT EXISTS idx_requests_pending ON requests(queue, handled, seq);

CREATE TABLE IF NOT EXISTS results (
	id           TEXT PRIMARY KEY,
	sink         TEXT NOT NULL,
	position     INTEGER NOT NULL,
	url          TEXT NOT NULL,
	path         TEXT NOT NULL DEFAULT '',
	title        TEXT NOT NULL DEFAULT '',
	extractor_id TEXT NOT NULL DEFAULT '',
	raw_content  TEXT NOT NULL DEFAULT '',
	content_hash TEXT NOT NULL DEFAULT '',
	metadata     TEXT NOT NULL DEFAULT '{}',
	depth        INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_sink ON results(sink, position);
`

// DB is a single-connection handle on a queue database.
type DB struct {
	path string
	conn *sql.DB
}

// NewDB returns a DB for path. Pass Memory for a throwaway database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open connects and applies the schema. Existing rows are kept.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", db.path, err)
	}
	// One writer at a time; queue pops rely on it.
	conn.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if db.path != Memory {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, stmt := range append(pragmas, schema) {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return fmt.Errorf("init %s: %w", db.path, err)
		}
	}
	db.conn = conn
	return nil
}

func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.conn.BeginTx(ctx, nil)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, query, args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, query, args...)
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(ctx, query, args...)
}
