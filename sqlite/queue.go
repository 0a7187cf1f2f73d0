package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docscout"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var (
	_ docscout.QueueStore   = (*QueueStore)(nil)
	_ docscout.RequestQueue = (*RequestQueue)(nil)
	_ docscout.ResultSink   = (*ResultSink)(nil)
)

// QueueStore implements docscout.QueueStore using SQLite. Queues and sinks
// with the same name share rows across process restarts.
type QueueStore struct {
	db *DB
}

// NewQueueStore creates a new QueueStore.
func NewQueueStore(db *DB) *QueueStore {
	return &QueueStore{db: db}
}

// OpenQueue returns the request queue with the given name.
func (s *QueueStore) OpenQueue(_ context.Context, name string) (docscout.RequestQueue, error) {
	if name == "" {
		return nil, docscout.Errorf(docscout.EINVALID, "queue name required")
	}
	return &RequestQueue{db: s.db, name: name}, nil
}

// OpenSink returns the result sink with the given name.
func (s *QueueStore) OpenSink(_ context.Context, name string) (docscout.ResultSink, error) {
	if name == "" {
		return nil, docscout.Errorf(docscout.EINVALID, "sink name required")
	}
	return &ResultSink{db: s.db, name: name}, nil
}

// RequestQueue is a FIFO of requests stored in the requests table.
// Handled rows are kept so their keys stay deduplicated until Drop.
type RequestQueue struct {
	db   *DB
	name string
}

// Add enqueues req unless its unique key is already in the queue.
func (q *RequestQueue) Add(ctx context.Context, req docscout.Request) (bool, error) {
	key := req.UniqueKey
	if key == "" {
		key = docscout.URLPath(req.URL)
	}

	res, err := q.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO requests (queue, unique_key, url, depth, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, q.name, key, req.URL, req.Depth, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("add request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Next marks the oldest pending request handled and returns it.
func (q *RequestQueue) Next(ctx context.Context) (docscout.Request, bool, error) {
	var (
		seq int64
		req docscout.Request
	)
	err := q.db.QueryRowContext(ctx, `
		UPDATE requests SET handled = 1
		WHERE seq = (
			SELECT seq FROM requests
			WHERE queue = ? AND handled = 0
			ORDER BY seq
			LIMIT 1
		)
		RETURNING seq, url, unique_key, depth
	`, q.name).Scan(&seq, &req.URL, &req.UniqueKey, &req.Depth)
	if errors.Is(err, sql.ErrNoRows) {
		return docscout.Request{}, false, nil
	}
	if err != nil {
		return docscout.Request{}, false, fmt.Errorf("next request: %w", err)
	}
	return req, true, nil
}

// Pending returns the number of requests not yet handed out by Next.
func (q *RequestQueue) Pending(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM requests WHERE queue = ? AND handled = 0
	`, q.name).Scan(&n)
	return n, err
}

// Drop deletes every request of the queue, handled or not.
func (q *RequestQueue) Drop(ctx context.Context) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM requests WHERE queue = ?`, q.name); err != nil {
		return fmt.Errorf("drop queue %s: %w", q.name, err)
	}
	return nil
}

// ResultSink stores harvested pages in the results table in push order.
type ResultSink struct {
	db   *DB
	name string
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	for i := range b {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}

// Push stores pages in a single transaction.
func (s *ResultSink) Push(ctx context.Context, pages []*docscout.CrawledPage) error {
	if len(pages) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position), -1) + 1 FROM results WHERE sink = ?
	`, s.name).Scan(&next); err != nil {
		return fmt.Errorf("push results: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i, p := range pages {
		meta, err := json.Marshal(p.Metadata)
		if err != nil {
			return docscout.Errorf(docscout.EINVALID, "page metadata: %v", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO results (id, sink, position, url, path, title, extractor_id, raw_content, content_hash, metadata, depth, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, uuid.New().String(), s.name, next+i, p.URL, p.Path, p.Title, p.ExtractorID,
			p.RawContent, hashContent(p.RawContent), string(meta), p.Depth, now); err != nil {
			return fmt.Errorf("push result %s: %w", p.URL, err)
		}
	}
	return tx.Commit()
}

// Result is a stored page with its storage attributes.
type Result struct {
	ID          string
	ContentHash string
	CreatedAt   time.Time
	Page        *docscout.CrawledPage
}

// Results returns stored pages in push order. Non-positive limit and offset
// are ignored.
func (s *ResultSink) Results(ctx context.Context, limit, offset int) ([]*Result, error) {
	var query strings.Builder
	query.WriteString(`
		SELECT id, url, path, title, extractor_id, raw_content, content_hash, metadata, depth, created_at
		FROM results WHERE sink = ? ORDER BY position`)
	args := []any{s.name}
	switch {
	case limit > 0:
		query.WriteString(" LIMIT ?")
		args = append(args, limit)
	case offset > 0:
		query.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		args = append(args, offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		var (
			r         Result
			p         docscout.CrawledPage
			meta      string
			createdAt string
		)
		if err := rows.Scan(&r.ID, &p.URL, &p.Path, &p.Title, &p.ExtractorID, &p.RawContent,
			&r.ContentHash, &meta, &p.Depth, &createdAt); err != nil {
			return nil, err
		}
		if meta != "null" {
			if err := json.Unmarshal([]byte(meta), &p.Metadata); err != nil {
				return nil, fmt.Errorf("failed to parse metadata: %w", err)
			}
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("result %s created_at: %w", r.ID, err)
		}
		r.Page = &p
		results = append(results, &r)
	}
	return results, rows.Err()
}

// Drop deletes every stored page of the sink.
func (s *ResultSink) Drop(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE sink = ?`, s.name); err != nil {
		return fmt.Errorf("drop sink %s: %w", s.name, err)
	}
	return nil
}
