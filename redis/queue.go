// Package redis stores browser crawl request queues and result sinks in Redis
// so several workers can share one job.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/docscout"
	"github.com/redis/go-redis/v9"
)

// Defaults for Config.
const (
	DefaultAddr   = "localhost:6379"
	DefaultPrefix = "docscout"
	DefaultTTL    = 24 * time.Hour
)

// Compile-time interface verification.
var (
	_ docscout.QueueStore   = (*QueueStore)(nil)
	_ docscout.RequestQueue = (*RequestQueue)(nil)
	_ docscout.ResultSink   = (*ResultSink)(nil)
)

// addScript adds the unique key to the seen set and enqueues the request only
// when the key was new, refreshing both TTLs.
var addScript = redis.NewScript(`
if redis.call("SADD", KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call("RPUSH", KEYS[2], ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call("EXPIRE", KEYS[1], ARGV[3])
	redis.call("EXPIRE", KEYS[2], ARGV[3])
end
return 1
`)

// Config configures the Redis connection and key layout.
type Config struct {
	Addr     string
	Password string
	DB       int

	// Prefix namespaces every key. Defaults to DefaultPrefix.
	Prefix string

	// TTL expires idle job keys. Zero means DefaultTTL; negative disables.
	TTL time.Duration
}

// QueueStore implements docscout.QueueStore on Redis lists and sets.
type QueueStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewQueueStore connects to Redis and verifies connectivity.
func NewQueueStore(ctx context.Context, cfg Config) (*QueueStore, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	switch {
	case cfg.TTL == 0:
		cfg.TTL = DefaultTTL
	case cfg.TTL < 0:
		cfg.TTL = 0
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, docscout.Errorf(docscout.EFATAL, "failed to connect to redis at %s: %v", cfg.Addr, err)
	}

	return &QueueStore{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}, nil
}

// Close closes the underlying Redis client.
func (s *QueueStore) Close() error {
	return s.client.Close()
}

func (s *QueueStore) key(name, kind string) string {
	return s.prefix + ":" + name + ":" + kind
}

// OpenQueue returns the request queue with the given name.
func (s *QueueStore) OpenQueue(_ context.Context, name string) (docscout.RequestQueue, error) {
	if name == "" {
		return nil, docscout.Errorf(docscout.EINVALID, "queue name required")
	}
	return &RequestQueue{
		client: s.client,
		list:   s.key(name, "queue"),
		seen:   s.key(name, "seen"),
		ttl:    s.ttl,
	}, nil
}

// OpenSink returns the result sink with the given name.
func (s *QueueStore) OpenSink(_ context.Context, name string) (docscout.ResultSink, error) {
	if name == "" {
		return nil, docscout.Errorf(docscout.EINVALID, "sink name required")
	}
	return &ResultSink{client: s.client, list: s.key(name, "results"), ttl: s.ttl}, nil
}

// RequestQueue is a Redis list of JSON requests guarded by a seen set.
type RequestQueue struct {
	client *redis.Client
	list   string
	seen   string
	ttl    time.Duration
}

// Add enqueues req unless its unique key is in the seen set.
func (q *RequestQueue) Add(ctx context.Context, req docscout.Request) (bool, error) {
	if req.UniqueKey == "" {
		req.UniqueKey = docscout.URLPath(req.URL)
	}
	data, err := json.Marshal(req)
	if err != nil {
		return false, docscout.Errorf(docscout.EINVALID, "encode request: %v", err)
	}
	added, err := addScript.Run(ctx, q.client, []string{q.seen, q.list},
		req.UniqueKey, data, int64(q.ttl/time.Second)).Int()
	if err != nil {
		return false, fmt.Errorf("add request: %w", err)
	}
	return added == 1, nil
}

// Next pops the oldest request.
func (q *RequestQueue) Next(ctx context.Context) (docscout.Request, bool, error) {
	data, err := q.client.LPop(ctx, q.list).Bytes()
	if errors.Is(err, redis.Nil) {
		return docscout.Request{}, false, nil
	}
	if err != nil {
		return docscout.Request{}, false, fmt.Errorf("next request: %w", err)
	}
	var req docscout.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return docscout.Request{}, false, docscout.Errorf(docscout.EINTERNAL, "decode request: %v", err)
	}
	return req, true, nil
}

// Pending returns the number of queued requests.
func (q *RequestQueue) Pending(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.list).Result()
}

// Drop deletes the queue and its seen set.
func (q *RequestQueue) Drop(ctx context.Context) error {
	return q.client.Del(ctx, q.list, q.seen).Err()
}

// ResultSink is a Redis list of JSON pages.
type ResultSink struct {
	client *redis.Client
	list   string
	ttl    time.Duration
}

// Push appends pages to the sink in one round trip.
func (s *ResultSink) Push(ctx context.Context, pages []*docscout.CrawledPage) error {
	if len(pages) == 0 {
		return nil
	}
	values := make([]any, 0, len(pages))
	for _, p := range pages {
		data, err := json.Marshal(p)
		if err != nil {
			return docscout.Errorf(docscout.EINVALID, "encode page %s: %v", p.URL, err)
		}
		values = append(values, data)
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, s.list, values...)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.list, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("push results: %w", err)
	}
	return nil
}

// Pages returns every stored page in push order.
func (s *ResultSink) Pages(ctx context.Context) ([]*docscout.CrawledPage, error) {
	raw, err := s.client.LRange(ctx, s.list, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	pages := make([]*docscout.CrawledPage, 0, len(raw))
	for _, r := range raw {
		var p docscout.CrawledPage
		if err := json.Unmarshal([]byte(r), &p); err != nil {
			return nil, docscout.Errorf(docscout.EINTERNAL, "decode page: %v", err)
		}
		pages = append(pages, &p)
	}
	return pages, nil
}

// Drop deletes every stored page.
func (s *ResultSink) Drop(ctx context.Context) error {
	return s.client.Del(ctx, s.list).Err()
}
