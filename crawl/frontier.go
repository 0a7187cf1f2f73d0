package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/docscout"
	"github.com/fwojciec/docscout/bloom"
)

// Frontier sizing for the in-memory request queue.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate for deduplication.
	frontierFalsePositiveRate = 0.01
)

// Compile-time interface verification.
var (
	_ docscout.QueueStore   = (*MemoryStore)(nil)
	_ docscout.RequestQueue = (*Frontier)(nil)
	_ docscout.ResultSink   = (*MemorySink)(nil)
)

// MemoryStore keeps named request queues and result sinks in memory.
// It is safe for concurrent use by multiple goroutines.
type MemoryStore struct {
	mu     sync.Mutex
	queues map[string]*Frontier
	sinks  map[string]*MemorySink
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		queues: make(map[string]*Frontier),
		sinks:  make(map[string]*MemorySink),
	}
}

// OpenQueue returns the queue with the given name, creating it if needed.
func (s *MemoryStore) OpenQueue(_ context.Context, name string) (docscout.RequestQueue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[name]
	if !ok {
		q = NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
		s.queues[name] = q
	}
	return q, nil
}

// OpenSink returns the sink with the given name, creating it if needed.
func (s *MemoryStore) OpenSink(_ context.Context, name string) (docscout.ResultSink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sink, ok := s.sinks[name]
	if !ok {
		sink = &MemorySink{}
		s.sinks[name] = sink
	}
	return sink, nil
}

// Frontier is an in-memory FIFO request queue deduplicated on the request's
// unique key. A Bloom filter answers for keys never seen; its positives are
// confirmed against the exact key set, so false positives never drop a page.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	keys  map[string]struct{}
	queue []docscout.Request
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{seen: bloom.NewFilter(n, fpRate), keys: make(map[string]struct{})}
}

// Add enqueues req. Returns false if its unique key has already been seen.
func (f *Frontier) Add(_ context.Context, req docscout.Request) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := req.UniqueKey
	if key == "" {
		key = docscout.URLPath(req.URL)
	}
	if !f.seen.Claim(key) {
		if _, dup := f.keys[key]; dup {
			return false, nil
		}
	}
	f.keys[key] = struct{}{}

	req.UniqueKey = key
	f.queue = append(f.queue, req)
	return true, nil
}

// Next returns the oldest queued request.
// The bool result is false if the frontier is empty.
func (f *Frontier) Next(_ context.Context) (docscout.Request, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return docscout.Request{}, false, nil
	}
	req := f.queue[0]
	f.queue = f.queue[1:]
	return req, true, nil
}

// Len returns the number of queued requests.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Drop clears the queue and its dedup state.
func (f *Frontier) Drop(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen.Reset()
	clear(f.keys)
	f.queue = nil
	return nil
}

// MemorySink collects harvested pages in memory.
type MemorySink struct {
	mu    sync.Mutex
	pages []*docscout.CrawledPage
}

// Push appends pages to the sink.
func (s *MemorySink) Push(_ context.Context, pages []*docscout.CrawledPage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = append(s.pages, pages...)
	return nil
}

// Drop removes every stored page.
func (s *MemorySink) Drop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = nil
	return nil
}

// Pages returns a copy of the stored pages.
func (s *MemorySink) Pages() []*docscout.CrawledPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*docscout.CrawledPage(nil), s.pages...)
}
