package docscout

import "context"

// Request is one entry of a browser crawl request queue.
type Request struct {
	URL string

	// UniqueKey is the path plus query of URL. Requests with the same key
	// are the same page.
	UniqueKey string

	Depth int
}

// RequestQueue is a named, persistent queue of crawl requests.
type RequestQueue interface {
	// Add enqueues req unless its UniqueKey was already added.
	// Returns false for duplicates.
	Add(ctx context.Context, req Request) (bool, error)

	// Next dequeues the next request in FIFO order.
	// The bool result is false when the queue is empty.
	Next(ctx context.Context) (Request, bool, error)

	// Drop removes every request and the dedup state.
	// The queue stays usable and behaves as if newly created.
	Drop(ctx context.Context) error
}

// ResultSink stores harvested pages for a job.
type ResultSink interface {
	Push(ctx context.Context, pages []*CrawledPage) error

	// Drop removes everything pushed to the sink. The sink stays usable.
	Drop(ctx context.Context) error
}

// QueueStore opens named queues and sinks.
// Opening an existing name returns the existing state.
type QueueStore interface {
	OpenQueue(ctx context.Context, name string) (RequestQueue, error)
	OpenSink(ctx context.Context, name string) (ResultSink, error)
}
