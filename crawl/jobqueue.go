package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docscout"
)

// Harvest buffering.
const (
	// HarvestBatchSize is the number of buffered results that triggers a flush.
	HarvestBatchSize = 20
	// HarvestChunkSize is the number of results pushed to the sink at once.
	HarvestChunkSize = 5
)

// Reasons a discovered link is dropped before enqueue.
const (
	DropFragment = "fragment"
	DropHostname = "hostname"
	DropPath     = "path"
	DropInvalid  = "invalid"
)

// LinkStats counts what happened to discovered links.
type LinkStats struct {
	Enqueued        int
	Duplicates      int
	DroppedFragment int
	DroppedHostname int
	DroppedPath     int
	DroppedInvalid  int
}

// JobID derives the deterministic queue name for a crawl job from the host
// and path of startURL.
func JobID(startURL string) string {
	key := startURL
	if u, err := url.Parse(startURL); err == nil {
		key = u.Hostname() + u.EscapedPath()
	}
	return fmt.Sprintf("job-%016x", xxhash.Sum64String(key))
}

// JobQueue owns the request queue and result sink of one browser crawl job
// and applies scope filtering to discovered links before they are enqueued.
type JobQueue struct {
	Store docscout.QueueStore

	// AllowedHostname limits links to this host and its subdomains.
	AllowedHostname string

	// PathPrefix, when set, limits links to paths inside it.
	PathPrefix string

	Observer docscout.Observer
	Logger   *slog.Logger

	queue  docscout.RequestQueue
	sink   docscout.ResultSink
	buffer []*docscout.CrawledPage
	stats  LinkStats
}

// Initialize opens the job's queue and sink, drops whatever a previous run
// left in them, and seeds the queue with the normalized start URL.
// Calling it again restarts the job from scratch.
func (q *JobQueue) Initialize(ctx context.Context, startURL string) error {
	name := JobID(startURL)

	queue, err := q.Store.OpenQueue(ctx, name)
	if err != nil {
		return fmt.Errorf("open request queue %s: %w", name, err)
	}
	if err := queue.Drop(ctx); err != nil {
		return fmt.Errorf("drop request queue %s: %w", name, err)
	}

	sink, err := q.Store.OpenSink(ctx, name)
	if err != nil {
		return fmt.Errorf("open result sink %s: %w", name, err)
	}
	if err := sink.Drop(ctx); err != nil {
		return fmt.Errorf("drop result sink %s: %w", name, err)
	}

	q.queue = queue
	q.sink = sink
	q.buffer = nil
	q.stats = LinkStats{}

	seed := docscout.NormalizeURL(startURL)
	if _, err := q.queue.Add(ctx, docscout.Request{
		URL:       seed,
		UniqueKey: docscout.URLPath(seed),
	}); err != nil {
		return fmt.Errorf("seed request queue: %w", err)
	}
	return nil
}

// Next returns the next request to visit.
func (q *JobQueue) Next(ctx context.Context) (docscout.Request, bool, error) {
	return q.queue.Next(ctx)
}

// Filter applies the scope rules to a discovered link. It returns the
// request to enqueue and an empty reason, or the reason the link is dropped.
func (q *JobQueue) Filter(rawURL string, depth int) (docscout.Request, string) {
	if docscout.HasFragment(rawURL) {
		return docscout.Request{}, DropFragment
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return docscout.Request{}, DropInvalid
	}
	if !docscout.HostnameAllowed(u.Hostname(), q.AllowedHostname) {
		return docscout.Request{}, DropHostname
	}
	if q.PathPrefix != "" && !docscout.PathAllowed(u.Path, q.PathPrefix) {
		return docscout.Request{}, DropPath
	}

	clean := docscout.StripFragment(rawURL)
	return docscout.Request{
		URL:       clean,
		UniqueKey: docscout.URLPath(clean),
		Depth:     depth,
	}, ""
}

// EnqueueLinks filters links and enqueues the survivors at depth.
// Returns the number of newly enqueued requests.
func (q *JobQueue) EnqueueLinks(ctx context.Context, links []string, depth int) (int, error) {
	var added int
	for _, link := range links {
		req, reason := q.Filter(link, depth)
		if reason != "" {
			q.drop(reason)
			continue
		}
		ok, err := q.queue.Add(ctx, req)
		if err != nil {
			return added, fmt.Errorf("enqueue %s: %w", req.URL, err)
		}
		if !ok {
			q.stats.Duplicates++
			continue
		}
		q.stats.Enqueued++
		added++
	}
	return added, nil
}

func (q *JobQueue) drop(reason string) {
	switch reason {
	case DropFragment:
		q.stats.DroppedFragment++
	case DropHostname:
		q.stats.DroppedHostname++
	case DropPath:
		q.stats.DroppedPath++
	default:
		q.stats.DroppedInvalid++
	}
	if q.Observer != nil {
		q.Observer.LinkDropped(reason)
	}
}

// Harvest buffers a visited page for the result sink, flushing once
// HarvestBatchSize pages are buffered.
func (q *JobQueue) Harvest(ctx context.Context, page *docscout.CrawledPage) error {
	q.buffer = append(q.buffer, page)
	if len(q.buffer) < HarvestBatchSize {
		return nil
	}
	return q.Flush(ctx)
}

// Flush pushes every buffered page to the sink in chunks of HarvestChunkSize.
func (q *JobQueue) Flush(ctx context.Context) error {
	for len(q.buffer) > 0 {
		n := min(HarvestChunkSize, len(q.buffer))
		if err := q.sink.Push(ctx, q.buffer[:n]); err != nil {
			return fmt.Errorf("push results: %w", err)
		}
		q.buffer = q.buffer[n:]
	}
	q.buffer = nil
	return nil
}

// Stats returns the link counters.
func (q *JobQueue) Stats() LinkStats {
	return q.stats
}

// LogStats writes the link counters to the logger.
func (q *JobQueue) LogStats() {
	if q.Logger == nil {
		return
	}
	q.Logger.Debug("link filter",
		"enqueued", q.stats.Enqueued,
		"duplicates", q.stats.Duplicates,
		"dropped_fragment", q.stats.DroppedFragment,
		"dropped_hostname", q.stats.DroppedHostname,
		"dropped_path", q.stats.DroppedPath,
	)
}
