package mock

import (
	"context"

	"github.com/fwojciec/docscout"
)

// Compile-time interface verification.
var (
	_ docscout.RequestQueue  = (*RequestQueue)(nil)
	_ docscout.ResultSink    = (*ResultSink)(nil)
	_ docscout.QueueStore    = (*QueueStore)(nil)
	_ docscout.DomainLimiter = (*DomainLimiter)(nil)
)

// RequestQueue is a mock implementation of docscout.RequestQueue.
type RequestQueue struct {
	AddFn  func(ctx context.Context, req docscout.Request) (bool, error)
	NextFn func(ctx context.Context) (docscout.Request, bool, error)
	DropFn func(ctx context.Context) error
}

func (q *RequestQueue) Add(ctx context.Context, req docscout.Request) (bool, error) {
	return q.AddFn(ctx, req)
}

func (q *RequestQueue) Next(ctx context.Context) (docscout.Request, bool, error) {
	return q.NextFn(ctx)
}

func (q *RequestQueue) Drop(ctx context.Context) error {
	return q.DropFn(ctx)
}

// ResultSink is a mock implementation of docscout.ResultSink.
type ResultSink struct {
	PushFn func(ctx context.Context, pages []*docscout.CrawledPage) error
	DropFn func(ctx context.Context) error
}

func (s *ResultSink) Push(ctx context.Context, pages []*docscout.CrawledPage) error {
	return s.PushFn(ctx, pages)
}

func (s *ResultSink) Drop(ctx context.Context) error {
	return s.DropFn(ctx)
}

// QueueStore is a mock implementation of docscout.QueueStore.
type QueueStore struct {
	OpenQueueFn func(ctx context.Context, name string) (docscout.RequestQueue, error)
	OpenSinkFn  func(ctx context.Context, name string) (docscout.ResultSink, error)
}

func (s *QueueStore) OpenQueue(ctx context.Context, name string) (docscout.RequestQueue, error) {
	return s.OpenQueueFn(ctx, name)
}

func (s *QueueStore) OpenSink(ctx context.Context, name string) (docscout.ResultSink, error) {
	return s.OpenSinkFn(ctx, name)
}

// DomainLimiter is a mock implementation of docscout.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
