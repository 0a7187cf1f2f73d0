package crawl

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/fwojciec/docscout"
	"golang.org/x/time/rate"
)

var _ docscout.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces requests to each host with a token bucket of burst 1.
// Engines each get their own limiter.
type DomainLimiter struct {
	rps float64

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewDomainLimiter allows rps requests per second per host. Limiting is off
// when rps is not positive.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{rps: rps, buckets: map[string]*rate.Limiter{}}
}

// Wait blocks until the host of domain may receive another request. Hosts
// are compared without case or port.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	if d.rps <= 0 {
		return ctx.Err()
	}
	return d.bucket(hostKey(domain)).Wait(ctx)
}

func (d *DomainLimiter) bucket(host string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buckets[host]
	if !ok {
		b = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.buckets[host] = b
	}
	return b
}

func hostKey(domain string) string {
	if h, _, err := net.SplitHostPort(domain); err == nil {
		domain = h
	}
	return strings.ToLower(domain)
}
