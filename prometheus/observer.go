// Package prometheus exports crawl outcomes as Prometheus metrics.
package prometheus

import (
	"fmt"
	"net/http"

	"github.com/fwojciec/docscout"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ docscout.Observer = (*Observer)(nil)

// Observer implements docscout.Observer with counters registered on a
// caller-provided registry.
type Observer struct {
	pages     *prometheus.CounterVec
	tiers     *prometheus.CounterVec
	tierPages *prometheus.HistogramVec
	dropped   *prometheus.CounterVec
}

// NewObserver registers the crawl collectors against reg.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docscout_pages_total",
			Help: "Pages streamed, partitioned by engine.",
		}, []string{"engine"}),
		tiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docscout_tiers_total",
			Help: "Finished orchestrator tiers, partitioned by engine and outcome.",
		}, []string{"engine", "outcome"}),
		tierPages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docscout_tier_pages",
			Help:    "Pages yielded per finished tier.",
			Buckets: []float64{0, 1, 2, 5, 10, 50, 100, 500, 1000},
		}, []string{"engine"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docscout_links_dropped_total",
			Help: "Discovered links dropped before enqueue, partitioned by reason.",
		}, []string{"reason"}),
	}
	for _, c := range []prometheus.Collector{o.pages, o.tiers, o.tierPages, o.dropped} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register crawl collector: %w", err)
		}
	}
	return o, nil
}

// PageYielded counts one streamed page.
func (o *Observer) PageYielded(engine docscout.EngineID) {
	o.pages.WithLabelValues(string(engine)).Inc()
}

// TierFinished counts a finished tier and records how many pages it yielded.
func (o *Observer) TierFinished(engine docscout.EngineID, pages int, outcome string) {
	o.tiers.WithLabelValues(string(engine), outcome).Inc()
	o.tierPages.WithLabelValues(string(engine)).Observe(float64(pages))
}

// LinkDropped counts one dropped link.
func (o *Observer) LinkDropped(reason string) {
	o.dropped.WithLabelValues(reason).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
