// Package metrics collects page-load metrics and serves them for
// Prometheus scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records mediator activity. It satisfies paging.Recorder.
type Collector struct {
	pageLoads     *prometheus.CounterVec
	pageLatency   *prometheus.HistogramVec
	itemsHydrated *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		pageLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hnreader_page_loads_total",
			Help: "Page loads by mediator, load kind and result status.",
		}, []string{"mediator", "kind", "status"}),
		pageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hnreader_page_load_seconds",
			Help:    "Wall time of one page load, including hydration and the store write.",
			Buckets: prometheus.DefBuckets,
		}, []string{"mediator"}),
		itemsHydrated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hnreader_items_hydrated_total",
			Help: "Items fetched and persisted by successful page loads.",
		}, []string{"mediator"}),
	}

	reg.MustRegister(
		c.pageLoads,
		c.pageLatency,
		c.itemsHydrated,
	)

	return c
}

// RecordPageLoad counts one finished load and observes its latency.
func (c *Collector) RecordPageLoad(mediator, kind, status string, elapsed time.Duration) {
	c.pageLoads.WithLabelValues(mediator, kind, status).Inc()
	c.pageLatency.WithLabelValues(mediator).Observe(elapsed.Seconds())
}

// RecordItemsHydrated adds n persisted items.
func (c *Collector) RecordItemsHydrated(mediator string, n int) {
	c.itemsHydrated.WithLabelValues(mediator).Add(float64(n))
}

// NewRouter serves /metrics from gatherer and a plain /healthz.
func NewRouter(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	return r
}

// NewServer wraps the router in an http.Server bound to addr.
func NewServer(addr string, gatherer prometheus.Gatherer) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      NewRouter(gatherer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
