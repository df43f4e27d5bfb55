// Package metrics exposes Prometheus collectors for the scraper service.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scraperPagesTotal          prometheus.Counter
	scraperProductsTotal       *prometheus.CounterVec
	scraperGatewayRetriesTotal prometheus.Counter
	scraperRunDurationSeconds  prometheus.Histogram
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init registers the collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		scraperPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_pages_total",
			Help: "Total number of listing pages fetched.",
		})
		scraperProductsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_products_total",
			Help: "Total number of products seen, labeled by outcome (accepted|skipped).",
		}, []string{"outcome"})
		scraperGatewayRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_gateway_retries_total",
			Help: "Total number of gateway retry attempts.",
		})
		scraperRunDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "scraper_run_duration_seconds",
			Help:    "Histogram of end-to-end scrape durations.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		})
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		}, []string{"method", "code"})
		httpRequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route"})
	})
}

// PageFetched increments the listing page counter.
func PageFetched() {
	if scraperPagesTotal != nil {
		scraperPagesTotal.Inc()
	}
}

// ProductAccepted counts a product accepted as new or changed.
func ProductAccepted() {
	if scraperProductsTotal != nil {
		scraperProductsTotal.WithLabelValues("accepted").Inc()
	}
}

// ProductSkipped counts a product skipped as unchanged.
func ProductSkipped() {
	if scraperProductsTotal != nil {
		scraperProductsTotal.WithLabelValues("skipped").Inc()
	}
}

// GatewayRetry counts one gateway retry attempt.
func GatewayRetry() {
	if scraperGatewayRetriesTotal != nil {
		scraperGatewayRetriesTotal.Inc()
	}
}

// ObserveRun records a completed scrape duration.
func ObserveRun(d time.Duration) {
	if scraperRunDurationSeconds != nil {
		scraperRunDurationSeconds.Observe(d.Seconds())
	}
}

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if httpRequestsTotal == nil || httpRequestDurationSeconds == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}
