package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	first := scraperPagesTotal
	Init()
	if scraperPagesTotal != first {
		t.Fatal("Init replaced collectors on second call")
	}
}

func TestCounters(t *testing.T) {
	Init()

	before := testutil.ToFloat64(scraperPagesTotal)
	PageFetched()
	if got := testutil.ToFloat64(scraperPagesTotal); got != before+1 {
		t.Errorf("scraper_pages_total = %v; want %v", got, before+1)
	}

	accepted := testutil.ToFloat64(scraperProductsTotal.WithLabelValues("accepted"))
	ProductAccepted()
	if got := testutil.ToFloat64(scraperProductsTotal.WithLabelValues("accepted")); got != accepted+1 {
		t.Errorf("accepted counter = %v; want %v", got, accepted+1)
	}

	skipped := testutil.ToFloat64(scraperProductsTotal.WithLabelValues("skipped"))
	ProductSkipped()
	if got := testutil.ToFloat64(scraperProductsTotal.WithLabelValues("skipped")); got != skipped+1 {
		t.Errorf("skipped counter = %v; want %v", got, skipped+1)
	}

	retries := testutil.ToFloat64(scraperGatewayRetriesTotal)
	GatewayRetry()
	if got := testutil.ToFloat64(scraperGatewayRetriesTotal); got != retries+1 {
		t.Errorf("retry counter = %v; want %v", got, retries+1)
	}
}

func TestObserveHTTPRequestBeforeInitIsSafe(t *testing.T) {
	// Must not panic even if collectors are absent.
	saved := httpRequestsTotal
	httpRequestsTotal = nil
	defer func() { httpRequestsTotal = saved }()
	ObserveHTTPRequest("GET", "/healthz", 200, time.Millisecond)
}
