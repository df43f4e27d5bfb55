package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpkgyl/catalog-scraper/internal/gateway"
	"github.com/dpkgyl/catalog-scraper/internal/scrape"
)

func newTestGateway(retries int) *gateway.Gateway {
	return gateway.New(gateway.Config{
		RetryCount: retries,
		RetryDelay: 0,
		Timeout:    5 * time.Second,
	}, nil)
}

func TestRetrieveFirstAttemptSucceeds(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html>listing</html>"))
	}))
	defer ts.Close()

	g := newTestGateway(3)
	body, err := g.Retrieve(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("<html>listing</html>"), body)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRetrieveRecoversWithinRetryBudget(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer ts.Close()

	g := newTestGateway(3)
	body, err := g.Retrieve(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("recovered"), body)
	assert.Equal(t, int32(3), hits.Load())
}

func TestRetrieveExhaustionReturnsFetchError(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	g := newTestGateway(2)
	_, err := g.Retrieve(context.Background(), ts.URL)

	var fetchErr *scrape.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 3, fetchErr.Attempts, "retry_count+1 total attempts")
	assert.Equal(t, http.StatusInternalServerError, fetchErr.LastStatus)
	assert.Equal(t, int32(3), hits.Load())
}

func TestRetrieveUnreachableHost(t *testing.T) {
	t.Parallel()

	g := newTestGateway(1)
	_, err := g.Retrieve(context.Background(), "http://127.0.0.1:1/listing")

	var fetchErr *scrape.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 2, fetchErr.Attempts)
	assert.Zero(t, fetchErr.LastStatus, "no response was obtained")
}

func TestRetrieveContextCanceledBetweenAttempts(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	g := gateway.New(gateway.Config{
		RetryCount: 5,
		RetryDelay: time.Minute,
		Timeout:    5 * time.Second,
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := g.Retrieve(ctx, ts.URL)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second, "cancellation interrupts the retry sleep")
}
