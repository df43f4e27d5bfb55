package scrape_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpkgyl/catalog-scraper/internal/cache"
	"github.com/dpkgyl/catalog-scraper/internal/extract"
	"github.com/dpkgyl/catalog-scraper/internal/gateway"
	"github.com/dpkgyl/catalog-scraper/internal/notify"
	"github.com/dpkgyl/catalog-scraper/internal/scrape"
	fsstorage "github.com/dpkgyl/catalog-scraper/internal/storage/fs"
)

// TestScrapePipelineEndToEnd drives the real gateway, extractor, cache, and
// filesystem sink against a local catalog server across two runs.
func TestScrapePipelineEndToEnd(t *testing.T) {
	t.Parallel()

	var imageRequests atomic.Int32

	mux := http.NewServeMux()
	var ts *httptest.Server
	mux.HandleFunc("/shop/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		page := filepath.Base(r.URL.Path)
		fmt.Fprintf(w, `<html><body><ul class="products columns-4">
		  <li>
		    <img src="%[1]s/img/hover-%[2]s.jpg"/>
		    <img src="%[1]s/img/item-%[2]s.jpg" title="Item %[2]s"/>
		    <span class="price"><bdi><span>R</span>19.99</bdi></span>
		  </li>
		</ul></body></html>`, ts.URL, page)
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		imageRequests.Add(1)
		_, _ = w.Write([]byte("jpeg-bytes"))
	})
	ts = httptest.NewServer(mux)
	defer ts.Close()

	baseDir := t.TempDir()
	sink, err := fsstorage.New(fsstorage.Config{BasePath: baseDir})
	require.NoError(t, err)

	gw := gateway.New(gateway.Config{RetryCount: 1, Timeout: 5 * time.Second}, nil)
	priceCache := cache.NewPriceCache()
	extractor := extract.New(extract.DefaultRules(), priceCache, gw, nil)
	notifier := notify.NewMemory()
	svc := scrape.NewService(gw, extractor, sink, notifier, nil, nil)

	req := scrape.Request{Pages: 2, URL: ts.URL + "/shop/"}

	result, err := svc.Scrape(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Accepted)
	assert.Equal(t, int32(2), imageRequests.Load())

	// Persisted artifacts for page 1's product.
	data, err := os.ReadFile(filepath.Join(baseDir, "Item 1.json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Item 1", doc["product_title"])
	assert.Equal(t, 19.99, doc["product_price"])
	assert.Equal(t, filepath.Join(baseDir, "Item 1.jpg"), doc["path_to_image"])

	img, err := os.ReadFile(filepath.Join(baseDir, "Item 1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), img)

	// Second run over an unchanged catalog accepts nothing and fetches no images.
	result, err = svc.Scrape(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Accepted)
	assert.Equal(t, int32(2), imageRequests.Load())

	require.Len(t, notifier.Messages(), 2)
	assert.Equal(t, "Number of products updated: 2", notifier.Messages()[0])
	assert.Equal(t, "Number of products updated: 0", notifier.Messages()[1])
}
