// Package scrape defines the core types shared across subsystems and the
// orchestrator that drives a paginated catalog scrape.
package scrape

// Product is one extracted catalog entry. The title is sanitized and serves
// as the natural key for caching and persistence. Immutable once produced.
type Product struct {
	Title    string  `json:"product_title"`
	Price    float64 `json:"product_price"`
	ImageURL string  `json:"-"`
}

// ImageAsset carries the raw bytes of a product illustration. Key equals the
// owning product's sanitized title.
type ImageAsset struct {
	Key  string
	Data []byte
}

// Request describes one scrape invocation: how many listing pages to walk
// and the catalog base URL they are resolved against.
type Request struct {
	Pages int    `json:"pages"`
	URL   string `json:"url"`
}

// Result is returned to the caller after a completed scrape.
type Result struct {
	Accepted int `json:"products_updated"`
}
