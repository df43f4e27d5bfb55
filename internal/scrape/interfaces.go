package scrape

import (
	"context"
	"time"
)

// Gateway retrieves the raw bytes behind a URL.
type Gateway interface {
	Retrieve(ctx context.Context, url string) ([]byte, error)
}

// Extractor turns one listing page's markup into accepted products and their
// image assets.
type Extractor interface {
	Extract(ctx context.Context, markup []byte) ([]Product, []ImageAsset, error)
}

// PriceCache decides whether a product's price changed since it was last
// accepted, and records accepted prices.
type PriceCache interface {
	IsDifferent(key string, price float64) bool
	Put(key string, price float64)
}

// Sink persists products and image assets.
type Sink interface {
	SaveProduct(ctx context.Context, p Product) error
	SaveImage(ctx context.Context, img ImageAsset) error
}

// Notifier delivers a completion message. Fire-and-forget; no retry.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// RunRecord summarizes one completed scrape for the history store.
type RunRecord struct {
	ID        string
	BaseURL   string
	Pages     int
	Accepted  int
	StartedAt time.Time
	Duration  time.Duration
}

// RunStore persists scrape-run history rows.
type RunStore interface {
	RecordRun(ctx context.Context, rec RunRecord) error
}
