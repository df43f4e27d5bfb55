// Package gateway implements the retrieval gateway on top of a gocolly
// collector: a bounded retry loop with a fixed inter-attempt delay.
package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/dpkgyl/catalog-scraper/internal/metrics"
	"github.com/dpkgyl/catalog-scraper/internal/scrape"
)

// Config controls collector and retry behavior.
type Config struct {
	RetryCount int
	RetryDelay time.Duration
	Timeout    time.Duration
	UserAgent  string
}

// Gateway fetches URLs with retry. It implements scrape.Gateway.
type Gateway struct {
	cfg           Config
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// New builds a Gateway.
func New(cfg Config, logger *zap.Logger) *Gateway {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := colly.NewCollector(colly.Async(false), colly.IgnoreRobotsTxt())
	c.AllowURLRevisit = true
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.SetRequestTimeout(cfg.Timeout)
	return &Gateway{cfg: cfg, baseCollector: c, logger: logger}
}

// Retrieve issues GETs for url until a 200 arrives or retry_count+1 attempts
// are spent, sleeping the configured delay between attempts. Exhaustion
// returns a typed *scrape.FetchError rather than the last failed response.
func (g *Gateway) Retrieve(ctx context.Context, url string) ([]byte, error) {
	attempts := g.cfg.RetryCount + 1
	var (
		lastStatus int
		lastErr    error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			metrics.GatewayRetry()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(g.cfg.RetryDelay):
			}
		}
		body, status, err := g.fetch(ctx, url)
		if err == nil && status == http.StatusOK {
			return body, nil
		}
		lastStatus, lastErr = status, err
		g.logger.Warn("fetch attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	return nil, &scrape.FetchError{URL: url, Attempts: attempts, LastStatus: lastStatus, Err: lastErr}
}

func (g *Gateway) fetch(ctx context.Context, url string) ([]byte, int, error) {
	collector := g.baseCollector.Clone()
	collector.AllowURLRevisit = true

	var (
		body     []byte
		status   int
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()
	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case visitErr := <-done:
		if fetchErr != nil {
			return nil, status, fetchErr
		}
		if visitErr != nil {
			return nil, status, visitErr
		}
	}
	return body, status, nil
}
