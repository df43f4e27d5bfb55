package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dpkgyl/catalog-scraper/internal/metrics"
)

// ErrInvalidRequest marks a request that fails validation before any work.
var ErrInvalidRequest = errors.New("invalid scrape request")

// Service drives a paginated scrape end to end: fetch each listing page,
// extract products, persist everything, record the run, notify.
//
// Invocations are serialized; the change-detection cache does unguarded
// read-then-write sequences per product, so at most one scrape may mutate it
// at a time.
type Service struct {
	mu        sync.Mutex
	gateway   Gateway
	extractor Extractor
	sink      Sink
	notifier  Notifier
	runs      RunStore
	logger    *zap.Logger
}

// NewService wires the orchestrator. runs may be nil to disable run history.
func NewService(gateway Gateway, extractor Extractor, sink Sink, notifier Notifier, runs RunStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		gateway:   gateway,
		extractor: extractor,
		sink:      sink,
		notifier:  notifier,
		runs:      runs,
		logger:    logger,
	}
}

// Scrape walks pages 1..req.Pages, accumulates accepted products across
// pages, persists products then images, and returns the accepted count. Any
// gateway or extraction failure aborts the whole scrape with nothing
// persisted.
func (s *Service) Scrape(ctx context.Context, req Request) (Result, error) {
	base, err := validateRequest(req)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	var (
		products []Product
		assets   []ImageAsset
	)
	for page := 1; page <= req.Pages; page++ {
		ref, err := url.Parse(strconv.Itoa(page))
		if err != nil {
			return Result{}, fmt.Errorf("page %d: build url: %w", page, err)
		}
		pageURL := base.ResolveReference(ref).String()
		markup, err := s.gateway.Retrieve(ctx, pageURL)
		if err != nil {
			return Result{}, fmt.Errorf("page %d: %w", page, err)
		}
		metrics.PageFetched()
		pageProducts, pageAssets, err := s.extractor.Extract(ctx, markup)
		if err != nil {
			return Result{}, fmt.Errorf("page %d: %w", page, err)
		}
		products = append(products, pageProducts...)
		assets = append(assets, pageAssets...)
	}

	for _, p := range products {
		if err := s.sink.SaveProduct(ctx, p); err != nil {
			return Result{}, fmt.Errorf("save product %q: %w", p.Title, err)
		}
	}
	for _, img := range assets {
		if err := s.sink.SaveImage(ctx, img); err != nil {
			return Result{}, fmt.Errorf("save image %q: %w", img.Key, err)
		}
	}

	accepted := len(products)
	duration := time.Since(started)
	metrics.ObserveRun(duration)
	s.recordRun(ctx, req, accepted, started, duration)

	message := fmt.Sprintf("Number of products updated: %d", accepted)
	if err := s.notifier.Notify(ctx, message); err != nil {
		// Notification is fire-and-forget; a failed delivery never fails the scrape.
		s.logger.Warn("notify failed", zap.Error(err))
	}

	s.logger.Info("scrape completed",
		zap.String("url", req.URL),
		zap.Int("pages", req.Pages),
		zap.Int("accepted", accepted),
		zap.Duration("duration", duration),
	)
	return Result{Accepted: accepted}, nil
}

func (s *Service) recordRun(ctx context.Context, req Request, accepted int, started time.Time, duration time.Duration) {
	if s.runs == nil {
		return
	}
	rec := RunRecord{
		ID:        uuid.NewString(),
		BaseURL:   req.URL,
		Pages:     req.Pages,
		Accepted:  accepted,
		StartedAt: started,
		Duration:  duration,
	}
	if err := s.runs.RecordRun(ctx, rec); err != nil {
		// History is best effort; a completed scrape is never failed for it.
		s.logger.Warn("record run failed", zap.Error(err))
	}
}

func validateRequest(req Request) (*url.URL, error) {
	if req.Pages < 1 {
		return nil, fmt.Errorf("%w: pages must be >= 1", ErrInvalidRequest)
	}
	base, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse url: %v", ErrInvalidRequest, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: url must be absolute", ErrInvalidRequest)
	}
	return base, nil
}
