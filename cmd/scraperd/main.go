// Package main wires together the catalog scraper service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dpkgyl/catalog-scraper/internal/api"
	"github.com/dpkgyl/catalog-scraper/internal/auth"
	"github.com/dpkgyl/catalog-scraper/internal/cache"
	"github.com/dpkgyl/catalog-scraper/internal/config"
	"github.com/dpkgyl/catalog-scraper/internal/extract"
	"github.com/dpkgyl/catalog-scraper/internal/gateway"
	"github.com/dpkgyl/catalog-scraper/internal/logging"
	"github.com/dpkgyl/catalog-scraper/internal/metrics"
	"github.com/dpkgyl/catalog-scraper/internal/notify"
	"github.com/dpkgyl/catalog-scraper/internal/scrape"
	fsstorage "github.com/dpkgyl/catalog-scraper/internal/storage/fs"
	"github.com/dpkgyl/catalog-scraper/internal/storage/postgres"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	gw := gateway.New(gateway.Config{
		RetryCount: cfg.Gateway.RetryCount,
		RetryDelay: cfg.Gateway.RetryDelay(),
		Timeout:    cfg.Gateway.Timeout(),
		UserAgent:  cfg.Gateway.UserAgent,
	}, logger)

	priceCache := cache.NewPriceCache()
	extractor := extract.New(extract.Rules{
		ContainerClass:  cfg.Extract.ContainerClass,
		ImageIndex:      cfg.Extract.ImageIndex,
		PriceSelector:   cfg.Extract.PriceSelector,
		PriceChildIndex: cfg.Extract.PriceChildIndex,
	}, priceCache, gw, logger)

	sink, err := fsstorage.New(fsstorage.Config{BasePath: cfg.Storage.BasePath})
	if err != nil {
		logger.Fatal("sink init failed", zap.Error(err))
	}

	var notifier scrape.Notifier
	if cfg.PubSub.ProjectID != "" && cfg.PubSub.TopicName != "" {
		ps, psErr := notify.NewPubSub(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicName)
		if psErr != nil {
			logger.Fatal("pubsub notifier init failed", zap.Error(psErr))
		}
		logger.Info("using pubsub notifier", zap.String("topic", cfg.PubSub.TopicName))
		notifier = ps
	} else {
		notifier = notify.NewConsole(logger)
	}

	var runs scrape.RunStore
	if cfg.DB.DSN != "" {
		store, dbErr := postgres.NewRunStore(ctx, postgres.RunStoreConfig{
			DSN:      cfg.DB.DSN,
			Table:    cfg.DB.Table,
			MaxConns: cfg.DB.MaxConns,
		})
		if dbErr != nil {
			logger.Fatal("run store init failed", zap.Error(dbErr))
		}
		defer store.Close()
		runs = store
	}

	service := scrape.NewService(gw, extractor, sink, notifier, runs, logger)
	tokens := auth.NewSeededStore()
	server := api.NewServer(service, tokens, cfg, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.Int("port", cfg.Server.Port))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
}
