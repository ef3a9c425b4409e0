package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	analysisclient "github.com/avdeevm/ai-gallery/internal/analysis"
	analysishandler "github.com/avdeevm/ai-gallery/internal/api/handlers/analysis"
	galleryhandler "github.com/avdeevm/ai-gallery/internal/api/handlers/gallery"
	searchhandler "github.com/avdeevm/ai-gallery/internal/api/handlers/search"
	signedurlhandler "github.com/avdeevm/ai-gallery/internal/api/handlers/signedurl"
	uploadhandler "github.com/avdeevm/ai-gallery/internal/api/handlers/upload"
	"github.com/avdeevm/ai-gallery/internal/api/router"
	"github.com/avdeevm/ai-gallery/internal/api/server"
	"github.com/avdeevm/ai-gallery/internal/config"
	"github.com/avdeevm/ai-gallery/internal/gallery"
	"github.com/avdeevm/ai-gallery/internal/infra/kafka/consumer"
	"github.com/avdeevm/ai-gallery/internal/infra/kafka/producer"
	galleryevents "github.com/avdeevm/ai-gallery/internal/kafka/handlers/gallery"
	"github.com/avdeevm/ai-gallery/internal/processor"
	imagerepo "github.com/avdeevm/ai-gallery/internal/repository/image"
	searchsvc "github.com/avdeevm/ai-gallery/internal/service/search"
	uploadsvc "github.com/avdeevm/ai-gallery/internal/service/upload"
	"github.com/avdeevm/ai-gallery/internal/storage/file"
)

func main() {
	// Context & signals: used for graceful shutdown on system interrupts.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger and load application configuration.
	zlog.Init()
	cfg := config.MustLoad("./config")

	// Connect to PostgreSQL (master and slaves).
	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	// Collect slave DSNs for replica connections.
	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Retry strategy for Kafka and other external calls.
	strategy := retry.Strategy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Backoff:  cfg.Retry.Backoff,
	}

	// Object storage (MinIO) with originals and thumbnails buckets.
	storage, err := file.New(
		ctx,
		cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.UseSSL,
		cfg.Storage.OriginalsBucket, cfg.Storage.ThumbnailsBucket,
	)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to storage")
	}

	// Repository, vision model client and event producer.
	repo := imagerepo.NewRepository(db)
	analyzer := analysisclient.NewClient(
		http.DefaultClient,
		cfg.Analysis.Endpoint, cfg.Analysis.APIKey, cfg.Analysis.Model, cfg.Analysis.MaxTokens,
		repo,
	)
	p := producer.New(&cfg.Kafka, strategy)

	// Display-layer state: preview bytes and the per-owner feed.
	previews := gallery.NewPreviewStore()
	feed := gallery.NewFeed(previews)

	// Upload pipeline.
	proc := processor.New(cfg.Upload.ThumbnailMaxEdge)
	uploader := uploadsvc.NewUploader(storage, repo)
	uploadService := uploadsvc.NewService(
		proc, uploader, analyzer, previews, storage, p,
		processor.PaletteStrip, cfg.Upload.ResetDelay,
	)

	// Metadata search.
	searchService := searchsvc.NewService(repo, storage, cfg.Storage.ThumbnailsBucket, cfg.Search.Limit)

	// Kafka consumer feeding the gallery view from pipeline events.
	eventHandler := galleryevents.NewEventHandler(feed)
	c := consumer.New(&cfg.Kafka, strategy, eventHandler)

	var wg sync.WaitGroup
	wg.Add(1)
	go c.Consume(ctx, &wg)

	// HTTP handlers and server.
	r := router.Setup(
		uploadhandler.NewHandler(uploadService, cfg.Upload.MaxFileSize),
		analysishandler.NewHandler(analyzer),
		searchhandler.NewHandler(searchService),
		signedurlhandler.NewHandler(storage),
		galleryhandler.NewHandler(feed, previews),
	)
	s := server.New(cfg.Server.HTTPPort, r)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Block until context is canceled (SIGINT/SIGTERM).
	<-ctx.Done()
	zlog.Logger.Info().Msg("context done")

	// Wait for Kafka consumer goroutine to finish.
	wg.Wait()

	// Graceful shutdown with timeout for HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	// Close master and slave databases.
	if err := db.Master.Close(); err != nil {
		zlog.Logger.Printf("failed to close master DB: %v", err)
	}
	for i, slave := range db.Slaves {
		if err := slave.Close(); err != nil {
			zlog.Logger.Printf("failed to close slave DB %d: %v", i, err)
		}
	}

	// Close Kafka producer and consumer clients.
	if err = p.Client.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close kafka producer client")
	}
	if err = c.Client.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close kafka consumer client")
	}
}
