// Package main wires together the careers scraping service.
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

	"cloud.google.com/go/pubsub"
	gcstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/jobpilot/careers-crawler/internal/api"
	"github.com/jobpilot/careers-crawler/internal/clock/system"
	"github.com/jobpilot/careers-crawler/internal/config"
	"github.com/jobpilot/careers-crawler/internal/dispatcher"
	"github.com/jobpilot/careers-crawler/internal/email"
	collyfetcher "github.com/jobpilot/careers-crawler/internal/fetcher/colly"
	headlessfetcher "github.com/jobpilot/careers-crawler/internal/fetcher/headless"
	"github.com/jobpilot/careers-crawler/internal/hash/sha256"
	"github.com/jobpilot/careers-crawler/internal/headless/detector"
	"github.com/jobpilot/careers-crawler/internal/id/uuid"
	"github.com/jobpilot/careers-crawler/internal/logging"
	"github.com/jobpilot/careers-crawler/internal/metrics"
	"github.com/jobpilot/careers-crawler/internal/pause"
	memorypublisher "github.com/jobpilot/careers-crawler/internal/publisher/memory"
	pubsubpublisher "github.com/jobpilot/careers-crawler/internal/publisher/pubsub"
	queuememory "github.com/jobpilot/careers-crawler/internal/queue/memory"
	"github.com/jobpilot/careers-crawler/internal/scraper"
	"github.com/jobpilot/careers-crawler/internal/storage/gcs"
	localstorage "github.com/jobpilot/careers-crawler/internal/storage/local"
	memorystorage "github.com/jobpilot/careers-crawler/internal/storage/memory"
	"github.com/jobpilot/careers-crawler/internal/storage/postgres"
	"github.com/jobpilot/careers-crawler/internal/worker"
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

	scrapeStore := memorystorage.NewScrapeStore()

	blobs, err := buildBlobStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("blob store init failed", zap.Error(err))
	}

	history, closeHistory, err := buildHistoryStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("history store init failed", zap.Error(err))
	}
	defer closeHistory()

	publisher, closePublisher, err := buildPublisher(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("publisher init failed", zap.Error(err))
	}
	defer closePublisher()

	queue := queuememory.NewQueue(cfg.Scraper.QueueDepth)
	hasher := sha256.New()
	clock := system.New()
	idGen := uuid.New()
	pauser := pause.New()
	detect := detector.NewHeuristic(0)

	probe := collyfetcher.New(collyfetcher.Config{
		UserAgent:     cfg.Scraper.UserAgent,
		RespectRobots: cfg.Scraper.RespectRobots,
		Timeout:       cfg.HTTPTimeout(),
	})

	var headless scraper.Fetcher
	var resource scraper.SessionResource
	if cfg.Headless.Enabled {
		chromeFetcher, chromeErr := headlessfetcher.NewChromedp(headlessfetcher.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         cfg.Scraper.UserAgent,
			NavigationTimeout: cfg.NavTimeout(),
			DomainQPS:         cfg.Headless.DomainQPS,
		})
		if chromeErr != nil {
			logger.Warn("headless fetcher init failed", zap.Error(chromeErr))
		} else {
			defer chromeFetcher.Close()
			headless = chromeFetcher
			resource = chromeFetcher
		}
	}
	if headless == nil {
		noop := headlessfetcher.NewNoop()
		headless = noop
		resource = noop
	}

	fetcher := scraper.NewRetryingFetcher(probe, headless, detect, pauser, logger.Named("fetch"))

	var workers []*worker.Worker
	for i := 0; i < cfg.Scraper.Workers; i++ {
		engine := scraper.NewEngine(scraper.EngineOptions{
			Fetcher:   fetcher,
			Resource:  resource,
			Hasher:    hasher,
			Clock:     clock,
			Pauser:    pauser,
			Logger:    logger.Named("engine").With(zap.Int("worker", i)),
			PageDelay: cfg.PageDelay(),
			MaxJobs:   cfg.Scraper.MaxJobs,
		})
		workers = append(workers, worker.New(worker.Options{
			Queue:      queue,
			Store:      scrapeStore,
			Engine:     engine,
			Blobs:      blobs,
			History:    history,
			Publisher:  publisher,
			Clock:      clock,
			Logger:     logger.Named("worker").With(zap.Int("index", i)),
			BlobPrefix: cfg.Storage.Prefix,
			Topic:      cfg.PubSub.TopicName,
		}))
	}
	dispatch := dispatcher.New(queue, workers)

	var sender *email.Sender
	if cfg.SMTP.Enabled {
		sender, err = email.NewSender(email.SenderConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			From:     cfg.SMTP.From,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		})
		if err != nil {
			logger.Fatal("smtp sender init failed", zap.Error(err))
		}
	}

	apiServer := api.NewServer(api.Options{
		Store:      scrapeStore,
		History:    history,
		Dispatcher: dispatch,
		IDGen:      idGen,
		Clock:      clock,
		Sender:     sender,
		Logger:     logger.Named("api"),
		Config:     cfg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("dispatcher started", zap.Int("workers", len(workers)))
		dispatch.Run(ctx)
	}()

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	queue.Close()
	logger.Info("shutdown complete")
}

func buildBlobStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (scraper.BlobStore, error) {
	switch cfg.Storage.Backend {
	case "gcs":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client: %w", err)
		}
		logger.Info("archiving results to gcs", zap.String("bucket", cfg.Storage.GCSBucket))
		return gcs.New(client, gcs.Config{Bucket: cfg.Storage.GCSBucket})
	case "local":
		logger.Info("archiving results locally", zap.String("dir", cfg.Storage.LocalDir))
		return localstorage.New(localstorage.Config{BaseDir: cfg.Storage.LocalDir})
	default:
		return memorystorage.NewBlobStore(), nil
	}
}

func buildHistoryStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (scraper.HistoryStore, func(), error) {
	if !cfg.DB.Enabled {
		return memorystorage.NewHistoryStore(10), func() {}, nil
	}
	store, err := postgres.NewHistoryStore(ctx, postgres.HistoryStoreConfig{
		DSN:      cfg.DB.DSN,
		Table:    cfg.DB.Table,
		MaxConns: int32(cfg.DB.MaxConns),
		MinConns: int32(cfg.DB.MinConns),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("postgres history store: %w", err)
	}
	logger.Info("recording history to postgres", zap.String("table", cfg.DB.Table))
	return store, store.Close, nil
}

func buildPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (scraper.Publisher, func(), error) {
	if !cfg.PubSub.Enabled {
		return memorypublisher.New(), func() {}, nil
	}
	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("pubsub client: %w", err)
	}
	pub, err := pubsubpublisher.New(client)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("publishing scrape events", zap.String("topic", cfg.PubSub.TopicName))
	return pub, pub.Close, nil
}
