package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"event_scraper/internal/config"
	"event_scraper/internal/extract"
	"event_scraper/internal/fetch"
	"event_scraper/internal/metrics"
	"event_scraper/internal/publisher"
	"event_scraper/internal/scheduler"
	"event_scraper/internal/scraper"
	"event_scraper/internal/server"
	"event_scraper/internal/service"
	"event_scraper/internal/source"
	"event_scraper/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	registry, err := source.NewRegistry(cfg.Venues)
	if err != nil {
		logger.Error("invalid venue configuration", "error", err)
		os.Exit(1)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Optional new-event fan-out
	var pub service.Publisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	// Initialize stores
	txManager := postgres.NewTransactionManager(db)
	eventStore := postgres.NewEventStore(db)
	profileStore := postgres.NewProfileStore(db, txManager)

	m := metrics.New()

	fetcher := fetch.New(fetch.Config{
		Timeout:   cfg.Scrape.FetchTimeout,
		UserAgent: cfg.Scrape.UserAgent,
	}, logger)

	extractor := extract.NewClient(extract.Config{
		APIKey:    cfg.Extractor.APIKey,
		BaseURL:   cfg.Extractor.BaseURL,
		Model:     cfg.Extractor.Model,
		MaxTokens: cfg.Extractor.MaxTokens,
		Timeout:   cfg.Extractor.Timeout,
	}, logger)

	venueScraper := scraper.New(fetcher, extractor, scraper.Config{
		MaxHTMLLength: cfg.Scrape.MaxHTMLLength,
		BatchSize:     cfg.Scrape.BatchSize,
		BatchDelay:    cfg.Scrape.BatchDelay,
		TargetYear:    cfg.Scrape.TargetYear,
	}, m, logger)

	runService := service.NewRunService(
		registry,
		venueScraper,
		eventStore,
		profileStore,
		pub,
		m,
		logger,
		service.Config{
			BotEmail:        cfg.Scrape.BotEmail,
			InsertBatchSize: cfg.Scrape.InsertBatchSize,
		},
	)

	srv := server.New(runService, server.Config{
		CronSecret: cfg.Server.CronSecret,
		RunTimeout: cfg.Scrape.RunTimeout,
	}, m, logger)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Routes(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if cfg.Scrape.Interval > 0 {
		sched := scheduler.NewScheduler(runService, cfg.Scrape.Interval, cfg.Scrape.RunTimeout, logger)
		go func() {
			if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("scheduler error", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("starting event scraper",
		"addr", cfg.Server.Addr,
		"venues", registry.Len(),
		"target_year", cfg.Scrape.TargetYear,
	)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
