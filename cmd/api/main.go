package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freshmart/internal/auth"
	"freshmart/internal/catalogimport"
	"freshmart/internal/config"
	"freshmart/internal/database"
	"freshmart/internal/events"
	"freshmart/internal/handler"
	"freshmart/internal/repository"
	"freshmart/internal/router"
	"freshmart/internal/service"
	"freshmart/internal/telemetry"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting freshmart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn().Err(err).Msg("failed to flush traces")
		}
	}()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	var sessions auth.SessionStore
	if cfg.Session.Enabled {
		client, err := auth.NewRedisClient(ctx, cfg.Session.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		sessions = auth.NewRedisSessionStore(client, cfg.Session.TTL)
		logger.Info().Msg("redis session store enabled")
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, logger)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("kafka event publishing enabled")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close event publisher")
		}
	}()

	// Initialize repositories
	txr := repository.NewTransactor(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	deliveryRepo := repository.NewDeliveryRepository(pool, logger)
	agentRepo := repository.NewAgentRepository(pool, logger)
	accountRepo := repository.NewAccountRepository(pool, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, categoryRepo, txr, logger)
	cartService := service.NewCartService(cartRepo, productRepo, orderRepo, txr, publisher, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, txr, publisher, logger)
	deliveryService := service.NewDeliveryService(deliveryRepo, orderRepo, agentRepo, accountRepo, txr, publisher, logger)
	agentService := service.NewAgentService(agentRepo, logger)
	accountService := service.NewAccountService(accountRepo, tokens, sessions, logger)

	importer := catalogimport.NewImporter(newFeedLoader(ctx, cfg, logger), productRepo, txr, cfg.Import.MaxSources, logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(accountService, cfg.Auth.CookieSecure, logger),
		Product:  handler.NewProductHandler(catalogService, importer, logger),
		Category: handler.NewCategoryHandler(catalogService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Order:    handler.NewOrderHandler(orderService, deliveryService, logger),
		Delivery: handler.NewDeliveryHandler(deliveryService, logger),
		Agent:    handler.NewAgentHandler(agentService, logger),
	}

	// Initialize router
	mux := router.New(handlers, auth.NewResolver(tokens, sessions, logger), router.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ServiceName:    cfg.Telemetry.ServiceName,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newFeedLoader returns the catalog feed loader: S3 with local fallback when S3 is
// enabled and reachable, the local feed directory otherwise.
func newFeedLoader(ctx context.Context, cfg *config.Config, logger zerolog.Logger) catalogimport.Loader {
	fileLoader := catalogimport.NewFileLoader(cfg.Import.BaseDir, logger)
	if !cfg.S3.Enabled {
		logger.Info().Str("base_dir", cfg.Import.BaseDir).Msg("using local file system for catalog feeds (S3 disabled)")
		return fileLoader
	}

	s3Loader, err := catalogimport.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 loader, falling back to local file system only")
		return fileLoader
	}

	return catalogimport.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, true, logger)
}
