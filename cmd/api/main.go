package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bazaar/internal/cache"
	"bazaar/internal/config"
	"bazaar/internal/database"
	"bazaar/internal/events"
	"bazaar/internal/handler"
	"bazaar/internal/media"
	"bazaar/internal/payment"
	"bazaar/internal/realtime"
	"bazaar/internal/repository"
	"bazaar/internal/router"
	"bazaar/internal/service"
	"bazaar/internal/worker"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
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
	logger.Info().Msg("starting bazaar API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	checks := map[string]handler.Check{"postgres": pool.Ping}

	// Redis is optional; without it product reads are uncached and the stock
	// worker cannot run.
	var productCache cache.ProductCache = cache.Noop{}
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := cache.Ping(ctx, redisClient); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable, continuing; reads will miss until it recovers")
		}
		productCache = cache.NewProductCache(redisClient, cfg.Redis.ProductTTL, logger)
		checks["redis"] = func(ctx context.Context) error { return cache.Ping(ctx, redisClient) }
	} else {
		logger.Info().Msg("redis disabled, product cache off")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	wishlistRepo := repository.NewWishlistRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	deliveryRepo := repository.NewDeliveryRepository(pool, logger)
	quoteRepo := repository.NewQuoteRepository(pool, logger)
	rentalRepo := repository.NewRentalRepository(pool, logger)
	reviewRepo := repository.NewReviewRepository(pool, logger)
	vendorRepo := repository.NewVendorRepository(pool, logger)

	// Events go to connected staff dashboards and, when configured, the broker
	hub := realtime.NewHub(logger)
	publishers := []events.Publisher{hub}

	var stockWorker *worker.StockWorker
	if cfg.AMQP.URL != "" {
		conn, err := amqp.Dial(cfg.AMQP.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to broker: %w", err)
		}
		defer conn.Close()

		pubCh, err := conn.Channel()
		if err != nil {
			return fmt.Errorf("failed to open publish channel: %w", err)
		}
		defer pubCh.Close()

		topology := events.Topology{Exchange: cfg.AMQP.Exchange, Queue: cfg.AMQP.Queue}
		if err := events.Setup(pubCh, topology); err != nil {
			return fmt.Errorf("failed to declare broker topology: %w", err)
		}
		publishers = append(publishers, events.NewAMQPPublisher(pubCh, cfg.AMQP.Exchange, logger))

		if redisClient != nil {
			consumeCh, err := conn.Channel()
			if err != nil {
				return fmt.Errorf("failed to open consume channel: %w", err)
			}
			defer consumeCh.Close()
			if err := consumeCh.Qos(1, 0, false); err != nil {
				return fmt.Errorf("failed to set prefetch: %w", err)
			}

			stockWorker = worker.NewStockWorker(consumeCh, cfg.AMQP.Queue, orderRepo, productRepo, cache.NewMarker(redisClient), logger)
			if err := stockWorker.Start(ctx); err != nil {
				return fmt.Errorf("failed to start stock worker: %w", err)
			}
			defer stockWorker.Stop()
		} else {
			logger.Warn().Msg("stock worker needs redis for idempotency, not starting")
		}
	} else {
		logger.Info().Msg("broker disabled, events go to websocket clients only")
	}
	publisher := events.Fanout(logger, publishers...)

	// Product images go to S3 when enabled, with the local directory as fallback
	localStore := media.NewLocalStore(cfg.Media.LocalDir, cfg.Media.PublicBaseURL, logger)
	var s3Store media.Store
	if cfg.Media.S3Enabled {
		s3Store, err = media.NewS3Store(ctx, cfg.Media.S3Bucket, cfg.Media.S3Region, cfg.Media.S3Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 store, falling back to local file system only")
		}
	}
	store := media.NewFallbackStore(s3Store, localStore, s3Store != nil, logger)

	gateway := payment.NewRazorpay(cfg.Gateway, logger)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, reviewRepo, productCache, store, cfg.Catalog.MaxPageSize, logger)
	cartService := service.NewCartService(cartRepo, wishlistRepo, productRepo, logger)
	wishlistService := service.NewWishlistService(wishlistRepo, cartRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, wishlistRepo, productRepo, deliveryRepo, gateway, publisher, cfg.Gateway.Currency, cfg.Gateway.Timeout, logger)
	paymentService := service.NewPaymentService(orderRepo, gateway, publisher, logger)
	deliveryService := service.NewDeliveryService(deliveryRepo, orderRepo, publisher, logger)
	quoteService := service.NewQuoteService(quoteRepo, productRepo, logger)
	rentalService := service.NewRentalService(rentalRepo, productRepo, logger)
	reviewService := service.NewReviewService(reviewRepo, productRepo, orderRepo, productCache, cfg.Catalog.ReviewAutoApprove, logger)
	vendorService := service.NewVendorService(vendorRepo, productRepo, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Health:   handler.NewHealthHandler(checks, logger),
		Auth:     handler.NewAuthHandler(authService, logger),
		Product:  handler.NewProductHandler(catalogService, cfg.Media.MaxUploadMB, logger),
		Cart:     handler.NewCartHandler(cartService, wishlistService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Payment:  handler.NewPaymentHandler(paymentService, logger),
		Delivery: handler.NewDeliveryHandler(deliveryService, logger),
		Quote:    handler.NewQuoteHandler(quoteService, logger),
		Rental:   handler.NewRentalHandler(rentalService, logger),
		Review:   handler.NewReviewHandler(reviewService, logger),
		Vendor:   handler.NewVendorHandler(vendorService, logger),
		Realtime: hub,
		Media:    http.FileServer(http.Dir(cfg.Media.LocalDir)),
	}, authService, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return serve(server, hub, cfg.Server.ShutdownTimeout, logger)
}

func serve(server *http.Server, hub *realtime.Hub, shutdownTimeout time.Duration, logger zerolog.Logger) error {
	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", server.Addr).
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

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		// Websocket connections are hijacked and not tracked by Shutdown
		hub.Close()

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
