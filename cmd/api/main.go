package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront-pricing-core/internal/cache"
	"github.com/fairyhunter13/storefront-pricing-core/internal/config"
	"github.com/fairyhunter13/storefront-pricing-core/internal/handler"
	"github.com/fairyhunter13/storefront-pricing-core/internal/model"
	"github.com/fairyhunter13/storefront-pricing-core/internal/repository"
	"github.com/fairyhunter13/storefront-pricing-core/internal/service"
	"github.com/fairyhunter13/storefront-pricing-core/internal/validator"
	"github.com/fairyhunter13/storefront-pricing-core/migrations"
	"github.com/fairyhunter13/storefront-pricing-core/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Apply pending schema migrations
	if err := database.RunMigrations(cfg.DB.MigrateURL(), migrations.FS); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Optional availability cache; the service runs without it
	saleCache := newSaleCache(ctx, cfg)

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Storefront Pricing Core",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB body limit
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	// Initialize validator
	validate := validator.New()

	// Repositories
	productRepo := repository.NewProductRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)
	saleRepo := repository.NewFlashSaleRepository(pool)
	inventoryRepo := repository.NewInventoryRepository()

	// Services (layered architecture; every dependency injected)
	couponService := service.NewCouponService(pool, couponRepo)
	inventoryService := service.NewInventoryService(pool, productRepo, inventoryRepo, saleRepo)
	flashSaleService := service.NewFlashSaleService(saleRepo, productRepo, saleCache)
	orderService := service.NewOrderService(
		productRepo,
		couponService,
		model.DefaultDeliveryOptions(),
		decimal.NewFromFloat(cfg.Pricing.TaxRate),
	)

	// Handlers
	couponHandler := handler.NewCouponHandler(couponService, validate)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, validate)
	flashSaleHandler := handler.NewFlashSaleHandler(flashSaleService, validate)
	orderHandler := handler.NewOrderHandler(orderService, validate)
	healthHandler := handler.NewHealthHandler(pool)

	app.Get("/health", healthHandler.Check)

	// Flash-sale routes
	app.Get("/api/flash-sales/active", flashSaleHandler.ListActive)
	app.Get("/api/flash-sales/upcoming", flashSaleHandler.ListUpcoming)
	app.Post("/api/flash-sales", flashSaleHandler.CreateFlashSale)
	app.Put("/api/flash-sales/:id", flashSaleHandler.UpdateFlashSale)
	app.Post("/api/flash-sales/:id/check", flashSaleHandler.CheckAvailability)

	// Coupon routes
	app.Get("/api/coupons/:code", couponHandler.GetCoupon)
	app.Post("/api/coupons/validate", couponHandler.ValidateCoupon)
	app.Post("/api/coupons/apply", couponHandler.ApplyCoupon)

	// Inventory routes
	app.Post("/api/inventory/adjust", inventoryHandler.AdjustStock)
	app.Post("/api/inventory/sales", inventoryHandler.RecordSale)

	// Pricing routes
	app.Get("/api/products/:id/price", orderHandler.GetProductPrice)
	app.Post("/api/orders/quote", orderHandler.Quote)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// newSaleCache connects the optional Redis-backed availability cache.
// Returns nil (caching disabled) when no address is configured or the
// server is unreachable; availability checks then read the store directly.
func newSaleCache(ctx context.Context, cfg *config.Config) service.SaleCache {
	if cfg.Redis.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, availability cache disabled")
		return nil
	}

	log.Info().Str("addr", cfg.Redis.Addr).Msg("availability cache enabled")
	return cache.NewFlashSaleCache(client, time.Duration(cfg.Redis.CacheTTLSeconds)*time.Second)
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
