package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"greenkart/internal/cart"
	"greenkart/internal/config"
	"greenkart/internal/database"
	"greenkart/internal/gateway"
	"greenkart/internal/handler"
	"greenkart/internal/repository"
	"greenkart/internal/router"
	"greenkart/internal/service"
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
	logger.Info().Msg("starting greenkart order API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize Redis-backed cart store
	redisClient, err := database.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redisClient.Close()
	carts := cart.NewRedisStore(redisClient, logger)

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)

	// Initialize payment gateway client and webhook verifier
	gatewayClient := gateway.NewClient(cfg.Midtrans, logger)
	verifier := gateway.NewSignatureVerifier(cfg.Midtrans.ServerKey, cfg.Midtrans.VerifySignature, logger)

	// Initialize services
	checkoutService := service.NewCheckoutService(orderRepo, productRepo, carts, gatewayClient, logger)
	reconciliationService := service.NewReconciliationService(orderRepo, productRepo, gatewayClient, logger)
	orderService := service.NewOrderService(orderRepo, logger)

	// Initialize HTTP handlers
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)
	orderHandler := handler.NewOrderHandler(orderService, reconciliationService, logger)
	webhookHandler := handler.NewWebhookHandler(reconciliationService, verifier, logger)

	// Initialize router
	mux := router.New(checkoutHandler, orderHandler, webhookHandler, cfg.Auth.APIKey, logger)

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

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
