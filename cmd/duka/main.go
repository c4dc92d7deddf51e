package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"duka/internal/cache"
	"duka/internal/catalog"
	"duka/internal/cli"
	apphttp "duka/internal/http"
	"duka/internal/log"
	"duka/internal/services"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig()
	logger.Info("Starting duka", "port", cfg.Port, "backend", cfg.DataBackend, "seed", cfg.Seed)

	ctx := context.Background()
	be := cli.OpenBackend(ctx, logger, cfg)

	orders, err := services.OpenOrderStore(ctx, be.Store, cfg.Seed, services.DefaultOrderCount)
	if err != nil {
		logger.Error("Failed to open order book", "error", err)
		os.Exit(1)
	}
	tickets, err := services.OpenTicketStore(ctx, be.Store)
	if err != nil {
		logger.Error("Failed to open support desk", "error", err)
		os.Exit(1)
	}

	products := catalog.NewClient(catalog.Options{
		URL:      cfg.CatalogURL,
		Timeout:  cfg.CatalogTimeout,
		CacheTTL: cfg.CatalogCacheTTL,
		Seed:     cfg.Seed,
		Logger:   logger.WithComponent(log.ComponentCatalog).Logger,
	})
	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	caches.Register(products.Cache())
	caches.StartCleanup(time.Minute)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:            ":" + cfg.Port,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}, apphttp.Dependencies{
		Dashboard: services.NewDashboardService(be.Store, cfg.Seed, logger),
		Orders:    services.NewOrderService(orders, be.Publisher(), logger),
		Tickets:   services.NewTicketService(tickets, be.Publisher(), logger),
		Products:  products,
		Ready:     be.Store.Ping,
		Logger:    logger,
	})

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		caches.Stop()
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr, "amqp_enabled", be.AMQP != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(runCtx, done)
}
