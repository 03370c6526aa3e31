package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/ebcharge/internal/adapters/http"
	natsadapter "github.com/samirrijal/ebcharge/internal/adapters/nats"
	"github.com/samirrijal/ebcharge/internal/adapters/postgres"
	"github.com/samirrijal/ebcharge/internal/adapters/valkey"
	"github.com/samirrijal/ebcharge/internal/core/ports"
	"github.com/samirrijal/ebcharge/internal/core/usecases"
	"github.com/samirrijal/ebcharge/internal/pkg/config"
	"github.com/samirrijal/ebcharge/internal/pkg/logging"
	"github.com/samirrijal/ebcharge/internal/pkg/metrics"
	"github.com/samirrijal/ebcharge/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("ebcharge-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.Enabled)
	if err != nil {
		slog.Warn("telemetry init failed", "error", err)
	} else {
		defer shutdownTracer(context.Background())
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	terminalRepo := postgres.NewTerminalRepo(db)
	bookingRepo := postgres.NewBookingRepo(db)

	deps := &http.Dependencies{
		DB:             db,
		MaxRadiusKm:    cfg.Search.MaxRadiusKm,
		RateLimit:      cfg.Server.RateLimit,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
	}

	// Catalog, cached when Valkey is reachable and a TTL is set
	var (
		catalog     ports.TerminalCatalog = terminalRepo
		invalidator usecases.CatalogInvalidator
	)
	if cache, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, catalog served uncached", "error", err)
	} else {
		defer cache.Close()
		deps.Cache = cache
		if cfg.Search.CatalogCacheTTL > 0 {
			cached := usecases.NewCachedCatalog(terminalRepo, cache, cfg.Search.CatalogCacheTTL)
			catalog, invalidator = cached, cached
		}
	}

	deps.Search = usecases.NewTerminalSearchService(catalog, bookingRepo)
	deps.Terminals = usecases.NewTerminalService(terminalRepo, bookingRepo)

	// NATS: cache invalidation on occupancy changes and the WebSocket relay
	nc, err := natsadapter.Connect(cfg.NATS.URL, cfg.Telemetry.ServiceName)
	if err != nil {
		slog.Warn("nats unavailable, occupancy events disabled", "error", err)
	} else {
		defer nc.Drain()
		deps.NATS = nc
		subscribeOccupancy(ctx, nc, usecases.NewOccupancyService(terminalRepo, nil, invalidator))
	}

	go reportPoolStats(ctx, db)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "EBCharge API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, If-None-Match",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func subscribeOccupancy(ctx context.Context, nc *nats.Conn, occupancy *usecases.OccupancyService) {
	sub, err := natsadapter.NewSubscriber(nc)
	if err != nil {
		slog.Warn("occupancy subscriber unavailable", "error", err)
		return
	}
	if err := sub.SubscribeOccupancy(ctx, occupancy.HandleOccupancyEvent); err != nil {
		slog.Warn("subscribe occupancy", "error", err)
		return
	}
	go func() {
		<-ctx.Done()
		sub.Close()
	}()
}

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}
}
