package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/ebcharge/internal/adapters/nats"
	"github.com/samirrijal/ebcharge/internal/adapters/postgres"
	temporaladapter "github.com/samirrijal/ebcharge/internal/adapters/temporal"
	"github.com/samirrijal/ebcharge/internal/adapters/valkey"
	"github.com/samirrijal/ebcharge/internal/core/ports"
	"github.com/samirrijal/ebcharge/internal/core/usecases"
	"github.com/samirrijal/ebcharge/internal/pkg/config"
	"github.com/samirrijal/ebcharge/internal/pkg/logging"
	"github.com/samirrijal/ebcharge/internal/pkg/telemetry"
	"github.com/samirrijal/ebcharge/internal/workflows"
)

func main() {
	cfg, err := config.Load("ebcharge-scheduler")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.Enabled)
	if err != nil {
		slog.Warn("telemetry init failed", "error", err)
	} else {
		defer shutdownTracer(context.Background())
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	terminalRepo := postgres.NewTerminalRepo(db)
	bookingRepo := postgres.NewBookingRepo(db)

	// Occupancy changes drop the API's shared catalog snapshot and are
	// announced on NATS. Both are optional.
	var (
		publisher   ports.EventPublisher
		invalidator usecases.CatalogInvalidator
	)
	if cache, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		invalidator = usecases.NewCachedCatalog(terminalRepo, cache, cfg.Search.CatalogCacheTTL)
	}
	if nc, err := natsadapter.Connect(cfg.NATS.URL, cfg.Telemetry.ServiceName); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Drain()
		if pub, err := natsadapter.NewPublisher(nc); err != nil {
			slog.Warn("occupancy publisher unavailable", "error", err)
		} else {
			publisher = pub
		}
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(logger),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	schedule := usecases.NewBookingScheduleService(bookingRepo, temporaladapter.NewScheduler(c, cfg.Temporal.TaskQueue))
	occupancy := usecases.NewOccupancyService(terminalRepo, publisher, invalidator)

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.OccupancyWorkflow)
	w.RegisterActivity(&workflows.OccupancyActivities{
		Bookings:  schedule,
		Occupancy: occupancy,
	})

	if err := w.Start(); err != nil {
		log.Fatalf("worker: %v", err)
	}
	defer w.Stop()

	go rescan(ctx, schedule, cfg.Temporal.RescanInterval)

	slog.Info("scheduler worker started", "task_queue", cfg.Temporal.TaskQueue)
	<-worker.InterruptCh()
	slog.Info("scheduler stopping")
}

// rescan starts an occupancy workflow for every upcoming blocking booking
// and cancels the workflows of bookings released mid-slot, once at startup
// and then every interval. Workflow ids are derived from booking ids, so
// bookings already scheduled are skipped.
func rescan(ctx context.Context, schedule *usecases.BookingScheduleService, interval time.Duration) {
	run := func() {
		now := time.Now()
		n, err := schedule.ScheduleUpcoming(ctx, now)
		if err != nil {
			slog.ErrorContext(ctx, "schedule upcoming bookings", "scheduled", n, "error", err)
		} else {
			slog.InfoContext(ctx, "upcoming bookings scheduled", "scheduled", n)
		}

		// Released mid-slot: free the terminal now rather than at slot end
		c, err := schedule.CancelReleased(ctx, now)
		if err != nil {
			slog.ErrorContext(ctx, "cancel released bookings", "cancelled", c, "error", err)
			return
		}
		if c > 0 {
			slog.InfoContext(ctx, "released bookings cancelled", "cancelled", c)
		}
	}

	run()
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
