// main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"church-system/config"
	"church-system/handlers"
	_ "church-system/migrations"
	"church-system/services"
	"church-system/store"
	"church-system/utils"
)

func main() {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("Invalid SCHEDULE_TIMEZONE %q, falling back to UTC: %v", cfg.Timezone, err)
		loc = time.UTC
	}

	// Redis is optional; without it the asset retry queue and the sweep
	// run-lock are disabled and asset-copy failures stay fire-and-forget.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("Redis unavailable, continuing without retry queue: %v", err)
		} else {
			defer redisClient.Close()
		}
	}

	// Initialize stores and services
	eventStore := store.NewPBEventStore(app)
	assetStore := store.NewPBAssetStore(app)

	var retryQueue *services.AssetRetryQueue
	if redisClient != nil {
		retryQueue = services.NewAssetRetryQueue(redisClient, cfg.AssetRetryMaxAttempts)
	}

	scheduler := services.NewSchedulerService(eventStore, assetStore, retryQueue, app.Logger(), loc)
	sweepLock := services.NewSweepLock(redisClient, cfg.SweepLockTTL)

	// Initialize handlers
	scheduleHandler := handlers.NewScheduleHandler(scheduler, redisClient, cfg.GenerateMaxCount)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Periodic jobs: the sweeper owns no timer, cron drives it
	jobs := cron.New(cron.WithLocation(loc))
	if _, err := jobs.AddFunc(cfg.SweepSchedule, func() {
		runSweep(scheduler, sweepLock, app.Logger())
	}); err != nil {
		log.Fatalf("Invalid SWEEP_SCHEDULE %q: %v", cfg.SweepSchedule, err)
	}
	if retryQueue != nil {
		if _, err := jobs.AddFunc(cfg.AssetRetrySchedule, func() {
			drainAssetRetries(retryQueue, scheduler, app.Logger())
		}); err != nil {
			log.Fatalf("Invalid ASSET_RETRY_SCHEDULE %q: %v", cfg.AssetRetrySchedule, err)
		}
	}

	// Register routes
	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Scheduling endpoints
		e.Router.POST("/api/events/{eventId}/occurrences/next", scheduleHandler.MaterializeNext)
		e.Router.POST("/api/events/{eventId}/occurrences/generate", scheduleHandler.Generate)
		e.Router.POST("/api/events/{eventId}/complete", scheduleHandler.CompleteAndAdvance)
		e.Router.POST("/api/events/{eventId}/cancel-series", scheduleHandler.CancelSeries)

		// Admin endpoints
		e.Router.POST("/api/admin/events/sweep", scheduleHandler.Sweep)

		// Health check
		e.Router.GET("/health", scheduleHandler.Health)

		jobs.Start()

		if cfg.EnableMetrics {
			go serveMetrics(cfg.MetricsPort)
		}

		log.Println("Server routes registered")

		return e.Next()
	})

	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		// Let an in-flight sweep finish before shutting down
		<-jobs.Stop().Done()
		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// runSweep executes one overdue sweep pass under the run-lock.
func runSweep(scheduler *services.SchedulerService, lock *services.SweepLock, logger *slog.Logger) {
	ctx := context.Background()

	ok, err := lock.Acquire(ctx)
	if err != nil {
		logger.Error("sweep lock acquire failed", "error", err)
		return
	}
	if !ok {
		logger.Info("sweep skipped, previous pass still running")
		return
	}
	defer lock.Release(ctx)

	if _, err := scheduler.Sweep(ctx); err != nil {
		logger.Error("sweep failed", "error", err)
	}
}

// drainAssetRetries retries asset copies that failed inline.
func drainAssetRetries(queue *services.AssetRetryQueue, scheduler *services.SchedulerService, logger *slog.Logger) {
	ctx := context.Background()

	copied, err := queue.Drain(ctx, scheduler.CopyAssetRefs, logger)
	if err != nil {
		logger.Error("asset retry drain failed", "error", err)
		return
	}
	if copied > 0 {
		logger.Info("asset retry drain finished", "copied", copied)
	}
}

// serveMetrics exposes Prometheus metrics on a dedicated port.
func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Printf("Metrics server stopped: %v", err)
	}
}
