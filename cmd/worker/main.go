package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/veritum/veritum-pro/internal/ai"
	"github.com/veritum/veritum-pro/internal/billing"
	"github.com/veritum/veritum-pro/internal/database"
	"github.com/veritum/veritum-pro/internal/tasks"
	"github.com/veritum/veritum-pro/pkg/config"
	"github.com/veritum/veritum-pro/pkg/queue"
	"github.com/veritum/veritum-pro/pkg/util"
)

// Subscription sweeps run nightly; expired rows only accumulate once a day
// matters.
const sweepSchedule = "0 3 * * *"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting Veritum Pro worker")

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	gateway := ai.NewGateway(cfg.Gemini.APIKey, func(ctx context.Context, apiKey string) (ai.ContentGenerator, error) {
		return ai.NewGeminiGenerator(ctx, apiKey, cfg.Gemini.Model)
	})
	subscriptions := billing.NewSubscriptionService(db)

	srv := queue.NewServer(&cfg.Redis, 10)

	handler := tasks.NewHandler(db, gateway, subscriptions, logger)
	mux := asynq.NewServeMux()
	handler.Register(mux)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Periodic subscription sweep.
	client := queue.NewClient(&cfg.Redis)
	defer client.Close()
	go runSweepScheduler(ctx, client, logger)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker...")
		srv.Shutdown()
		cancel()
	}()

	logger.Info("worker started, waiting for tasks...")

	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	<-ctx.Done()

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}

// runSweepScheduler enqueues a subscription sweep on each tick of the cron
// schedule until the context is canceled.
func runSweepScheduler(ctx context.Context, client *asynq.Client, logger *slog.Logger) {
	schedule, err := util.ParseCronSchedule(sweepSchedule)
	if err != nil {
		logger.Error("invalid sweep schedule", "expr", sweepSchedule, "error", err)
		return
	}

	for {
		next := schedule.Next(time.Now().UTC())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if _, err := client.EnqueueContext(ctx, tasks.NewSubscriptionSweepTask()); err != nil {
				logger.Error("failed to enqueue subscription sweep", "error", err)
				continue
			}
			logger.Info("subscription sweep enqueued", "next", schedule.Next(time.Now().UTC()))
		}
	}
}
