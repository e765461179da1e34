package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/rukioi/legalflow/internal/config"
	"github.com/rukioi/legalflow/internal/database"
	"github.com/rukioi/legalflow/internal/invoices"
	"github.com/rukioi/legalflow/internal/queue"
	"github.com/rukioi/legalflow/internal/queue/workers"
	"github.com/rukioi/legalflow/internal/tenant"
	"github.com/rukioi/legalflow/internal/webhook"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	})

	ts := tenant.NewService(db)
	queueClient := queue.NewClient(cfg.Redis)
	defer queueClient.Close()
	webhookSvc := webhook.NewService(db, queueClient)
	deliverer := webhook.NewDeliverer(db)

	registry := queue.NewHandlersRegistry()

	webhookWorker := workers.NewWebhookWorker(deliverer)
	registry.Register(queue.TypeWebhookDeliver, asynq.HandlerFunc(webhookWorker.ProcessTask))

	invoiceWorker := workers.NewInvoiceWorker(ts, invoices.NewService(), webhookSvc)
	registry.Register(queue.TypeInvoiceOverdueScan, asynq.HandlerFunc(invoiceWorker.ProcessTask))

	// Hourly scan that flips sent invoices past due date to overdue.
	scheduler := asynq.NewScheduler(redisOpt, nil)
	if _, err := scheduler.Register("@every 1h",
		asynq.NewTask(queue.TypeInvoiceOverdueScan, []byte("{}")),
	); err != nil {
		slog.Error("failed to register overdue scan", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := scheduler.Run(); err != nil {
			slog.Error("scheduler error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
