package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/elhamd/elhamd-api/internal/app"
	"github.com/elhamd/elhamd-api/internal/jobs"
	"github.com/elhamd/elhamd-api/pkg/config"
	"github.com/elhamd/elhamd-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name + "-worker",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx, cfg, log, "worker")
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar dependencias")
	}
	defer deps.Close()

	handlers := jobs.NewHandlers(deps.Invoices, deps.Invoices, deps.Metrics, log.Component("jobs"))
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   app.RedisOpt(cfg.Redis),
		Concurrency: cfg.Worker.Concurrency,
		Logger:      log.Component("worker"),
		Handlers:    handlers.TaskHandlers(),
		Cron: []jobs.CronRegistration{
			{Spec: cfg.Worker.OverdueSweepCron, Task: jobs.NewOverdueSweepTask()},
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("crear worker")
	}

	log.Info().
		Int("concurrency", cfg.Worker.Concurrency).
		Str("overdue_cron", cfg.Worker.OverdueSweepCron).
		Msg("iniciando worker")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("worker finalizado con error")
	}
}
