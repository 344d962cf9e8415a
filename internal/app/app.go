// Package app arma las dependencias compartidas por api, worker y financectl.
package app

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/elhamd/elhamd-api/internal/application/billing"
	"github.com/elhamd/elhamd-api/internal/application/finance"
	"github.com/elhamd/elhamd-api/internal/application/fulfillment"
	"github.com/elhamd/elhamd-api/internal/infrastructure/gateway"
	infrapdf "github.com/elhamd/elhamd-api/internal/infrastructure/pdf"
	"github.com/elhamd/elhamd-api/internal/infrastructure/postgres"
	"github.com/elhamd/elhamd-api/internal/infrastructure/redislock"
	"github.com/elhamd/elhamd-api/internal/jobs"
	"github.com/elhamd/elhamd-api/internal/observability"
	"github.com/elhamd/elhamd-api/pkg/config"
	"github.com/elhamd/elhamd-api/pkg/logger"
)

// Container dependencias construidas a partir de la configuración.
type Container struct {
	Cfg     *config.Config
	Log     *logger.Logger
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Jobs    *jobs.Client
	Metrics *observability.Metrics

	Invoices *billing.InvoiceUseCase
	Payments *billing.PaymentUseCase
	PDF      *billing.PDFUseCase
	Finance  *finance.OverviewUseCase
}

// RedisOpt opciones de conexión asynq a partir de la config.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
}

// Build conecta PostgreSQL y Redis y construye los casos de uso.
// component identifica al proceso (application_name y logs).
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, component string) (*Container, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name+"-"+component)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	rdb, err := redislock.NewClient(ctx, cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}

	c := &Container{
		Cfg:     cfg,
		Log:     log,
		Pool:    pool,
		Redis:   rdb,
		Jobs:    jobs.NewClient(RedisOpt(cfg.Redis)),
		Metrics: observability.NewMetrics(),
	}

	txRunner := postgres.NewTxRunner(pool)
	engine := fulfillment.NewEngine(fulfillment.Options{
		Mode:        fulfillment.Mode(cfg.Fulfillment.Mode),
		Parallelism: cfg.Fulfillment.Parallelism,
		Logger:      log.Component("fulfillment"),
		Recorder:    c.Metrics,
	})

	c.Invoices = billing.NewInvoiceUseCase(txRunner, engine, c.Jobs, billing.InvoiceConfig{
		Prefix:          cfg.Billing.InvoicePrefix,
		DefaultCurrency: cfg.Billing.DefaultCurrency,
		StrictItemTypes: cfg.Fulfillment.StrictItemTypes,
	}, log.Component("invoices"))

	c.Payments = billing.NewPaymentUseCase(txRunner, engine,
		redislock.NewLocker(rdb), gateway.NewSimulated(), c.Jobs, c.Metrics,
		billing.PaymentConfig{
			LockTTL:         cfg.Billing.PaymentLockTTL,
			StrictItemTypes: cfg.Fulfillment.StrictItemTypes,
		}, log.Component("payments"))

	c.PDF = billing.NewPDFUseCase(txRunner.Repositories().Invoices, infrapdf.NewMarotoPDFGenerator(""), cfg.Fulfillment.StrictItemTypes)
	c.Finance = finance.NewOverviewUseCase(postgres.NewFinanceRepository(pool), log.Component("finance"))
	return c, nil
}

// Close libera conexiones.
func (c *Container) Close() {
	if c.Jobs != nil {
		_ = c.Jobs.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
