// Package app wires the report service from configuration. Optional
// backends are connected only when configured; everything else falls back to
// in-process defaults.
package app

import (
	"context"
	"fmt"
	"time"

	"rcm-benchmark/internal/api"
	"rcm-benchmark/internal/benchmark"
	"rcm-benchmark/internal/common/aws"
	"rcm-benchmark/internal/common/config"
	"rcm-benchmark/internal/common/database"
	httpclient "rcm-benchmark/internal/common/http"
	"rcm-benchmark/internal/common/logger"
	"rcm-benchmark/internal/common/observability"
	"rcm-benchmark/internal/delivery"
	"rcm-benchmark/internal/refdata"
	"rcm-benchmark/internal/report"
	"rcm-benchmark/internal/reportindex"
	"rcm-benchmark/internal/reportstore"
)

// Connection attempts for backing services at startup.
const (
	connectAttempts = 10
	connectDelay    = 2 * time.Second
)

type App struct {
	Config  *config.Config
	Engine  *benchmark.Engine
	Source  refdata.ReferenceDataSource
	Store   reportstore.Store
	Service *report.Service
	Checks  map[string]api.ReadinessCheck

	closers []func() error
	logger  logger.Logger
}

// Build connects every configured backend and assembles the service.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Engine: benchmark.NewEngine(benchmark.Config{
			ImplementationInvestment: cfg.Benchmark.ImplementationInvestment,
			AnnualProgramCost:        cfg.Benchmark.AnnualProgramCost,
		}),
		Checks: map[string]api.ReadinessCheck{},
		logger: log,
	}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store

	source, err := a.openSource(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Source = source

	deps := report.Deps{
		Engine:   a.Engine,
		Source:   source,
		Store:    store,
		Delivery: a.openDelivery(ctx),
		Logger:   log,
	}
	if index := a.openIndex(ctx); index != nil {
		deps.Index = index
	}

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		log.Warn("otel metrics disabled", map[string]interface{}{"error": err.Error()})
	} else {
		deps.Observability = obs
		a.closers = append(a.closers, func() error { return obs.Shutdown(context.Background()) })
	}

	a.Service = report.NewService(deps, cfg.Server.PublicBaseURL)
	return a, nil
}

// Close releases backends in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	a.closers = nil
}

func (a *App) openStore(ctx context.Context) (reportstore.Store, error) {
	pgCfg := a.Config.Database.Postgres
	if !pgCfg.Enabled() {
		a.logger.Info("report archive in memory", nil)
		return reportstore.NewMemoryStore(), nil
	}

	pg, err := database.NewPostgres(pgCfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pg.Close)

	if err := RetryWithBackoff(func() error { return pg.Ping(ctx) }, connectAttempts, connectDelay, a.logger, "PostgreSQL connection"); err != nil {
		return nil, err
	}

	store := reportstore.NewPostgresStore(pg.DB)
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	a.Checks["postgres"] = pg.Ping
	a.logger.Info("PostgreSQL connected successfully", map[string]interface{}{"host": pgCfg.Host})
	return store, nil
}

func (a *App) openSource(ctx context.Context) (refdata.ReferenceDataSource, error) {
	rdCfg := a.Config.RefData
	var deps refdata.Deps
	if rdCfg.Source == refdata.SourceLive {
		client := httpclient.NewClient(config.GetDuration(rdCfg.LookupTimeout))
		deps.Lookup = refdata.NewCMSClient(client, rdCfg.CMSBaseURL, rdCfg.CMSDatasetID)

		if addr := a.Config.Database.Redis.Address; addr != "" {
			rc, err := database.NewRedis(a.Config.Database.Redis)
			if err != nil {
				return nil, err
			}
			a.closers = append(a.closers, rc.Close)
			if err := rc.Ping(ctx); err != nil {
				// The cache bypasses itself on errors, so a cold Redis is not fatal.
				a.logger.Warn("redis unavailable at startup", map[string]interface{}{"address": addr, "error": err.Error()})
			}
			deps.Cache = refdata.NewRedisHospitalCache(rc.Client)
			a.Checks["redis"] = rc.Ping
		}
	}

	source, err := refdata.NewSource(rdCfg, deps, a.logger)
	if err != nil {
		return nil, fmt.Errorf("reference data: %w", err)
	}
	a.logger.Info("reference data source ready", map[string]interface{}{"source": source.Name()})
	return source, nil
}

// openIndex returns nil when search is not configured or not reachable.
func (a *App) openIndex(ctx context.Context) *reportindex.Index {
	esCfg := a.Config.Database.Elasticsearch
	if !esCfg.Enabled() {
		return nil
	}

	es, err := database.NewElasticsearch(esCfg)
	if err != nil {
		a.logger.Warn("report search disabled", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if err := RetryWithBackoff(func() error { return es.Ping(ctx) }, connectAttempts, connectDelay, a.logger, "Elasticsearch connection"); err != nil {
		a.logger.Warn("report search disabled", map[string]interface{}{"error": err.Error()})
		return nil
	}

	index := reportindex.New(es.Client, esCfg.Index, a.logger)
	if err := index.EnsureIndex(ctx); err != nil {
		a.logger.Warn("report search disabled", map[string]interface{}{"error": err.Error()})
		return nil
	}
	a.Checks["elasticsearch"] = es.Ping
	return index
}

func (a *App) openDelivery(ctx context.Context) *delivery.Dispatcher {
	dCfg := a.Config.Delivery

	var clay *delivery.ClayNotifier
	if dCfg.Clay.WebhookURL != "" {
		clay = delivery.NewClayNotifier(httpclient.NewClient(config.GetDuration(dCfg.Clay.Timeout)), dCfg.Clay.WebhookURL)
	}

	var (
		email  *delivery.SESNotifier
		events *delivery.SNSPublisher
	)
	if dCfg.AWS.SES.Enabled || dCfg.AWS.SNS.Enabled {
		awsCfg, err := aws.LoadConfig(ctx, dCfg.AWS.Region)
		if err != nil {
			a.logger.Warn("aws delivery disabled", map[string]interface{}{"error": err.Error()})
		} else {
			if dCfg.AWS.SES.Enabled {
				email = delivery.NewSESNotifier(aws.NewSESClient(awsCfg), dCfg.AWS.SES.FromEmail)
			}
			if dCfg.AWS.SNS.Enabled {
				events = delivery.NewSNSPublisher(aws.NewSNSClient(awsCfg), dCfg.AWS.SNS.TopicARN)
			}
		}
	}

	a.logger.Info("delivery channels configured", map[string]interface{}{
		"clay":  clay != nil,
		"email": email != nil,
		"event": events != nil,
	})
	return delivery.NewDispatcher(clay, email, events, a.logger)
}

// RetryWithBackoff runs operation until it succeeds, doubling the delay
// between attempts.
func RetryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
