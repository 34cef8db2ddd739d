package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/coursetrack-backend/internal/observability"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
	"github.com/yungbote/coursetrack-backend/internal/realtime/bus"
)

const collectorInterval = 15 * time.Second

type App struct {
	Log        *logger.Logger
	DB         *gorm.DB
	Cfg        Config
	Repos      Repos
	Aggregates Aggregates
	Services   Services
	Metrics    *observability.Metrics
	Bus        bus.Bus

	redis         goredis.UniversalClient
	otelShutdown  func(context.Context) error
	stopReconcile func()
	cancel        context.CancelFunc
}

type Options struct {
	// SkipMigrate leaves the schema alone, for one-shot tools run against a managed database.
	SkipMigrate bool
}

func New(ctx context.Context, opts Options) (*App, error) {
	bootLog, err := logger.New("development")
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	cfg, err := LoadConfig(bootLog)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		ServiceName: "coursetrack",
		Environment: cfg.Environment,
		Endpoint:    cfg.Otel.Endpoint,
		Headers:     cfg.Otel.Headers,
		Insecure:    cfg.Otel.Insecure,
		SampleRatio: cfg.Otel.SampleRatio,
	})
	metrics := observability.Init(log, cfg.Metrics.Enabled)

	theDB, err := openDB(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	if !opts.SkipMigrate {
		if err := migrate(theDB, log); err != nil {
			log.Sync()
			return nil, err
		}
	}

	b, rdb, err := wireBus(cfg.Redis, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init progress bus: %w", err)
	}

	reposet := wireRepos(theDB, log)
	aggs := wireAggregates(theDB, log, cfg, reposet, metrics)
	serviceset := wireServices(log, cfg, reposet, aggs, b, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Aggregates:   aggs,
		Services:     serviceset,
		Metrics:      metrics,
		Bus:          b,
		redis:        rdb,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background parts of the worker: metrics endpoint, pool collectors
// and the reconcile schedule.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Metrics != nil {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.Metrics.Addr)
		a.Metrics.StartDBPoolCollector(ctx, a.Log, a.DB, collectorInterval)
		if a.redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.redis, collectorInterval)
		}
	}
	stop, err := a.Services.Reconciler.Schedule(ctx, a.Cfg.Progress.ReconcileSchedule)
	if err != nil {
		return err
	}
	a.stopReconcile = stop
	return nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.stopReconcile != nil {
		a.stopReconcile()
		a.stopReconcile = nil
	}
	var errs []error
	if a.Bus != nil {
		errs = append(errs, a.Bus.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, a.otelShutdown(ctx))
		cancel()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if err := errors.Join(errs...); err != nil && a.Log != nil {
		a.Log.Warn("shutdown finished with errors", "error", err)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
