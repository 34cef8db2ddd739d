package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	datadb "github.com/yungbote/coursetrack-backend/internal/data/db"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
	"github.com/yungbote/coursetrack-backend/internal/realtime/bus"
)

func openDB(cfg DBConfig, log *logger.Logger) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		svc, err := datadb.NewSQLiteService(cfg.SQLitePath, log)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		return svc.DB(), nil
	default:
		svc, err := datadb.NewPostgresService(datadb.PostgresConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			Name:     cfg.Name,
			SSLMode:  cfg.SSLMode,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		return svc.DB(), nil
	}
}

func migrate(db *gorm.DB, log *logger.Logger) error {
	log.Info("Running migrations...")
	if err := datadb.AutoMigrateAll(db); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if err := datadb.EnsureProgressIndexes(db); err != nil {
		return fmt.Errorf("progress indexes: %w", err)
	}
	return nil
}

// wireBus returns a redis-backed bus when REDIS_ADDR is set and a no-op bus otherwise.
// The redis client is returned so the caller can sample it and close it on shutdown.
func wireBus(cfg RedisConfig, log *logger.Logger) (bus.Bus, goredis.UniversalClient, error) {
	if cfg.Addr == "" {
		log.Info("REDIS_ADDR not set; progress events are dropped")
		return bus.NewNoopBus(), nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	b, err := bus.NewRedisBus(log, rdb, cfg.Channel)
	if err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	return b, rdb, nil
}

