package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/themescore-backend/internal/config"
	"github.com/yungbote/themescore-backend/internal/data/db"
	repos "github.com/yungbote/themescore-backend/internal/data/repos/scoring"
	"github.com/yungbote/themescore-backend/internal/observability"
	"github.com/yungbote/themescore-backend/internal/platform/envutil"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
	"github.com/yungbote/themescore-backend/internal/platform/redis"
)

type Options struct {
	// ServiceName labels traces and the logger.
	ServiceName string
	// Migrate runs AutoMigrateAll before returning.
	Migrate bool
}

type App struct {
	Log     *logger.Logger
	Cfg     config.Config
	DB      *gorm.DB
	Repos   repos.Set
	Metrics *observability.Metrics
	// Redis is nil when REDIS_ADDR is unset.
	Redis *goredis.Client

	shutdownOTel func(context.Context) error
}

// New wires logger, config, database, cache and tracing. Oracles are built
// lazily by the scoring entry points since the read API never needs them.
func New(ctx context.Context, opts Options) (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if opts.ServiceName != "" {
		log = log.With("service", opts.ServiceName)
	}

	cfg, err := config.Load(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	a := &App{Log: log, Cfg: cfg, Metrics: observability.NewMetrics()}
	a.shutdownOTel = observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: opts.ServiceName,
		Environment: cfg.LogMode,
	})

	theDB, err := db.Open(cfg.DB, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.DB = theDB
	if opts.Migrate {
		if err := db.AutoMigrateAll(theDB); err != nil {
			a.Close()
			return nil, err
		}
		log.Info("schema migrated")
	}
	a.Repos = repos.NewSet(theDB, log)

	if cfg.RedisAddr != "" {
		rdb, err := redis.NewClient(ctx, log, cfg.RedisAddr)
		if err != nil {
			// The cache is optional; scoring proceeds uncached.
			log.Warn("embedding cache disabled", "error", err)
		} else {
			a.Redis = rdb
		}
	}
	return a, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
		a.Redis = nil
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		a.DB = nil
	}
	if a.shutdownOTel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_ = a.shutdownOTel(ctx)
		cancel()
		a.shutdownOTel = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
