package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/themescore-backend/internal/config"
	apperr "github.com/yungbote/themescore-backend/internal/pkg/errors"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

// Open connects to the configured store.
func Open(cfg config.DBConfig, logg *logger.Logger) (*gorm.DB, error) {
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	gcfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
		// Batch writes manage their own transactions.
		SkipDefaultTransaction: true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	case config.DriverPostgres, "":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, apperr.Config("open db", fmt.Errorf("unknown driver %q", cfg.Driver))
	}

	gdb, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, apperr.Persistence("open db", fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err))
	}
	if cfg.Driver == config.DriverSQLite {
		// One writer at a time; the pipelined reader queues behind the open batch transaction.
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, apperr.Persistence("open db", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if logg != nil {
		target := cfg.SQLitePath
		if cfg.Driver != config.DriverSQLite {
			target = fmt.Sprintf("%s:%s/%s", cfg.Host, cfg.Port, cfg.Name)
		}
		logg.Info("database connected", "driver", cfg.Driver, "target", target)
	}
	return gdb, nil
}
