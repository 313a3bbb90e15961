package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"yqhp/hookserver/common/config"
	"yqhp/hookserver/common/logger"
)

// Supported drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DSN 根据配置生成主库连接串
func DSN(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
			cfg.Username,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.Database,
			cfg.Charset,
		), nil
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host,
			cfg.Port,
			cfg.Username,
			cfg.Password,
			cfg.Database,
		), nil
	case DriverSQLite:
		return cfg.Path, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// Dialector returns the gorm dialector for driver and dsn.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Open 打开数据库连接，失败时按指数退避重试 ConnectRetries 次
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	open := func() error {
		d, err := connect(ctx, cfg, dsn, log)
		if err != nil {
			return err
		}
		db = d
		return nil
	}

	var policy backoff.BackOff = backoff.NewExponentialBackOff()
	policy = backoff.WithMaxRetries(policy, uint64(max(cfg.ConnectRetries, 0)))
	err = backoff.RetryNotify(open, backoff.WithContext(policy, ctx), func(err error, wait time.Duration) {
		log.Warn("database connect failed, retrying",
			zap.String("driver", cfg.Driver), zap.Duration("wait", wait), zap.Error(err))
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}
	return db, nil
}

func connect(ctx context.Context, cfg config.DatabaseConfig, dsn string, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.Driver, dsn)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(log, cfg.SlowThreshold),
	})
	if err != nil {
		return nil, err
	}

	if len(cfg.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.Replicas))
		for _, r := range cfg.Replicas {
			d, err := Dialector(cfg.Driver, r)
			if err != nil {
				closeQuietly(db)
				return nil, backoff.Permanent(err)
			}
			replicas = append(replicas, d)
		}
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}).
			SetMaxIdleConns(cfg.MaxIdleConns).
			SetMaxOpenConns(cfg.MaxOpenConns).
			SetConnMaxLifetime(cfg.ConnMaxLifetime))
		if err != nil {
			closeQuietly(db)
			return nil, err
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		closeQuietly(db)
		return nil, err
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		closeQuietly(db)
		return nil, err
	}
	return db, nil
}

var resolverName = new(dbresolver.DBResolver).Name()

// Close 关闭数据库连接，包括 dbresolver 注册的副本连接池
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	var errs []error
	if dr, ok := db.Config.Plugins[resolverName].(*dbresolver.DBResolver); ok {
		_ = dr.Call(func(pool gorm.ConnPool) error {
			if c, ok := pool.(interface{ Close() error }); ok {
				errs = append(errs, c.Close())
			}
			return nil
		})
	}

	sqlDB, err := db.DB()
	if err != nil {
		errs = append(errs, err)
	} else {
		errs = append(errs, sqlDB.Close())
	}
	return errors.Join(errs...)
}

func closeQuietly(db *gorm.DB) {
	_ = Close(db)
}
