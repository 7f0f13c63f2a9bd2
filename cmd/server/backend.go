package main

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"qrstats/internal/cache"
	"qrstats/internal/config"
	"qrstats/internal/repository"
	"qrstats/internal/repository/memory"
	postgresRepo "qrstats/internal/repository/postgres"
	redisRepo "qrstats/internal/repository/redis"
	customLogger "qrstats/pkg/logger"
)

// backend bundles the stores selected by STORE_BACKEND and the clients to close on exit
type backend struct {
	records  repository.RecordStore
	counters repository.CounterStore
	closers  []func() error
	logger   *customLogger.Logger
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			b.logger.Error("Error closing backend connection", "error", err)
		}
	}
}

func openBackend(ctx context.Context, cfg *config.Config, log *customLogger.Logger) (*backend, error) {
	b := &backend{logger: log}

	switch cfg.StoreBackend {
	case "memory":
		store := memory.NewStore()
		b.records = store.Records()
		b.counters = store.Counters()
		log.Warn("Using in-memory store, data is lost on restart")

	case "redis":
		client, err := redisRepo.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, client.Close)
		b.records = redisRepo.NewRecordStore(client)
		b.counters = redisRepo.NewCounterStore(client)

	case "postgres":
		db, err := initDatabase(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, sqlDB.Close)

		if err := postgresRepo.Migrate(db); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}

		b.records = postgresRepo.NewTargetRepository(db)
		b.counters = postgresRepo.NewCounterRepository(db)

		// Records never change once written, so redis can front them without invalidation
		client, err := redisRepo.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn("Failed to initialize Redis cache, continuing without cache", "error", err)
			break
		}
		b.closers = append(b.closers, client.Close)
		b.records = cache.NewCachedRecordStore(b.records, cache.NewRedisCache(client, cache.DefaultPrefix), cfg.CacheTTL, log)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	return b, nil
}

// gormWriter wraps our custom logger to implement gorm's logger.Writer interface
type gormWriter struct {
	logger *customLogger.Logger
}

// Printf implements the logger.Writer interface
func (w *gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn(fmt.Sprintf(format, args...))
}

// initDatabase initializes the PostgreSQL database connection with connection pooling
func initDatabase(ctx context.Context, cfg *config.Config, log *customLogger.Logger) (*gorm.DB, error) {
	gormLogger := gormlogger.New(
		&gormWriter{logger: log},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var db *gorm.DB
	var err error

	const maxRetries = 5
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{
			Logger:                 gormLogger,
			SkipDefaultTransaction: true,
			PrepareStmt:            true,
		})
		if err == nil {
			break
		}

		log.Warn("Failed to connect to database, retrying...", "attempt", i+1, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connection established successfully")
	return db, nil
}
