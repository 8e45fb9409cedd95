package app

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/coco-backend/internal/data/db"
	"github.com/yungbote/coco-backend/internal/data/store"
	"github.com/yungbote/coco-backend/internal/platform/logger"
)

type StoreBackend string

const (
	StoreBackendFile     StoreBackend = "file"
	StoreBackendSQLite   StoreBackend = "sqlite"
	StoreBackendPostgres StoreBackend = "postgres"
	StoreBackendRedis    StoreBackend = "redis"
)

type StoreBootstrapErrorCode string

const (
	StoreBootstrapErrorInvalidBackend StoreBootstrapErrorCode = "invalid_backend"
	StoreBootstrapErrorMissingRedis   StoreBootstrapErrorCode = "missing_redis"
	StoreBootstrapErrorConnectFailed  StoreBootstrapErrorCode = "connect_failed"
	StoreBootstrapErrorMigrateFailed  StoreBootstrapErrorCode = "migrate_failed"
)

type StoreBootstrapError struct {
	Code    StoreBootstrapErrorCode
	Backend StoreBackend
	Cause   error
}

func (e *StoreBootstrapError) Error() string {
	if e == nil {
		return "study set store bootstrap failed"
	}
	return fmt.Sprintf("study set store bootstrap failed (code=%s backend=%q): %v", e.Code, e.Backend, e.Cause)
}

func (e *StoreBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

var openPostgres = func(log *logger.Logger) (*gorm.DB, error) {
	return db.OpenPostgres(log, db.PostgresDSN(log))
}

// resolvePersister picks the persistence backend for the study-set store.
// The returned close func releases database handles it opened; rdb is only
// borrowed.
func resolvePersister(log *logger.Logger, cfg Config, rdb goredis.UniversalClient) (store.Persister, func(), error) {
	noop := func() {}
	backend := cfg.StoreBackend
	if backend == "" {
		backend = StoreBackendFile
	}
	log.Info("Selecting study set store", "backend", backend, "key", cfg.StoreKey)

	switch backend {
	case StoreBackendFile:
		return store.NewFilePersister(cfg.StorePath, cfg.StoreKey), noop, nil

	case StoreBackendSQLite, StoreBackendPostgres:
		var (
			gdb *gorm.DB
			err error
		)
		if backend == StoreBackendSQLite {
			gdb, err = db.OpenSQLite(log, cfg.SQLitePath)
		} else {
			gdb, err = openPostgres(log)
		}
		if err != nil {
			return nil, noop, &StoreBootstrapError{Code: StoreBootstrapErrorConnectFailed, Backend: backend, Cause: err}
		}
		closeDB := func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		if err := db.AutoMigrateAll(gdb); err != nil {
			closeDB()
			return nil, noop, &StoreBootstrapError{Code: StoreBootstrapErrorMigrateFailed, Backend: backend, Cause: err}
		}
		return store.NewGormPersister(gdb, cfg.StoreKey), closeDB, nil

	case StoreBackendRedis:
		if rdb == nil {
			return nil, noop, &StoreBootstrapError{
				Code:    StoreBootstrapErrorMissingRedis,
				Backend: backend,
				Cause:   errors.New("REDIS_ADDR is not set"),
			}
		}
		return store.NewRedisPersister(rdb, cfg.StoreKey), noop, nil
	}

	return nil, noop, &StoreBootstrapError{
		Code:    StoreBootstrapErrorInvalidBackend,
		Backend: backend,
		Cause:   fmt.Errorf("unsupported store backend %q", backend),
	}
}

// pingRedis dials addr and verifies the server answers.
func pingRedis(ctx context.Context, addr string) (goredis.UniversalClient, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}
