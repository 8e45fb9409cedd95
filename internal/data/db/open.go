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

	"github.com/yungbote/coco-backend/internal/platform/envutil"
	"github.com/yungbote/coco-backend/internal/platform/logger"
)

func gormConfig() *gorm.Config {
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}
}

// PostgresDSN builds the DSN from POSTGRES_* variables.
func PostgresDSN(logg *logger.Logger) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		envutil.String("POSTGRES_USER", "postgres", logg),
		envutil.String("POSTGRES_PASSWORD", "", logg),
		envutil.String("POSTGRES_HOST", "localhost", logg),
		envutil.String("POSTGRES_PORT", "5432", logg),
		envutil.String("POSTGRES_NAME", "coco", logg),
		envutil.String("POSTGRES_SSLMODE", "disable", logg),
	)
}

func OpenPostgres(logg *logger.Logger, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	logg.With("service", "PostgresService").Info("connected to postgres")
	return db, nil
}

// OpenSQLite opens path; ":memory:" gives a private in-memory database.
func OpenSQLite(logg *logger.Logger, path string) (*gorm.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		// each pooled connection would otherwise see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	logg.With("service", "SQLiteService").Debug("opened sqlite", "path", path)
	return db, nil
}
