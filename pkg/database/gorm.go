package database

import (
	"log"
	"os"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger keeps query logging at Warn (slow queries and errors) unless
// per-statement logging is explicitly enabled; vector search bodies are large
// and would swamp the log at Info.
func gormLogger(logQueries bool) logger.Interface {
	level := logger.Warn
	if logQueries {
		level = logger.Info
	}
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)
}

// NewGormDB opens the Postgres connection and sizes the pool from config.
// Embedding workers and request handlers share this pool, so the open-conns
// ceiling bounds total database pressure.
func NewGormDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Connection), &gorm.Config{
		Logger: gormLogger(cfg.LogQueries),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}
