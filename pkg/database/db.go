package database

import (
	"fmt"
	"sync"

	"anoa.com/moodtracker/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	DB   *gorm.DB
	once sync.Once
	err  error
)

// Connect opens the shared postgres connection. Subsequent calls return the same handle.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	once.Do(func() {
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPass,
			cfg.DBName,
			cfg.DBPort,
			cfg.DBSSLMode,
		)

		logLevel := gormlogger.Warn
		if cfg.AppEnv == "development" {
			logLevel = gormlogger.Info
		}

		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(logLevel),
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return DB, nil
}
