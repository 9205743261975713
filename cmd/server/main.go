package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/moodtracker/internal/config"
	"anoa.com/moodtracker/internal/entity"
	"anoa.com/moodtracker/internal/server"
	"anoa.com/moodtracker/pkg/database"
	"anoa.com/moodtracker/pkg/logger"
	"anoa.com/moodtracker/pkg/response"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer appLog.Sync()
	response.UseLogger(appLog)

	db, err := database.Connect(cfg)
	if err != nil {
		appLog.Fatal("database connection failed", "error", err)
	}
	if err := migrate(db); err != nil {
		appLog.Fatal("migration failed", "error", err)
	}

	redisClient := connectRedis(cfg.RedisURL, appLog)
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv, err := server.NewServer(cfg, db, redisClient, appLog)
	if err != nil {
		appLog.Fatal("failed to build server", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		appLog.Error("server exited with error", "error", err)
	}
	appLog.Info("server stopped")
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.UserLedger{},
		&entity.LedgerArticleRead{},
		&entity.XPTransaction{},
		&entity.MoodEntry{},
		&entity.Notification{},
	)
}

// connectRedis returns nil when REDIS_URL is unset or unreachable.
func connectRedis(url string, appLog *logger.Logger) *redis.Client {
	if url == "" {
		appLog.Warn("REDIS_URL is empty, game throttling and live notifications disabled")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		appLog.Warn("invalid REDIS_URL, continuing without redis", "error", err)
		return nil
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		appLog.Warn("redis unreachable, continuing without redis", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}
