package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // APP_TIMEZONE must resolve in slim containers too

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DBHost    string
	DBUser    string
	DBPass    string
	DBName    string
	DBPort    string
	DBSSLMode string
	RedisURL  string

	MeiliSearchHost string
	MeiliMasterKey  string

	JWTSecret string

	// Location is the fixed reference timezone used for calendar-day boundaries
	// (daily login bonus, streaks). It is not the user's timezone.
	Location *time.Location

	RateLimitGame       time.Duration
	StreakSweepSchedule string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DBHost:    getEnv("DB_HOST", "localhost"),
		DBUser:    getEnv("DB_USER", "postgres"),
		DBPass:    os.Getenv("DB_PASS"),
		DBName:    getEnv("DB_NAME", "moodtracker"),
		DBPort:    getEnv("DB_PORT", "5432"),
		DBSSLMode: getEnv("DB_SSLMODE", "disable"),
		RedisURL:  os.Getenv("REDIS_URL"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		StreakSweepSchedule: getEnv("STREAK_SWEEP_SCHEDULE", "5 0 * * *"),
	}

	if cfg.JWTSecret == "" {
		if cfg.AppEnv != "development" {
			return nil, fmt.Errorf("JWT_SECRET is required outside development")
		}
		cfg.JWTSecret = "dev-secret"
	}

	var err error
	cfg.Location, err = time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	cfg.RateLimitGame, err = parseDuration(getEnv("RATE_LIMIT_GAME", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_GAME: %w", err)
	}

	if _, err := cron.ParseStandard(cfg.StreakSweepSchedule); err != nil {
		return nil, fmt.Errorf("invalid STREAK_SWEEP_SCHEDULE: %w", err)
	}

	return cfg, nil
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
