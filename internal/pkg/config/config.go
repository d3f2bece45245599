package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config is the process configuration read from the environment.
type Config struct {
	AppPort         string
	DatabaseURL     string // empty selects the in-memory stores
	RedisAddr       string // empty disables checkout idempotency
	JWTSecret       string
	ShopName        string
	CatalogSeedFile string
	LogLevel        string
	Location        *time.Location
}

// Load reads .env files (if present) and then the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		slog.Warn("no .env file loaded, using process environment", "error", err)
	}

	tz := getEnv("TIMEZONE", "Asia/Jakarta")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	return &Config{
		AppPort:         getEnv("APP_PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		JWTSecret:       getEnv("JWT_SECRET", "change-me"),
		ShopName:        getEnv("SHOP_NAME", "Toko Kelontong"),
		CatalogSeedFile: os.Getenv("CATALOG_SEED_FILE"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Location:        loc,
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
