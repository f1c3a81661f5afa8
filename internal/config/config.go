package config

import (
	"os"
	"time"
)

type Config struct {
	Port        string
	Env         string
	DatabaseDSN string
	TokenExpiry time.Duration
}

func Load() Config {
	return Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseDSN: getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/usergate?parseTime=true"),
		TokenExpiry: 30 * time.Minute,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
