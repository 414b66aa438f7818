package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime settings, loaded from the environment.
type Config struct {
	Port      string
	MongoURI  string
	MongoDB   string
	RedisAddr string
	JWTSecret string

	ReconnectGrace time.Duration
	StartCountdown time.Duration
}

// Load reads configuration from the environment with development
// defaults.
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "teamplay"),
		RedisAddr: stripRedisScheme(getEnv("REDIS_URI", "localhost:6379")),
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-production"),

		ReconnectGrace: getEnvSeconds("RECONNECT_GRACE_SECONDS", 30),
		StartCountdown: getEnvSeconds("START_COUNTDOWN_SECONDS", 3),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(fallback) * time.Second
}

func stripRedisScheme(addr string) string {
	return strings.TrimPrefix(addr, "redis://")
}
