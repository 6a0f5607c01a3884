// Package config loads application configuration from the environment.
package config

import "os"

// Config holds all application configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// DBPath is the SQLite database file path.
	DBPath string

	// RedisAddr enables the Redis-backed change stream when set
	// (host:port). Empty means the in-process bus is used instead.
	RedisAddr string

	// RedisPassword is the optional Redis auth password.
	RedisPassword string

	// StaticPath is the directory the frontend is served from.
	StaticPath string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "./data/bills.db"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		StaticPath:    getEnv("STATIC_PATH", "../frontend/static"),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
