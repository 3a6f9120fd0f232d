package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, populated from environment variables
// (optionally via a .env file in the working directory).
type Config struct {
	HTTPAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// RedisAddr enables cross-node event fanout when set; empty disables it.
	RedisAddr     string
	RedisPassword string
}

// Load reads the configuration from the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":9000"),
		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "bidcraft"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getenv("DB_NAME", "bidcraft"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}
}

// PostgresDSN assembles the connection string for pgx and golang-migrate.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
