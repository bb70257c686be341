package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the catalog service
type Config struct {
	ServiceName string
	DBDriver    string
	DBDSN       string
	HTTPPort    string
	RabbitMQURL string
	LogLevel    string
}

// Load loads configuration from the environment, reading a .env file first
// when one is present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName: getEnv("SERVICE_NAME", "catalog"),
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DBDSN:       getEnv("DB_DSN", "catalog.db"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
