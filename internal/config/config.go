package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the API.
type Config struct {
	AppPort     string
	DatabaseDSN string
	JWTSecret   string
	LogLevel    string

	RabbitMQURL      string
	RabbitMQExchange string

	GatewayBaseURL   string
	GatewayKeyID     string
	GatewayKeySecret string
	GatewayTimeout   time.Duration

	Currency             string
	MaxTransactionAmount int64 // in minor units
}

// Load reads configuration from the environment, falling back to development defaults.
func Load() (Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=marketplace port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "commerce")
	v.SetDefault("GATEWAY_BASE_URL", "https://api.razorpay.com/v1")
	v.SetDefault("GATEWAY_KEY_ID", "")
	v.SetDefault("GATEWAY_KEY_SECRET", "")
	v.SetDefault("GATEWAY_TIMEOUT", "10s")
	v.SetDefault("PAYMENTS_CURRENCY", "INR")
	v.SetDefault("PAYMENTS_MAX_AMOUNT_MINOR", 10_000_000)
	v.AutomaticEnv()

	cfg := Config{
		AppPort:              v.GetString("APP_PORT"),
		DatabaseDSN:          v.GetString("DATABASE_DSN"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		RabbitMQURL:          v.GetString("RABBITMQ_URL"),
		RabbitMQExchange:     v.GetString("RABBITMQ_EXCHANGE"),
		GatewayBaseURL:       v.GetString("GATEWAY_BASE_URL"),
		GatewayKeyID:         v.GetString("GATEWAY_KEY_ID"),
		GatewayKeySecret:     v.GetString("GATEWAY_KEY_SECRET"),
		GatewayTimeout:       v.GetDuration("GATEWAY_TIMEOUT"),
		Currency:             v.GetString("PAYMENTS_CURRENCY"),
		MaxTransactionAmount: v.GetInt64("PAYMENTS_MAX_AMOUNT_MINOR"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GatewayTimeout <= 0 {
		return Config{}, fmt.Errorf("GATEWAY_TIMEOUT must be positive, got %s", cfg.GatewayTimeout)
	}
	if cfg.MaxTransactionAmount <= 0 {
		return Config{}, fmt.Errorf("PAYMENTS_MAX_AMOUNT_MINOR must be positive, got %d", cfg.MaxTransactionAmount)
	}
	return cfg, nil
}
