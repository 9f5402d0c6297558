package app

import (
	"os"
	"time"
)

// Config описывает настройки запуска приложения.
type Config struct {
	APIAddr     string
	MetricsAddr string

	// PostgresDSN пустой означает работу на in-memory хранилище.
	PostgresDSN string

	KafkaBrokers string
	KafkaTopic   string

	StatsCacheTTL      time.Duration
	OutboxPollInterval time.Duration
}

// DefaultConfig возвращает базовые адреса и интервалы.
func DefaultConfig() Config {
	return Config{
		APIAddr:            ":8080",
		MetricsAddr:        ":9090",
		StatsCacheTTL:      10 * time.Minute,
		OutboxPollInterval: time.Second,
	}
}

// ReadConfig формирует конфигурацию, позволяя переопределить
// значения через переменные окружения.
func ReadConfig() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("ORDERS_API_ADDR"); v != "" {
		cfg.APIAddr = v
	}
	if v := os.Getenv("ORDERS_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("ORDERS_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = v
	}
	if v := os.Getenv("ORDERS_EVENTS_TOPIC"); v != "" {
		cfg.KafkaTopic = v
	}
	if v := os.Getenv("ORDERS_STATS_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil && ttl > 0 {
			cfg.StatsCacheTTL = ttl
		}
	}
	if v := os.Getenv("ORDERS_OUTBOX_POLL_INTERVAL"); v != "" {
		if interval, err := time.ParseDuration(v); err == nil && interval > 0 {
			cfg.OutboxPollInterval = interval
		}
	}
	return cfg
}
