// Package config reads service settings from the environment. A .env file in
// the working directory is loaded first when present; real environment
// variables win over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	PostgresURL     string
	RedisAddr       string
	KafkaBrokers    []string
	OrderTopic      string
	EmailServiceURL string
	OTLPEndpoint    string
	RequestTimeout  time.Duration
	SessionTTL      time.Duration
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return fromEnv()
}

func fromEnv() (Config, error) {
	cfg := Config{
		Port:            getenv("PORT", "8080"),
		PostgresURL:     os.Getenv("POSTGRES_URL"),
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		OrderTopic:      getenv("ORDER_TOPIC", "order.placed"),
		EmailServiceURL: os.Getenv("EMAIL_SERVICE_URL"),
		OTLPEndpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var err error
	if cfg.RequestTimeout, err = duration("REQUEST_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = duration("SESSION_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Require fails naming every listed setting that is empty.
func (c Config) Require(names ...string) error {
	values := map[string]bool{
		"POSTGRES_URL":      c.PostgresURL != "",
		"REDIS_ADDR":        c.RedisAddr != "",
		"KAFKA_BROKERS":     len(c.KafkaBrokers) > 0,
		"EMAIL_SERVICE_URL": c.EmailServiceURL != "",
	}

	var missing []string
	for _, name := range names {
		if !values[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, v)
	}
	return d, nil
}
