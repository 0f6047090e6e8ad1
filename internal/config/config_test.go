package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "POSTGRES_URL", "REDIS_ADDR", "KAFKA_BROKERS", "ORDER_TOPIC",
		"EMAIL_SERVICE_URL", "OTEL_EXPORTER_OTLP_ENDPOINT", "REQUEST_TIMEOUT", "SESSION_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := fromEnv()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "order.placed", cfg.OrderTopic)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("REQUEST_TIMEOUT", "750ms")
	t.Setenv("PORT", "9000")

	cfg, err := fromEnv()

	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 750*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, "9000", cfg.Port)
}

func TestFromEnv_InvalidDuration(t *testing.T) {
	tests := []string{"soon", "-1s", "0s"}
	for _, v := range tests {
		t.Run(v, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("REQUEST_TIMEOUT", v)

			_, err := fromEnv()

			assert.ErrorContains(t, err, "REQUEST_TIMEOUT")
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv("POSTGRES_URL"))
	require.NoError(t, os.Unsetenv("ORDER_TOPIC"))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("POSTGRES_URL=postgres://from-dotenv\nORDER_TOPIC=custom.topic\n"), 0o600))
	t.Chdir(dir)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "postgres://from-dotenv", cfg.PostgresURL)
	assert.Equal(t, "custom.topic", cfg.OrderTopic)
}

func TestConfig_Require(t *testing.T) {
	cfg := Config{RedisAddr: "localhost:6379"}

	err := cfg.Require("POSTGRES_URL", "REDIS_ADDR", "KAFKA_BROKERS")

	assert.EqualError(t, err, "missing required environment variables: POSTGRES_URL, KAFKA_BROKERS")
	assert.NoError(t, cfg.Require("REDIS_ADDR"))
}
