package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "lendledger", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 100, cfg.Chaos.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.Chaos.Duration)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVICE_NAME", "ledger-test")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	t.Setenv("CHAOS_CONCURRENCY", "8")
	t.Setenv("CHAOS_RATE", "12.5")
	t.Setenv("CHAOS_DURATION", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ledger-test", cfg.ServiceName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "localhost:4318", cfg.OTLPEndpoint)
	assert.Equal(t, 8, cfg.Chaos.Concurrency)
	assert.Equal(t, 12.5, cfg.Chaos.RatePerSecond)
	assert.Equal(t, 250*time.Millisecond, cfg.Chaos.Duration)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"CHAOS_CONCURRENCY": "many",
		"CHAOS_RATE":        "fast",
		"CHAOS_DURATION":    "forever",
		"CHAOS_PAUSE":       "10",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}

	t.Run("non-positive concurrency", func(t *testing.T) {
		t.Setenv("CHAOS_CONCURRENCY", "0")
		_, err := Load()
		assert.Error(t, err)
	})
}
