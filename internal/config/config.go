// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds settings shared by the binaries under cmd/.
type Config struct {
	ServiceName  string
	LogLevel     string
	LogFormat    string
	OTLPEndpoint string
	Chaos        Chaos
}

// Chaos tunes the chaos game day.
type Chaos struct {
	Concurrency    int
	RatePerSecond  float64
	Duration       time.Duration
	SampleInterval time.Duration
	Pause          time.Duration
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		ServiceName:  getEnv("SERVICE_NAME", "lendledger"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	var err error
	if cfg.Chaos.Concurrency, err = strconv.Atoi(getEnv("CHAOS_CONCURRENCY", "100")); err != nil {
		return Config{}, fmt.Errorf("parse CHAOS_CONCURRENCY: %w", err)
	}
	if cfg.Chaos.Concurrency <= 0 {
		return Config{}, fmt.Errorf("CHAOS_CONCURRENCY must be positive, got %d", cfg.Chaos.Concurrency)
	}
	if cfg.Chaos.RatePerSecond, err = strconv.ParseFloat(getEnv("CHAOS_RATE", "200"), 64); err != nil {
		return Config{}, fmt.Errorf("parse CHAOS_RATE: %w", err)
	}
	if cfg.Chaos.Duration, err = time.ParseDuration(getEnv("CHAOS_DURATION", "5s")); err != nil {
		return Config{}, fmt.Errorf("parse CHAOS_DURATION: %w", err)
	}
	if cfg.Chaos.SampleInterval, err = time.ParseDuration(getEnv("CHAOS_SAMPLE_INTERVAL", "1s")); err != nil {
		return Config{}, fmt.Errorf("parse CHAOS_SAMPLE_INTERVAL: %w", err)
	}
	if cfg.Chaos.Pause, err = time.ParseDuration(getEnv("CHAOS_PAUSE", "1s")); err != nil {
		return Config{}, fmt.Errorf("parse CHAOS_PAUSE: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
