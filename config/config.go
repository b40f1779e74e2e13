// Package config loads settings for the finance ledger binaries from the
// environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Port            int
	DBPath          string
	DefaultCurrency string
	CORSOrigins     []string
	AuditInterval   time.Duration
	Kafka           KafkaConfig
	Import          ImportConfig
}

// KafkaConfig configures entry event publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether events should be published.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// ImportConfig configures the CSV import driver.
type ImportConfig struct {
	VariantsFile string
	MaxErrors    int
}

// Load loads configuration from environment variables.
// It loads .env from the current directory if present; an explicit envPath
// must exist.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	port, err := parseIntEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}
	maxErrors, err := parseIntEnv("IMPORT_MAX_ERRORS", 20)
	if err != nil {
		return nil, err
	}
	auditInterval, err := time.ParseDuration(getEnvOrDefault("AUDIT_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid duration value for AUDIT_INTERVAL: %w", err)
	}

	return &Config{
		Port:            port,
		DBPath:          getEnvOrDefault("DB_PATH", "finance.db"),
		DefaultCurrency: strings.ToUpper(getEnvOrDefault("DEFAULT_CURRENCY", "USD")),
		CORSOrigins:     splitList(getEnvOrDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:8080")),
		AuditInterval:   auditInterval,
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnvOrDefault("KAFKA_TOPIC", "ledger_entries"),
		},
		Import: ImportConfig{
			VariantsFile: os.Getenv("IMPORT_VARIANTS_FILE"),
			MaxErrors:    maxErrors,
		},
	}, nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}
	return parsed, nil
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
