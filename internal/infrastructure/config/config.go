// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	threshold := cfg.Matching.SimilarityThreshold
//	dbPath := cfg.Storage.DatabasePath
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/eshaffer321/autoreconcile/internal/domain/reconciler"
	"github.com/eshaffer321/autoreconcile/internal/domain/similarity"
)

// Config represents the entire application configuration
type Config struct {
	Matching      MatchingConfig      `yaml:"matching"`
	Storage       StorageConfig       `yaml:"storage"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// MatchingConfig holds the allocation engine settings
type MatchingConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	WeightDescription   float64 `yaml:"weight_description"`
	WeightCounterparty  float64 `yaml:"weight_counterparty"`
	AmountScale         int32   `yaml:"amount_scale"`
	Workers             int     `yaml:"workers"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// APIConfig holds HTTP server configuration
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // maven, text, json, tint
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	engine := reconciler.DefaultConfig()
	return &Config{
		Matching: MatchingConfig{
			SimilarityThreshold: engine.Threshold,
			WeightDescription:   engine.Weights.Description,
			WeightCounterparty:  engine.Weights.Counterparty,
			AmountScale:         engine.AmountScale,
			Workers:             engine.Workers,
		},
		Storage: StorageConfig{
			DatabasePath: "reconcile.db",
		},
		API: APIConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "maven",
			},
			Metrics: MetricsConfig{
				Enabled: true,
			},
		},
	}
}

// ToEngineConfig converts the matching section into engine configuration.
// Weights are passed through as-is, even if they do not sum to 1.
func (m MatchingConfig) ToEngineConfig() reconciler.Config {
	return reconciler.Config{
		Threshold: m.SimilarityThreshold,
		Weights: similarity.Weights{
			Description:  m.WeightDescription,
			Counterparty: m.WeightCounterparty,
		},
		AmountScale: m.AmountScale,
		Workers:     m.Workers,
	}
}

// Validate rejects settings the engine cannot run with.
func (m MatchingConfig) Validate() error {
	if m.AmountScale < 0 {
		return fmt.Errorf("matching.amount_scale must be >= 0, got %d", m.AmountScale)
	}
	if m.Workers < 0 {
		return fmt.Errorf("matching.workers must be >= 0, got %d", m.Workers)
	}
	return nil
}

// Load reads and parses the config file. Keys missing from the file keep
// their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${RECONCILE_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	if err := cfg.Matching.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	def := Default()
	return &Config{
		Matching: MatchingConfig{
			SimilarityThreshold: getEnvFloat("RECONCILE_THRESHOLD", def.Matching.SimilarityThreshold),
			WeightDescription:   getEnvFloat("RECONCILE_WEIGHT_DESCRIPTION", def.Matching.WeightDescription),
			WeightCounterparty:  getEnvFloat("RECONCILE_WEIGHT_COUNTERPARTY", def.Matching.WeightCounterparty),
			AmountScale:         int32(getEnvInt("RECONCILE_AMOUNT_SCALE", int(def.Matching.AmountScale))),
			Workers:             getEnvInt("RECONCILE_WORKERS", def.Matching.Workers),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("RECONCILE_DB_PATH", def.Storage.DatabasePath),
		},
		API: APIConfig{
			Port:           getEnvInt("API_PORT", def.API.Port),
			AllowedOrigins: def.API.AllowedOrigins,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", def.Observability.Logging.Level),
				Format: getEnv("LOG_FORMAT", def.Observability.Logging.Format),
			},
			Metrics: MetricsConfig{
				Enabled: getEnv("METRICS_ENABLED", "true") != "false",
			},
		},
	}
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables
func LoadOrEnv_WithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if result, err := strconv.Atoi(val); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvFloat retrieves a float environment variable with a fallback default
func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if result, err := strconv.ParseFloat(val, 64); err == nil {
			return result
		}
	}
	return fallback
}
