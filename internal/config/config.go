package config

import (
	"os"
	"strconv"
	"time"

	"gocorda/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Engine   EngineConfig
	LogLevel string
}

// DatabaseConfig holds the run store connection. An empty URL disables the store.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64
}

// EngineConfig holds the reconstruction defaults
type EngineConfig struct {
	N             int
	PenaltyFactor float64
	Support       int
	TFlux         float64
	Tolerance     float64
	// Workers bounds concurrent reconstructions in benchmarks and the API
	Workers int
}

// LoadDotEnv loads .env files if they exist; variables already set win
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrapf(errors.WithCode(errors.CodeConfigInvalid, err), "failed to load %s", p)
		}
	}
	return nil
}

// Load reads configuration from .env and environment variables and validates it
func Load() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	config := &Config{
		Database: DatabaseConfig{URL: getEnvOrDefault("DATABASE_URL", "")},
		Server:   *loadServerConfig(),
		Engine:   *loadEngineConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:         getEnvOrDefault("PORT", "8080"),
		ReadTimeout:  getEnvDurationOrDefault("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getEnvDurationOrDefault("WRITE_TIMEOUT", 10*time.Minute),
		MaxBodyBytes: int64(getEnvIntOrDefault("MAX_BODY_MB", 64)) << 20,
	}
}

func loadEngineConfig() *EngineConfig {
	return &EngineConfig{
		N:             getEnvIntOrDefault("CORDA_N", 3),
		PenaltyFactor: getEnvFloatOrDefault("CORDA_PENALTY_FACTOR", 100),
		Support:       getEnvIntOrDefault("CORDA_SUPPORT", 5),
		TFlux:         getEnvFloatOrDefault("CORDA_TFLUX", 1),
		Tolerance:     getEnvFloatOrDefault("CORDA_TOLERANCE", 1e-7),
		Workers:       getEnvIntOrDefault("CORDA_WORKERS", 4),
	}
}

func validateConfig(config *Config) error {
	e := config.Engine
	if e.N < 1 {
		return errors.ConfigInvalid("CORDA_N must be at least 1")
	}
	if e.PenaltyFactor <= 0 {
		return errors.ConfigInvalid("CORDA_PENALTY_FACTOR must be positive")
	}
	if e.Support < 1 {
		return errors.ConfigInvalid("CORDA_SUPPORT must be at least 1")
	}
	if e.Tolerance <= 0 || e.TFlux <= e.Tolerance {
		return errors.ConfigInvalid("CORDA_TFLUX must exceed a positive CORDA_TOLERANCE")
	}
	if e.Workers < 1 {
		return errors.ConfigInvalid("CORDA_WORKERS must be at least 1")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
