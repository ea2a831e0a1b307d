package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"datacheck/internal/integrity"
)

// ErrInvalid marks configuration that cannot be used as given
var ErrInvalid = errors.New("invalid configuration")

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Audit    AuditConfig
}

// DatabaseConfig holds connection settings for the run store. The URL stays
// optional: file-only audits never touch a database.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// AuditConfig holds audit run settings
type AuditConfig struct {
	DataFile       string
	ThresholdsFile string
	Parallel       bool
}

// Load reads configuration from environment variables. Nothing is required
// at load time; commands validate the sections they actually need.
func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Audit: AuditConfig{
			DataFile:       getEnvOrDefault("DATA_FILE", ""),
			ThresholdsFile: getEnvOrDefault("THRESHOLDS_FILE", ""),
			Parallel:       getEnvBoolOrDefault("AUDIT_PARALLEL", false),
		},
	}
}

// RequireDatabase validates that a run store is configured
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("%w: DATABASE_URL is required", ErrInvalid)
	}
	return nil
}

// LoadThresholds returns the default acceptance bounds overlaid with the
// YAML file at path. An empty path means defaults only. Keys absent from
// the file keep their default values.
func LoadThresholds(path string) (integrity.Thresholds, error) {
	th := integrity.DefaultThresholds()
	if path == "" {
		return th, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return th, fmt.Errorf("read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &th); err != nil {
		return th, fmt.Errorf("parse thresholds file %s: %w", path, err)
	}
	if err := th.Validate(); err != nil {
		return th, fmt.Errorf("thresholds file %s: %w", path, err)
	}
	return th, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
