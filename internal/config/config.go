package config

import (
	"fmt"
	"strings"
	"time"

	env "github.com/netflix/go-env"

	"github.com/Bhadri2015-SB/Bedrock/internal/types"
)

// Type alias for Config
type Config = types.Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var config Config

	_, err := env.UnmarshalFromEnviron(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values and adjusts them to safe ranges
func validateConfig(config *Config) error {
	if config.AWSRegion == "" {
		config.AWSRegion = "us-east-1"
	}

	// Prefix always addresses a folder-like key space
	if config.S3Prefix == "" {
		config.S3Prefix = "documents/"
	}
	config.S3Prefix = NormalizePrefix(config.S3Prefix)

	// Clamp upload concurrency
	if config.UploadConcurrency < 1 {
		config.UploadConcurrency = 1
	}
	if config.UploadConcurrency > 20 {
		config.UploadConcurrency = 20
	}

	// Polling intervals must stay positive; fall back to the documented defaults
	if config.IngestPollInterval <= 0 {
		config.IngestPollInterval = 10 * time.Second
	}
	if config.IngestTimeout <= 0 {
		config.IngestTimeout = 600 * time.Second
	}
	if config.CollectionPollInterval <= 0 {
		config.CollectionPollInterval = 30 * time.Second
	}
	if config.CollectionTimeout <= 0 {
		config.CollectionTimeout = 1200 * time.Second
	}

	if config.IngestPollInterval > config.IngestTimeout {
		return fmt.Errorf("INGEST_POLL_INTERVAL (%v) cannot exceed INGEST_TIMEOUT (%v)",
			config.IngestPollInterval, config.IngestTimeout)
	}
	if config.CollectionPollInterval > config.CollectionTimeout {
		return fmt.Errorf("COLLECTION_POLL_INTERVAL (%v) cannot exceed COLLECTION_TIMEOUT (%v)",
			config.CollectionPollInterval, config.CollectionTimeout)
	}

	return nil
}

// NormalizePrefix ensures a non-empty S3 prefix ends with a trailing slash
func NormalizePrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	if !strings.HasSuffix(prefix, "/") {
		return prefix + "/"
	}
	return prefix
}
