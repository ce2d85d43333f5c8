package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/unalkalkan/audiobooker/pkg/types"
	"gopkg.in/yaml.v3"
)

// Load reads and parses the configuration file. Environment variables
// prefixed AUDIOBOOKER_ override values loaded from the file.
func Load(configPath string) (*types.Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg types.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid.
func Validate(cfg *types.Config) error {
	if cfg.Storage.Adapter != "local" && cfg.Storage.Adapter != "s3" {
		return fmt.Errorf("invalid storage adapter: %s (must be 'local' or 's3')", cfg.Storage.Adapter)
	}

	if cfg.Storage.Adapter == "local" {
		if cfg.Storage.Local.BasePath == "" {
			return fmt.Errorf("local storage base_path is required")
		}
		if !filepath.IsAbs(cfg.Storage.Local.BasePath) {
			return fmt.Errorf("local storage base_path must be absolute: %s", cfg.Storage.Local.BasePath)
		}
	}

	if cfg.Storage.Adapter == "s3" {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("s3 region is required")
		}
	}

	if cfg.Pipeline.WorkerPoolSize <= 0 {
		cfg.Pipeline.WorkerPoolSize = 4
	}
	if cfg.Pipeline.MaxRetries < 0 {
		cfg.Pipeline.MaxRetries = 3
	}

	return nil
}

// applyEnvOverrides applies AUDIOBOOKER_-prefixed environment variable
// overrides on top of whatever was loaded from the config file.
func applyEnvOverrides(cfg *types.Config) {
	if val := os.Getenv("AUDIOBOOKER_STORAGE_ADAPTER"); val != "" {
		cfg.Storage.Adapter = val
	}
	if val := os.Getenv("AUDIOBOOKER_STORAGE_LOCAL_BASE_PATH"); val != "" {
		cfg.Storage.Local.BasePath = val
	}
	if val := os.Getenv("AUDIOBOOKER_STORAGE_S3_BUCKET"); val != "" {
		cfg.Storage.S3.Bucket = val
	}
	if val := os.Getenv("AUDIOBOOKER_STORAGE_S3_REGION"); val != "" {
		cfg.Storage.S3.Region = val
	}
	if val := os.Getenv("AUDIOBOOKER_STORAGE_S3_ENDPOINT"); val != "" {
		cfg.Storage.S3.Endpoint = val
	}
	if val := os.Getenv("AUDIOBOOKER_STORAGE_S3_ACCESS_KEY_ID"); val != "" {
		cfg.Storage.S3.AccessKeyID = val
	}
	if val := os.Getenv("AUDIOBOOKER_STORAGE_S3_SECRET_ACCESS_KEY"); val != "" {
		cfg.Storage.S3.SecretAccessKey = val
	}

	applyProviderEnvOverrides(cfg)
}

// applyProviderEnvOverrides applies provider-specific env vars, keyed
// by provider name: AUDIOBOOKER_LLM_<NAME>_API_KEY, etc.
func applyProviderEnvOverrides(cfg *types.Config) {
	for i := range cfg.Providers.LLM {
		prefix := fmt.Sprintf("AUDIOBOOKER_LLM_%s_", strings.ToUpper(cfg.Providers.LLM[i].Name))
		if val := os.Getenv(prefix + "API_KEY"); val != "" {
			cfg.Providers.LLM[i].APIKey = val
		}
		if val := os.Getenv(prefix + "ENDPOINT"); val != "" {
			cfg.Providers.LLM[i].Endpoint = val
		}
	}

	for i := range cfg.Providers.TTS {
		prefix := fmt.Sprintf("AUDIOBOOKER_TTS_%s_", strings.ToUpper(cfg.Providers.TTS[i].Name))
		if val := os.Getenv(prefix + "API_KEY"); val != "" {
			cfg.Providers.TTS[i].APIKey = val
		}
		if val := os.Getenv(prefix + "ENDPOINT"); val != "" {
			cfg.Providers.TTS[i].Endpoint = val
		}
	}
}

// GetDefault returns a default configuration for a freshly initialized
// project workspace.
func GetDefault() *types.Config {
	return &types.Config{
		Storage: types.StorageConfig{
			Adapter: "local",
			Local: types.LocalStorageOpts{
				BasePath: "/var/lib/audiobooker/storage",
			},
		},
		Pipeline: types.PipelineConfig{
			WorkerPoolSize: 4,
			MaxRetries:     3,
			RetryBackoffMs: 1000,
			TempDir:        "/tmp/audiobooker",
		},
	}
}
