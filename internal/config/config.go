// Package config loads eido settings from defaults, config files and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables that override config keys.
const EnvPrefix = "EIDO_"

// DefaultLocalConfigPath is read when no --config flag is given.
const DefaultLocalConfigPath = ".eido/config.json"

// Configuration represents the eido tool configuration
type Configuration struct {
	LogLevel         string `koanf:"log_level" validate:"omitempty,oneof=debug info warn error"`
	ExcludeCase      bool   `koanf:"exclude_case"`
	SampleTableIndex string `koanf:"sample_table_index" validate:"required"`
	DefaultSchema    string `koanf:"default_schema"`
	ShowProgress     bool   `koanf:"show_progress"` // Show a spinner while schemas are fetched and checked
	ServerAddr       string `koanf:"server_addr" validate:"required"`
	MaxUploadMB      int    `koanf:"max_upload_mb" validate:"min=1,max=1024"`
	FetchRetries     int    `koanf:"fetch_retries" validate:"min=0,max=10"` // Retries of remote schema fetches on 5xx and network errors
}

// MaxUploadBytes is the upload limit of the HTTP front-end in bytes.
func (c *Configuration) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// GlobalConfigPath returns ~/.eido/config.json, or "" without a home directory.
func GlobalConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".eido", "config.json")
}

// Load loads configuration from global, local, and environment sources
// Priority: Environment variables > Local config > Global config > Defaults
func Load(localConfigPath string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		k.Set(key, value)
	}

	if globalPath := GlobalConfigPath(); globalPath != "" {
		if _, err := os.Stat(globalPath); err == nil {
			if err := k.Load(file.Provider(globalPath), json.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load global config: %w", err)
			}
		}
	}

	if localConfigPath != "" {
		if _, err := os.Stat(localConfigPath); err == nil {
			if err := k.Load(file.Provider(localConfigPath), json.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load local config: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.DefaultSchema = expandHomePath(cfg.DefaultSchema)

	return &cfg, nil
}

// envTransform converts environment variable names to config keys
// Example: EIDO_MAX_UPLOAD_MB -> max_upload_mb
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
