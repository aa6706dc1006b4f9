// Package config loads storefront settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "storefront.yaml"

// Config holds all storefront configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Shop      ShopConfig      `yaml:"shop"`
	Assistant AssistantConfig `yaml:"assistant"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `yaml:"driver"` // memory, file, sqlite
	Path   string `yaml:"path"`
	// Watch logs modifications of the file backend made by other processes.
	Watch bool `yaml:"watch"`
}

// ShopConfig holds business constants.
type ShopConfig struct {
	ShippingFee  float64 `yaml:"shipping_fee"`
	SeedProducts int     `yaml:"seed_products"`
	Currency     string  `yaml:"currency"`
}

// AssistantConfig configures the generative assistant. An empty key keeps it offline.
type AssistantConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// ValidDrivers lists the supported storage drivers.
var ValidDrivers = []string{"memory", "file", "sqlite"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: "10s",
		},
		Storage: StorageConfig{
			Driver: "file",
			Path:   filepath.Join("data", "storefront.json"),
		},
		Shop: ShopConfig{
			ShippingFee:  60,
			SeedProducts: 20,
			Currency:     "৳",
		},
		Assistant: AssistantConfig{
			Model:   "gemini-2.5-flash",
			Timeout: "30s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	// GEMINI_API_KEY wins over the generic API_KEY
	if key := os.Getenv("API_KEY"); key != "" {
		c.Assistant.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Assistant.APIKey = key
	}

	if addr := os.Getenv("STOREFRONT_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if driver := os.Getenv("STOREFRONT_STORAGE_DRIVER"); driver != "" {
		c.Storage.Driver = driver
	}
	if path := os.Getenv("STOREFRONT_STORAGE_PATH"); path != "" {
		c.Storage.Path = path
	}
	if level := os.Getenv("STOREFRONT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetShutdownTimeout returns the graceful shutdown budget.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetAssistantTimeout returns the per-call deadline for the model.
func (c *Config) GetAssistantTimeout() time.Duration {
	d, err := time.ParseDuration(c.Assistant.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !slices.Contains(ValidDrivers, c.Storage.Driver) {
		return fmt.Errorf("invalid storage driver: %s (valid: %v)", c.Storage.Driver, ValidDrivers)
	}
	if c.Storage.Driver == "file" && c.Storage.Path == "" {
		return fmt.Errorf("storage path is required for the file driver")
	}
	if c.Storage.Watch && c.Storage.Driver != "file" {
		return fmt.Errorf("storage watch is only supported by the file driver")
	}
	if c.Shop.ShippingFee < 0 {
		return fmt.Errorf("shipping fee must not be negative: %v", c.Shop.ShippingFee)
	}
	if c.Shop.SeedProducts < 0 {
		return fmt.Errorf("seed_products must not be negative: %d", c.Shop.SeedProducts)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	return nil
}
