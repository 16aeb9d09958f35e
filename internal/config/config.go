package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Images  ImagesConfig  `mapstructure:"images"`
	View    ViewConfig    `mapstructure:"view"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`
}

// CatalogConfig holds catalog API configuration
type CatalogConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	Timeout              int      `mapstructure:"timeout"`
	MaxConcurrency       int      `mapstructure:"max_concurrency"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	PartialResults       bool     `mapstructure:"partial_results"`
	Proxies              []string `mapstructure:"proxies"`
}

// RequestTimeout returns the per-request timeout
func (c CatalogConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// ImagesConfig holds thumbnail cache configuration
type ImagesConfig struct {
	CacheSize       int  `mapstructure:"cache_size"`
	Prefetch        bool `mapstructure:"prefetch"`
	PrefetchWorkers int  `mapstructure:"prefetch_workers"`
}

// ViewConfig holds the initial view state
type ViewConfig struct {
	Search    string `mapstructure:"search"`
	Favorites []int  `mapstructure:"favorites"`
}

// MetricsConfig holds the Prometheus listener configuration
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from config.yaml in the working directory with
// environment variable overrides. The file is optional.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url must not be empty")
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("catalog.timeout must be positive, got %d", c.Catalog.Timeout)
	}
	if c.Images.CacheSize <= 0 {
		return fmt.Errorf("images.cache_size must be positive, got %d", c.Images.CacheSize)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.base_url", "https://dummyjson.com")
	v.SetDefault("catalog.timeout", 10)
	v.SetDefault("catalog.max_concurrency", 0)
	v.SetDefault("catalog.max_requests_per_second", 0)
	v.SetDefault("catalog.partial_results", false)
	v.SetDefault("catalog.proxies", []string{})

	v.SetDefault("images.cache_size", 256)
	v.SetDefault("images.prefetch", false)
	v.SetDefault("images.prefetch_workers", 8)

	v.SetDefault("view.search", "")
	v.SetDefault("view.favorites", []int{})

	v.SetDefault("metrics.listen_addr", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
