// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Extract ExtractConfig `mapstructure:"extract"`
	Storage StorageConfig `mapstructure:"storage"`
	DB      DBConfig      `mapstructure:"db"`
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// GatewayConfig configures retrieval retry behavior.
type GatewayConfig struct {
	RetryCount        int    `mapstructure:"retry_count"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
	UserAgent         string `mapstructure:"user_agent"`
}

// ExtractConfig pins the theme-coupled extraction rules.
type ExtractConfig struct {
	ContainerClass  string `mapstructure:"container_class"`
	ImageIndex      int    `mapstructure:"image_index"`
	PriceSelector   string `mapstructure:"price_selector"`
	PriceChildIndex int    `mapstructure:"price_child_index"`
}

// StorageConfig sets the base path for product and image persistence.
type StorageConfig struct {
	BasePath string `mapstructure:"base_path"`
}

// DBConfig controls the optional scrape-run history database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// PubSubConfig holds metadata for publish-subscribe notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("auth.enabled", true)
	v.SetDefault("gateway.retry_count", 3)
	v.SetDefault("gateway.retry_delay_seconds", 3)
	v.SetDefault("gateway.timeout_seconds", 15)
	v.SetDefault("gateway.user_agent", "catalog-scraper/0.1")
	v.SetDefault("extract.container_class", "products columns-4")
	v.SetDefault("extract.image_index", 1)
	v.SetDefault("extract.price_selector", "bdi")
	v.SetDefault("extract.price_child_index", 1)
	v.SetDefault("storage.base_path", ".")
	v.SetDefault("db.table", "scrape_runs")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Gateway.RetryCount < 0 {
		return fmt.Errorf("gateway.retry_count must be >= 0")
	}
	if c.Gateway.RetryDelaySeconds < 0 {
		return fmt.Errorf("gateway.retry_delay_seconds must be >= 0")
	}
	if c.Gateway.TimeoutSeconds <= 0 {
		return fmt.Errorf("gateway.timeout_seconds must be > 0")
	}
	if c.Extract.ImageIndex < 0 || c.Extract.PriceChildIndex < 0 {
		return fmt.Errorf("extract indexes must be >= 0")
	}
	if c.Extract.ContainerClass == "" {
		return fmt.Errorf("extract.container_class must be set")
	}
	if c.Storage.BasePath == "" {
		return fmt.Errorf("storage.base_path must be set")
	}
	return nil
}

// RetryDelay returns the inter-attempt delay as a duration.
func (c GatewayConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// Timeout returns the per-request timeout as a duration.
func (c GatewayConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
