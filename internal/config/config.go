// Package config provides configuration management for the Edge Finder application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App            AppConfig            `mapstructure:"app" validate:"required"`
	Server         ServerConfig         `mapstructure:"server" validate:"required"`
	Database       DatabaseConfig       `mapstructure:"database" validate:"required"`
	OddsProviders  []ProviderConfig     `mapstructure:"odds_providers" validate:"required,min=1,dive"`
	Model          ModelConfig          `mapstructure:"model" validate:"required"`
	Recommendation RecommendationConfig `mapstructure:"recommendation" validate:"required"`
	Ingestion      IngestionConfig      `mapstructure:"ingestion" validate:"required"`
	Metrics        MetricsConfig        `mapstructure:"metrics" validate:"required"`
	Audit          AuditConfig          `mapstructure:"audit"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents HTTP API server configuration
type ServerConfig struct {
	ListenAddress       string   `mapstructure:"listen_address" validate:"required"`
	ReadTimeoutSeconds  int      `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds int      `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	AllowedOrigins      []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// ProviderConfig represents a single odds provider configuration
type ProviderConfig struct {
	Name         string  `mapstructure:"name" validate:"required"`
	Enabled      bool    `mapstructure:"enabled"`
	BaseURL      string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey       string  `mapstructure:"api_key"`
	RateLimit    float64 `mapstructure:"rate_limit" validate:"omitempty,gt=0"`
	MaxRetries   int     `mapstructure:"max_retries" validate:"omitempty,gte=0"`
	CacheTTLSecs int     `mapstructure:"cache_ttl_seconds" validate:"omitempty,gt=0"`
}

// ModelConfig represents prediction model configuration
type ModelConfig struct {
	RegistryDir       string  `mapstructure:"registry_dir" validate:"required"`
	DefaultModel      string  `mapstructure:"default_model" validate:"required"`
	CacheTTLSeconds   int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxSize      int     `mapstructure:"cache_max_size" validate:"required,gt=0"`
	TrainIterations   int     `mapstructure:"train_iterations" validate:"required,gt=0"`
	TrainLearningRate float64 `mapstructure:"train_learning_rate" validate:"required,gt=0"`
	ForestTrees       int     `mapstructure:"forest_trees" validate:"required,gt=0"`
	ForestMaxDepth    int     `mapstructure:"forest_max_depth" validate:"required,gt=0"`
}

// RecommendationConfig represents EV ranking configuration
type RecommendationConfig struct {
	MinExpectedValue float64 `mapstructure:"min_expected_value" validate:"gte=0"`
	DefaultMaxOdds   float64 `mapstructure:"default_max_odds" validate:"required,gt=1"`
	MaxCandidates    int     `mapstructure:"max_candidates" validate:"required,gt=0"`
}

// IngestionConfig represents odds snapshot ingestion configuration
type IngestionConfig struct {
	Schedule               string `mapstructure:"schedule" validate:"required"`
	PollingIntervalSeconds int    `mapstructure:"polling_interval_seconds" validate:"required,gt=0"`
	BatchSize              int    `mapstructure:"batch_size" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// AuditConfig represents recommendation audit logging configuration
type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetProvider returns the configuration for a named odds provider
func (c *Config) GetProvider(name string) (ProviderConfig, bool) {
	for _, p := range c.OddsProviders {
		if p.Name == name {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

// EnabledProviders returns the names of all enabled odds providers
func (c *Config) EnabledProviders() []string {
	names := make([]string, 0, len(c.OddsProviders))
	for _, p := range c.OddsProviders {
		if p.Enabled {
			names = append(names, p.Name)
		}
	}
	return names
}

// ReadTimeout returns the HTTP read timeout as a duration
func (c *ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the HTTP write timeout as a duration
func (c *ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// PredictionCacheTTL returns the prediction cache TTL as a duration
func (c *ModelConfig) PredictionCacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
