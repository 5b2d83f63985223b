// Package config provides configuration management for the Sharpline application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Detection DetectionConfig `mapstructure:"detection" validate:"required"`
	Lines     LinesConfig     `mapstructure:"lines" validate:"required"`
	Store     StoreConfig     `mapstructure:"store" validate:"required"`
	Execution ExecutionConfig `mapstructure:"execution" validate:"required"`
	Providers ProvidersConfig `mapstructure:"providers" validate:"required"`
	Schedule  ScheduleConfig  `mapstructure:"schedule" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
	Health    HealthConfig    `mapstructure:"health" validate:"required"`
	Features  FeaturesConfig  `mapstructure:"features"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
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

// DetectionConfig represents edge detection thresholds
type DetectionConfig struct {
	EdgeThreshold       float64 `mapstructure:"edge_threshold" validate:"required,gt=0,lt=1"`
	StrongEdgeThreshold float64 `mapstructure:"strong_edge_threshold" validate:"required,gt=0,lt=1"`
	MinSampleSize       int     `mapstructure:"min_sample_size" validate:"required,gt=0"`
	MinSimilarity       float64 `mapstructure:"min_similarity" validate:"required,gte=0,lte=1"`
	TopK                int     `mapstructure:"top_k" validate:"required,gt=0"`
	ConfidenceSample    int     `mapstructure:"confidence_sample" validate:"required,gt=0"`
	RLMTrigger          float64 `mapstructure:"rlm_trigger" validate:"required,gt=0,lt=1"`
	RLMBoost            float64 `mapstructure:"rlm_boost" validate:"required,gte=1"`
	SteamBoost          float64 `mapstructure:"steam_boost" validate:"required,gte=1"`
}

// LinesConfig represents line movement tracking configuration
type LinesConfig struct {
	HistoryCap              int     `mapstructure:"history_cap" validate:"required,gt=0"`
	SteamThresholdPts       float64 `mapstructure:"steam_threshold_pts" validate:"required,gt=0"`
	SteamWindowMinutes      int     `mapstructure:"steam_window_minutes" validate:"required,gt=0"`
	SharpVelocityThreshold  float64 `mapstructure:"sharp_velocity_threshold" validate:"required,gt=0"`
	MinVelocitySpanMinutes  int     `mapstructure:"min_velocity_span_minutes" validate:"required,gt=0"`
}

// StoreConfig represents the vector store configuration
type StoreConfig struct {
	Path         string `mapstructure:"path" validate:"required"`
	RebuildEvery int    `mapstructure:"rebuild_every" validate:"required,gt=0"`
	UseIndex     bool   `mapstructure:"use_index"`
}

// ExecutionConfig represents staking configuration
type ExecutionConfig struct {
	KellyFraction float64 `mapstructure:"kelly_fraction" validate:"required,gt=0,lte=1"`
	Bankroll      float64 `mapstructure:"bankroll" validate:"required,gt=0"`
	ArbStake      float64 `mapstructure:"arb_stake" validate:"required,gt=0"`
}

// ProvidersConfig represents external data provider configuration
type ProvidersConfig struct {
	OddsAPI  OddsAPIConfig  `mapstructure:"odds_api" validate:"required"`
	Scores   ScoresConfig   `mapstructure:"scores" validate:"required"`
	LineFeed LineFeedConfig `mapstructure:"line_feed"`
}

// OddsAPIConfig represents the odds aggregator API configuration
type OddsAPIConfig struct {
	BaseURL           string `mapstructure:"base_url" validate:"required,url"`
	APIKey            string `mapstructure:"api_key" validate:"required"`
	Sport             string `mapstructure:"sport" validate:"required"`
	Regions           string `mapstructure:"regions" validate:"required"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts     int    `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimitPerSec   float64 `mapstructure:"rate_limit_per_sec" validate:"required,gt=0"`
	CacheTTLSeconds   int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// ScoresConfig represents the scores and injuries feed configuration
type ScoresConfig struct {
	BaseURL         string `mapstructure:"base_url" validate:"required,url"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// LineFeedConfig represents the streaming line feed configuration
type LineFeedConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	URL              string `mapstructure:"url"`
	ReconnectSeconds int    `mapstructure:"reconnect_seconds"`
}

// ScheduleConfig represents background job scheduling
type ScheduleConfig struct {
	OddsPollCron     string `mapstructure:"odds_poll_cron" validate:"required"`
	StorePersistCron string `mapstructure:"store_persist_cron" validate:"required"`
	IndexRebuildCron string `mapstructure:"index_rebuild_cron" validate:"required"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents health endpoint configuration
type HealthConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	ArbitrageScanEnabled bool `mapstructure:"arbitrage_scan_enabled"`
	SignalBoostsEnabled  bool `mapstructure:"signal_boosts_enabled"`
	AuditLoggingEnabled  bool `mapstructure:"audit_logging_enabled"`
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

// SteamWindow returns the steam move window as a duration.
func (c *LinesConfig) SteamWindow() time.Duration {
	return time.Duration(c.SteamWindowMinutes) * time.Minute
}

// MinVelocitySpan returns the minimum velocity span as a duration.
func (c *LinesConfig) MinVelocitySpan() time.Duration {
	return time.Duration(c.MinVelocitySpanMinutes) * time.Minute
}
