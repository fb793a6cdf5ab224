// Package config holds the configuration tree, its defaults and the
// viper-based loader. Every process (CLI, API server, worker) builds one
// Config at start and treats it as read-only.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	RequestRate     float64       `mapstructure:"request_rate"` // per client IP, 0 disables
	RequestBurst    int           `mapstructure:"request_burst"`
}

// ProviderConfig holds the cultural-intelligence API client parameters.
type ProviderConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second
	RateBurst int           `mapstructure:"rate_burst"`
	UserAgent string        `mapstructure:"user_agent"`
}

// AnalysisConfig holds grid-fetch and composite-analysis parameters.
type AnalysisConfig struct {
	GridLimit      int           `mapstructure:"grid_limit"`
	RetryAttempts  int           `mapstructure:"retry_attempts"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff"`
	ParallelFetch  bool          `mapstructure:"parallel_fetch"`
	IssueBaseline  bool          `mapstructure:"issue_baseline"` // also fetch each issue for the base audience
	HistorySize    int           `mapstructure:"history_size"`
	ArtifactBucket string        `mapstructure:"artifact_bucket"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	LocationTTL  time.Duration `mapstructure:"location_ttl"`
}

// KafkaConfig holds Apache Kafka producer parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Acks         string        `mapstructure:"acks"` // "none" | "one" | "all"
	MaxRetries   int           `mapstructure:"max_retries"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	TopicPrefix  string        `mapstructure:"topic_prefix"`
	GroupID      string        `mapstructure:"group_id"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
}

// Config is the root configuration structure.  It is created once at process
// start and treated as immutable afterwards.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Provider ProviderConfig `mapstructure:"provider"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// Validate reports every semantic problem of a fully populated Config in a
// single ErrCodeValidation error, one "section.field: problem" per line.
func (c *Config) Validate() error {
	var problems []string
	check := func(bad bool, format string, args ...any) {
		if bad {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}
	validPort := func(p int) bool { return p >= 1 && p <= 65535 }

	check(!validPort(c.Server.Port), "server.port: %d out of range [1, 65535]", c.Server.Port)
	check(!oneOf(c.Server.Mode, "debug", "release", "test"), "server.mode: %q, expected debug|release|test", c.Server.Mode)

	check(c.Provider.BaseURL == "", "provider.base_url: required")
	check(c.Provider.RateLimit <= 0, "provider.rate_limit: must be > 0, got %v", c.Provider.RateLimit)

	check(c.Analysis.RetryAttempts < 1 || c.Analysis.RetryAttempts > DefaultRetryAttempts,
		"analysis.retry_attempts: must be in [1, %d], got %d", DefaultRetryAttempts, c.Analysis.RetryAttempts)
	check(c.Analysis.RetryBackoff < 0, "analysis.retry_backoff: must not be negative")
	check(c.Analysis.GridLimit < 1, "analysis.grid_limit: must be >= 1, got %d", c.Analysis.GridLimit)
	check(c.Analysis.HistorySize < 1, "analysis.history_size: must be >= 1, got %d", c.Analysis.HistorySize)

	if db := c.Database; db.Enabled {
		check(db.Host == "", "database.host: required")
		check(!validPort(db.Port), "database.port: %d out of range [1, 65535]", db.Port)
		check(db.User == "", "database.user: required")
		check(db.DBName == "", "database.db_name: required")
	}

	check(c.Redis.Addr == "", "redis.addr: required")
	check(c.Redis.DB < 0, "redis.db: must be >= 0, got %d", c.Redis.DB)

	check(c.Kafka.Enabled && len(c.Kafka.Brokers) == 0, "kafka.brokers: at least one broker required")

	check(c.MinIO.Endpoint == "", "minio.endpoint: required")
	check(c.MinIO.Bucket == "", "minio.bucket: required")

	check(!oneOf(c.Log.Level, "debug", "info", "warn", "error"), "log.level: %q, expected debug|info|warn|error", c.Log.Level)
	check(!oneOf(c.Log.Format, "json", "console"), "log.format: %q, expected json|console", c.Log.Format)

	if len(problems) == 0 {
		return nil
	}
	return errors.New(errors.ErrCodeValidation, "invalid configuration").
		WithDetail(strings.Join(problems, "\n"))
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
