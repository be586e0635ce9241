// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Reasoning ReasoningConfig `mapstructure:"reasoning"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Domain Configuration Sections ---

// CatalogConfig selects and parameterizes the scheme ingestion source.
type CatalogConfig struct {
	Source          string `mapstructure:"source"`           // "postgres" or "elasticsearch"
	RefreshInterval int    `mapstructure:"refresh_interval"` // seconds; 0 disables background refresh
}

// EngineConfig holds the matching engine's tunables.
type EngineConfig struct {
	// BorderlineTolerance is the relative band around a numeric boundary
	// within which a failed criterion is classified borderline instead,
	// e.g. 0.05 lets income exceed a ceiling by up to 5%.
	BorderlineTolerance float64 `mapstructure:"borderline_tolerance"`
	// BorderlinePenalty is subtracted from confidence per borderline criterion.
	BorderlinePenalty float64 `mapstructure:"borderline_penalty"`
	// UndeterminedPenalty is subtracted from confidence when any narrative
	// rule came back undetermined.
	UndeterminedPenalty float64 `mapstructure:"undetermined_penalty"`
	// MaxWorkers bounds the per-request evaluation fan-out. 0 means one
	// worker per catalog scheme.
	MaxWorkers int `mapstructure:"max_workers"`
	// EvalTimeout bounds a single scheme evaluation, narrative delegation
	// included. Milliseconds.
	EvalTimeout int `mapstructure:"eval_timeout"`
	// FallbackCount is how many closest alternatives a zero-match result carries.
	FallbackCount int `mapstructure:"fallback_count"`
}

func (e EngineConfig) EvalTimeoutDuration() time.Duration {
	return time.Duration(e.EvalTimeout) * time.Millisecond
}

// ReasoningConfig points at the external narrative-rule collaborator.
type ReasoningConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	Timeout        int    `mapstructure:"timeout"` // milliseconds, per call
	MaxRetries     int    `mapstructure:"max_retries"`
	MaxConcurrency int    `mapstructure:"max_concurrency"`
	CacheTTL       int    `mapstructure:"cache_ttl"` // seconds; 0 disables the redis verdict cache
}

func (r ReasoningConfig) TimeoutDuration() time.Duration {
	return time.Duration(r.Timeout) * time.Millisecond
}

func (r ReasoningConfig) CacheTTLDuration() time.Duration {
	return time.Duration(r.CacheTTL) * time.Second
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
