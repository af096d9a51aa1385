// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	APIs       APIsConfig              `mapstructure:"apis"`
	Generation GenerationConfig        `mapstructure:"generation"`
	Links      LinksConfig             `mapstructure:"links"`
	Logging    LoggingConfig           `mapstructure:"logging"`
	Server     ServerConfig            `mapstructure:"server"`
	Tracing    TracingConfig           `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
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

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// Enabled reports whether a plan-record database was configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != "" && p.Database != ""
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

// Enabled reports whether a plan search index was configured.
func (e ElasticsearchConfig) Enabled() bool {
	return len(e.Addresses) > 0
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PlanTTL  int    `mapstructure:"plan_ttl"` // seconds
}

// Enabled reports whether Redis was configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	GenAI   GenAIConfig   `mapstructure:"genai"`
	Weather WeatherConfig `mapstructure:"weather"`
}

type GenAIConfig struct {
	Provider    string  `mapstructure:"provider"` // genai | openai | none
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
}

type WeatherConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Timeout  int    `mapstructure:"timeout"`   // milliseconds
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds
}

// GenerationConfig sizes the orchestrator queue and its deadlines.
type GenerationConfig struct {
	Concurrency      int `mapstructure:"concurrency"`
	QueueSize        int `mapstructure:"queue_size"`
	Cooldown         int `mapstructure:"cooldown"`      // milliseconds
	RetryBackoff     int `mapstructure:"retry_backoff"` // milliseconds
	Overhead         int `mapstructure:"overhead"`      // milliseconds
	PreviewTimeout   int `mapstructure:"preview_timeout"`
	PreviewMaxTokens int `mapstructure:"preview_max_tokens"`
	FullTimeout      int `mapstructure:"full_timeout"`
	FullMaxTokens    int `mapstructure:"full_max_tokens"`
}

// LinksConfig controls monetized links and image policy in the content pipeline.
type LinksConfig struct {
	PartnerID      string   `mapstructure:"partner_id"`
	ImagesDisabled bool     `mapstructure:"images_disabled"`
	Denylist       []string `mapstructure:"denylist"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ServerConfig is the ops (health/metrics) listener.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}
