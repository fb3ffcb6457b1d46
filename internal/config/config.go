// Package config loads the immutable application configuration: a YAML file
// plus ATTRIB_-prefixed environment overrides, constructed once at startup
// and passed into each component. No component reads ambient globals.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Catalog    CatalogConfig    `yaml:"catalog" mapstructure:"catalog"`
	Oracle     OracleConfig     `yaml:"oracle" mapstructure:"oracle"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Registry   RegistryConfig   `yaml:"registry" mapstructure:"registry"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// CatalogConfig configures the asset catalog API client.
type CatalogConfig struct {
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	Key        string  `yaml:"key" mapstructure:"key"`
	PageSize   int     `yaml:"page_size" mapstructure:"page_size"`
	MaxResults int     `yaml:"max_results" mapstructure:"max_results"`
	SearchRPS  float64 `yaml:"search_rps" mapstructure:"search_rps"`
}

// OracleConfig configures AI escalation.
type OracleConfig struct {
	Enabled          bool   `yaml:"enabled" mapstructure:"enabled"`
	Provider         string `yaml:"provider" mapstructure:"provider"`
	TimeoutSecs      int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts      int    `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffBaseMs    int    `yaml:"backoff_base_ms" mapstructure:"backoff_base_ms"`
	BackoffCapMs     int    `yaml:"backoff_cap_ms" mapstructure:"backoff_cap_ms"`
	BackoffJitterMs  int    `yaml:"backoff_jitter_ms" mapstructure:"backoff_jitter_ms"`
	BreakerTrips     int    `yaml:"breaker_trips" mapstructure:"breaker_trips"`
	BreakerResetSecs int    `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// BatchConfig configures batch validation.
type BatchConfig struct {
	Concurrency  int    `yaml:"concurrency" mapstructure:"concurrency"`
	Limit        int    `yaml:"limit" mapstructure:"limit"`
	DryRun       bool   `yaml:"dry_run" mapstructure:"dry_run"`
	PostComments bool   `yaml:"post_comments" mapstructure:"post_comments"`
	Query        string `yaml:"query" mapstructure:"query"`
}

// RegistryConfig configures the approved-brand registry source.
type RegistryConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ATTRIB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("catalog.page_size", 100)
	v.SetDefault("catalog.max_results", 500)
	v.SetDefault("catalog.search_rps", 5)
	v.SetDefault("oracle.enabled", true)
	v.SetDefault("oracle.provider", "anthropic")
	v.SetDefault("oracle.timeout_secs", 45)
	v.SetDefault("oracle.max_attempts", 2)
	v.SetDefault("oracle.backoff_base_ms", 500)
	v.SetDefault("oracle.backoff_cap_ms", 8000)
	v.SetDefault("oracle.backoff_jitter_ms", 250)
	v.SetDefault("oracle.breaker_trips", 5)
	v.SetDefault("oracle.breaker_reset_secs", 60)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("batch.limit", 100)
	v.SetDefault("batch.query", "verification_status:unverified")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate fails fast on missing credentials — the only fatal error class.
// Nothing batch-related may start before this passes.
func (c *Config) Validate() error {
	var errs []string

	if c.Catalog.BaseURL == "" {
		errs = append(errs, "catalog.base_url is required")
	}
	if c.Catalog.Key == "" {
		errs = append(errs, "catalog.key is required")
	}

	if c.Oracle.Enabled {
		switch c.Oracle.Provider {
		case "anthropic":
			if c.Anthropic.Key == "" {
				errs = append(errs, "anthropic.key is required when oracle.provider=anthropic")
			}
		case "perplexity":
			if c.Perplexity.Key == "" {
				errs = append(errs, "perplexity.key is required when oracle.provider=perplexity")
			}
		default:
			errs = append(errs, "oracle.provider must be anthropic or perplexity")
		}
	}

	if c.Batch.Concurrency <= 0 {
		errs = append(errs, "batch.concurrency must be > 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
