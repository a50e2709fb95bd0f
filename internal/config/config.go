package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Advice    AdviceConfig    `yaml:"advice" mapstructure:"advice"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings for advice generation.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// AdviceConfig configures calls to the advice service.
type AdviceConfig struct {
	TimeoutSecs       int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	FailureThreshold  int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs  int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentAudits int `yaml:"max_concurrent_audits" mapstructure:"max_concurrent_audits"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration like Load but reads the YAML file at path.
// Unlike the default lookup, a missing file at an explicit path is an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("SOLARSENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "solarsense.db")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("advice.timeout_secs", 30)
	v.SetDefault("advice.requests_per_minute", 30)
	v.SetDefault("advice.failure_threshold", 3)
	v.SetDefault("advice.reset_timeout_secs", 60)
	v.SetDefault("batch.max_concurrent_audits", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Modes accepted by Validate, one per command.
const (
	ModeAudit     = "audit"
	ModeSolar     = "solar"
	ModeSiteVisit = "site-visit"
	ModeLead      = "lead"
	ModeBatch     = "batch"
	ModeServe     = "serve"
	ModeActions   = "actions"
	ModePlan      = "plan"
)

// Validate checks the settings the given mode depends on and reports every
// problem at once.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case ModeActions:
		// Reads only the embedded catalog.
	case ModePlan:
		errs = append(errs, c.validateStore()...)
	case ModeAudit, ModeSolar, ModeSiteVisit, ModeLead, ModeBatch, ModeServe:
		errs = append(errs, c.validateStore()...)
		errs = append(errs, c.validateAdvice()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if mode == ModeServe && c.Server.Port <= 0 {
		errs = append(errs, "server.port must be > 0")
	}
	if mode == ModeBatch || mode == ModeServe {
		if c.Batch.MaxConcurrentAudits < 1 || c.Batch.MaxConcurrentAudits > 50 {
			errs = append(errs, "batch.max_concurrent_audits must be between 1 and 50")
		}
	}

	if len(errs) > 0 {
		return eris.New(fmt.Sprintf("config: %s", strings.Join(errs, "; ")))
	}
	return nil
}

func (c *Config) validateStore() []string {
	var errs []string
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}
	if strings.TrimSpace(c.Store.DatabaseURL) == "" {
		errs = append(errs, "store.database_url is required")
	}
	return errs
}

func (c *Config) validateAdvice() []string {
	var errs []string
	if c.Anthropic.Key != "" && strings.TrimSpace(c.Anthropic.Model) == "" {
		errs = append(errs, "anthropic.model is required when anthropic.key is set")
	}
	if c.Anthropic.MaxTokens < 0 {
		errs = append(errs, "anthropic.max_tokens must be >= 0")
	}
	if c.Advice.TimeoutSecs < 0 || c.Advice.RequestsPerMinute < 0 ||
		c.Advice.FailureThreshold < 0 || c.Advice.ResetTimeoutSecs < 0 {
		errs = append(errs, "advice values must be >= 0")
	}
	return errs
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
