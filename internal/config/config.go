package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/importer-intel/internal/resilience"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Scrape     ScrapeConfig     `yaml:"scrape" mapstructure:"scrape"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
}

// AnthropicConfig holds Anthropic API settings. Prompts without web search
// go here.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Model       string `yaml:"model" mapstructure:"model"`
	MaxTokens   int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// PerplexityConfig holds Perplexity API settings. Web search prompts go here.
type PerplexityConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Model       string `yaml:"model" mapstructure:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ScrapeConfig configures the lead scrapers.
type ScrapeConfig struct {
	Enabled       bool    `yaml:"enabled" mapstructure:"enabled"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries    int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec    float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst         int     `yaml:"burst" mapstructure:"burst"`
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
	MaxLeads      int     `yaml:"max_leads" mapstructure:"max_leads"`
	CacheTTLHours int     `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
	PortSchedule  bool    `yaml:"port_schedule" mapstructure:"port_schedule"`

	ImportYetiURL   string `yaml:"importyeti_url" mapstructure:"importyeti_url"`
	AlibabaURL      string `yaml:"alibaba_url" mapstructure:"alibaba_url"`
	IndiaCustomsURL string `yaml:"india_customs_url" mapstructure:"india_customs_url"`
	PortOfLAURL     string `yaml:"port_of_la_url" mapstructure:"port_of_la_url"`
}

// StoreConfig configures persistence.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // sqlite or memory
	Path   string `yaml:"path" mapstructure:"path"`
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

// MonitoringConfig configures the spend and availability alert checker.
type MonitoringConfig struct {
	Enabled           bool    `yaml:"enabled" mapstructure:"enabled"`
	WebhookURL        string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	CostThresholdUSD  float64 `yaml:"cost_threshold_usd" mapstructure:"cost_threshold_usd"`
	CheckIntervalSecs int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
}

// RetryConfig configures retries and circuit breaking for generator calls.
type RetryConfig struct {
	MaxAttempts      int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int           `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int           `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Breaker          BreakerConfig `yaml:"breaker" mapstructure:"breaker"`
}

// BreakerConfig configures the per-backend circuit breakers.
type BreakerConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// Policy converts the retry settings.
func (r RetryConfig) Policy() resilience.RetryConfig {
	return resilience.NewRetryConfig(r.MaxAttempts, r.InitialBackoffMs, r.MaxBackoffMs)
}

// CircuitBreaker converts the breaker settings. Zero values keep the defaults.
func (b BreakerConfig) CircuitBreaker() resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultCircuitBreakerConfig()
	if b.FailureThreshold > 0 {
		cfg.FailureThreshold = b.FailureThreshold
	}
	if b.ResetTimeoutSecs > 0 {
		cfg.ResetTimeout = time.Duration(b.ResetTimeoutSecs) * time.Second
	}
	return cfg
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("IMPORTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Keys without a real default are still registered so that
	// AutomaticEnv picks them up during Unmarshal.
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 8192)
	v.SetDefault("anthropic.timeout_secs", 120)
	v.SetDefault("perplexity.key", "")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar")
	v.SetDefault("perplexity.timeout_secs", 120)
	v.SetDefault("scrape.enabled", true)
	v.SetDefault("scrape.timeout_secs", 20)
	v.SetDefault("scrape.max_retries", 2)
	v.SetDefault("scrape.rate_per_sec", 1.0)
	v.SetDefault("scrape.burst", 2)
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (compatible; ImporterIntel/1.0)")
	v.SetDefault("scrape.max_leads", 15)
	v.SetDefault("scrape.cache_ttl_hours", 24)
	v.SetDefault("scrape.port_schedule", false)
	v.SetDefault("scrape.importyeti_url", "https://www.importyeti.com")
	v.SetDefault("scrape.alibaba_url", "https://www.alibaba.com")
	v.SetDefault("scrape.india_customs_url", "https://api.cbic-gov.in")
	v.SetDefault("scrape.port_of_la_url", "https://www.portoflosangeles.org")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "importer-intel.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 30000)
	v.SetDefault("retry.breaker.failure_threshold", 5)
	v.SetDefault("retry.breaker.reset_timeout_secs", 30)
	v.SetDefault("monitoring.enabled", false)
	v.SetDefault("monitoring.webhook_url", "")
	v.SetDefault("monitoring.cost_threshold_usd", 25.0)
	v.SetDefault("monitoring.check_interval_secs", 300)

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

// Validate checks the settings a command needs. Modes: "serve", "search",
// "detail", "alerts".
func (c *Config) Validate(mode string) error {
	var errs []string

	needGenerator := func() {
		if c.Anthropic.Key == "" && c.Perplexity.Key == "" {
			errs = append(errs, "anthropic.key or perplexity.key is required")
		}
	}
	needStore := func() {
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.Path == "" {
				errs = append(errs, "store.path is required for the sqlite driver")
			}
		case "memory":
		default:
			errs = append(errs, fmt.Sprintf("store.driver must be sqlite or memory, got %q", c.Store.Driver))
		}
	}

	switch mode {
	case "serve":
		needGenerator()
		needStore()
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
	case "search", "detail":
		needGenerator()
	case "alerts":
		needStore()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Scrape.Enabled && c.Scrape.MaxLeads < 0 {
		errs = append(errs, "scrape.max_leads must be >= 0")
	}
	if c.Monitoring.Enabled && c.Monitoring.CostThresholdUSD < 0 {
		errs = append(errs, "monitoring.cost_threshold_usd must be >= 0")
	}
	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, "retry.max_attempts must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
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
