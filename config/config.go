// Package config loads application configuration from an optional YAML file
// and the environment. A .env file is honored the same way the rest of the
// tooling around this service expects. Environment variables override file
// values so secrets never need to live in the config file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gisard/deepresearch/db"
	"github.com/gisard/deepresearch/logging"
	"github.com/gisard/deepresearch/retry"
	"github.com/gisard/deepresearch/store"
	"github.com/gisard/deepresearch/telemetry"
)

// Model providers understood by the application.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config is the top-level application configuration.
type Config struct {
	Provider        string   `yaml:"provider"`    // "anthropic" or "openai"
	Model           string   `yaml:"model"`       // Provider model id, empty uses adapter default
	Temperature     float64  `yaml:"temperature"` // Sampling temperature, 0 uses adapter default
	MaxAttempts     int      `yaml:"max_attempts"`
	MemoryPrefixes  []string `yaml:"memory_prefixes"`
	ParallelTimeout Duration `yaml:"parallel_timeout"` // Go duration string, e.g. "10m"

	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	TavilyAPIKey    string `yaml:"tavily_api_key"`
	CertPath        string `yaml:"cert_path"`

	Database  db.Config         `yaml:"database"`
	Redis     store.RedisConfig `yaml:"redis"`
	Logging   LoggingConfig     `yaml:"logging"`
	Telemetry telemetry.Config  `yaml:"telemetry"`
}

// Duration is a time.Duration that decodes YAML scalars like "10m" or "90s"
// via time.ParseDuration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text or tint
}

// LoggerConfig converts the textual settings into a logging configuration.
func (c LoggingConfig) LoggerConfig() *logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Level)
	if c.Format != "" {
		cfg.Format = c.Format
	}
	return cfg
}

// HasDatabase reports whether relational persistence is configured.
func (c *Config) HasDatabase() bool { return c.Database.URL != "" }

// HasRedis reports whether a persistent memory store is configured.
func (c *Config) HasRedis() bool { return c.Redis.URL != "" }

// ValidationError lists the required settings that are missing.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s (create a .env file with these keys)",
		strings.Join(e.Missing, ", "))
}

// LoadOptions configures Load.
type LoadOptions struct {
	Path   string // YAML config file; empty skips the file layer
	Logger logging.Logger
}

// Load builds the configuration: defaults, then the optional YAML file
// (with ${VAR} expansion), then environment variables on top.
func Load(optFns ...func(o *LoadOptions)) (*Config, error) {
	opts := LoadOptions{
		Path:   os.Getenv("CONFIG_FILE"),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	// A missing .env file is fine; explicit environment still applies.
	_ = godotenv.Load()

	cfg := &Config{
		Provider:    ProviderAnthropic,
		MaxAttempts: retry.DefaultMaxAttempts,
		Logging:     LoggingConfig{Level: "info", Format: "tint"},
		Telemetry:   telemetry.DefaultConfig(),
	}

	if opts.Path != "" {
		if err := loadFile(cfg, opts.Path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if cfg.CertPath != "" {
		if _, err := os.Stat(cfg.CertPath); err != nil {
			opts.Logger.Warn("certificate not found, continuing without custom certificate",
				"path", cfg.CertPath)
			cfg.CertPath = ""
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile overlays the YAML file onto cfg, expanding ${VAR} references.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// applyEnv overrides cfg fields from well-known environment variables.
func applyEnv(cfg *Config) {
	setString(&cfg.Provider, "MODEL_PROVIDER")
	setString(&cfg.Model, "MODEL_NAME")
	setString(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&cfg.TavilyAPIKey, "TAVILY_API_KEY")
	setString(&cfg.CertPath, "COMPANY_CERT_PATH")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Redis.URL, "REDIS_URL")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
	setString(&cfg.Telemetry.EndpointURL, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.Telemetry.ServiceName, "OTEL_SERVICE_NAME")

	if v := os.Getenv("RETRY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxAttempts = n
		}
	}
	if v := os.Getenv("PARALLEL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ParallelTimeout = Duration(d)
		}
	}
	if v := os.Getenv("OTEL_TRACES_ENABLED"); v != "" {
		cfg.Telemetry.Enabled = v == "true" || v == "1"
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// validate checks the required keys for the selected provider.
func (c *Config) validate() error {
	var missing []string

	switch c.Provider {
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown model provider %q", c.Provider)
	}

	if c.TavilyAPIKey == "" {
		missing = append(missing, "TAVILY_API_KEY")
	}

	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
