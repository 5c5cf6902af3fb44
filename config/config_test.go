package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisard/deepresearch/logging"
)

// clearEnv blanks every variable Load reads so host settings cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "MODEL_PROVIDER", "MODEL_NAME",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "TAVILY_API_KEY",
		"COMPANY_CERT_PATH", "DATABASE_URL", "REDIS_URL", "REDIS_PASSWORD",
		"LOG_LEVEL", "LOG_FORMAT", "RETRY_MAX_ATTEMPTS", "PARALLEL_TIMEOUT",
		"OTEL_TRACES_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "sk-ant-test", cfg.AnthropicAPIKey)
	assert.Equal(t, "tvly-test", cfg.TavilyAPIKey)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.HasDatabase())
	assert.False(t, cfg.HasRedis())
}

func TestLoad_MissingRequiredKeys(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Missing, "ANTHROPIC_API_KEY")
	assert.Contains(t, verr.Missing, "TAVILY_API_KEY")
}

func TestLoad_OpenAIProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL_PROVIDER", "openai")
	t.Setenv("TAVILY_API_KEY", "tvly-test")

	_, err := Load()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"OPENAI_API_KEY"}, verr.Missing)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
}

func TestLoad_UnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL_PROVIDER", "bedrock")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model provider")
}

func TestLoad_YAMLFileWithEnvExpansion(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_TAVILY", "tvly-from-env")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
model: claude-sonnet-4-20250514
max_attempts: 4
parallel_timeout: 10m
memory_prefixes:
  - /memories/
  - /memories/research/
tavily_api_key: ${SECRET_TAVILY}
telemetry:
  enabled: true
  exporter: stdout
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(func(o *LoadOptions) { o.Path = path })
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model)
	assert.Equal(t, 4, cfg.MaxAttempts)
	assert.Equal(t, Duration(10*time.Minute), cfg.ParallelTimeout)
	assert.Equal(t, []string{"/memories/", "/memories/research/"}, cfg.MemoryPrefixes)
	assert.Equal(t, "tvly-from-env", cfg.TavilyAPIKey)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "stdout", cfg.Telemetry.Exporter)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("TAVILY_API_KEY", "tvly-env")
	t.Setenv("MODEL_NAME", "claude-opus-4-1")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: claude-haiku\ntavily_api_key: tvly-file\n"), 0o600))

	cfg, err := Load(func(o *LoadOptions) { o.Path = path })
	require.NoError(t, err)
	assert.Equal(t, "claude-opus-4-1", cfg.Model)
	assert.Equal(t, "tvly-env", cfg.TavilyAPIKey)
}

func TestLoad_ParallelTimeoutFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	t.Setenv("PARALLEL_TIMEOUT", "90s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Duration(90*time.Second), cfg.ParallelTimeout)
}

func TestLoad_InvalidParallelTimeoutInFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("TAVILY_API_KEY", "tvly-test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parallel_timeout: soonish\n"), 0o600))

	_, err := Load(func(o *LoadOptions) { o.Path = path })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoad_MissingCertCleared(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	t.Setenv("COMPANY_CERT_PATH", "/nonexistent/company_cert.pem")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.CertPath)
}

func TestLoad_ExistingCertKept(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("TAVILY_API_KEY", "tvly-test")

	path := filepath.Join(t.TempDir(), "cert.pem")
	require.NoError(t, os.WriteFile(path, []byte("pem"), 0o600))
	t.Setenv("COMPANY_CERT_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, path, cfg.CertPath)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	clearEnv(t)
	_, err := Load(func(o *LoadOptions) { o.Path = "/nonexistent/config.yaml" })
	require.Error(t, err)
	assert.False(t, errors.As(err, new(*ValidationError)))
}

func TestLoggingConfig_LoggerConfig(t *testing.T) {
	lc := LoggingConfig{Level: "warn", Format: "text"}
	cfg := lc.LoggerConfig()
	assert.Equal(t, logging.LevelWarn, cfg.Level)
	assert.Equal(t, "text", cfg.Format)
}
