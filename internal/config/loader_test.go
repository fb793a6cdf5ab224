package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8081
  mode: "debug"
provider:
  base_url: "https://provider.example.com"
  api_key: "file-key"
  rate_limit: 4
analysis:
  grid_limit: 25
  retry_backoff: 500ms
  parallel_fetch: true
  issue_baseline: true
redis:
  addr: "redis:6379"
minio:
  endpoint: "minio:9000"
  bucket: "analyses"
log:
  level: "debug"
  format: "console"
`

func createTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := createTempFile(t, "config.yaml", validConfigYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "https://provider.example.com", cfg.Provider.BaseURL)
	assert.Equal(t, 4.0, cfg.Provider.RateLimit)
	assert.Equal(t, 25, cfg.Analysis.GridLimit)
	assert.Equal(t, 500*time.Millisecond, cfg.Analysis.RetryBackoff)
	assert.True(t, cfg.Analysis.ParallelFetch)
	assert.True(t, cfg.Analysis.IssueBaseline)
	assert.Equal(t, 2, cfg.Analysis.RetryAttempts)
	assert.Equal(t, "analyses", cfg.MinIO.Bucket)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := createTempFile(t, "config.yaml", validConfigYAML)
	t.Setenv("RESONANCE_PROVIDER_API_KEY", "env-key")
	t.Setenv("RESONANCE_ANALYSIS_GRID_LIMIT", "75")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Provider.APIKey)
	assert.Equal(t, 75, cfg.Analysis.GridLimit)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := createTempFile(t, "config.yaml", "log:\n  level: \"verbose\"\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestLoadFromEnv_DefaultsOnly(t *testing.T) {
	t.Setenv("RESONANCE_PROVIDER_API_KEY", "abc")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.Provider.APIKey)
	assert.Equal(t, DefaultProviderBaseURL, cfg.Provider.BaseURL)
}

func TestLoadDotEnv(t *testing.T) {
	path := createTempFile(t, ".env", "RESONANCE_TEST_DOTENV_VALUE=from-file\n")
	t.Setenv("RESONANCE_TEST_DOTENV_VALUE", "")
	require.NoError(t, os.Unsetenv("RESONANCE_TEST_DOTENV_VALUE"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("RESONANCE_TEST_DOTENV_VALUE"))
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestConfigKeys_CoverNestedSections(t *testing.T) {
	keys := configKeys(reflect.TypeOf(Config{}), "")
	assert.Contains(t, keys, "provider.api_key")
	assert.Contains(t, keys, "redis.dial_timeout")
	assert.Contains(t, keys, "kafka.max_retries")
	assert.Contains(t, keys, "metrics.subsystem")
	assert.NotContains(t, keys, "provider")
}

func TestLoadFromEnv_EnvOnlyKeys(t *testing.T) {
	t.Setenv("RESONANCE_REDIS_POOL_SIZE", "42")
	t.Setenv("RESONANCE_KAFKA_BROKERS", "k1:9092")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Redis.PoolSize)
	assert.Equal(t, []string{"k1:9092"}, cfg.Kafka.Brokers)
}

//Personal.AI order the ending
