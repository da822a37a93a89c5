package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrDefaultParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pcsummary.yml")
	content := `
pcsummary:
  api:
    url: https://api.example.test
    read_timeout: 60s
  storage:
    mode: redis
    redis:
      addr: redis:6379
      db: 2
  metrics:
    file: out/pcsummary.prom
  logging:
    enabled: true
    level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, found, err := LoadOrDefault(path)
	require.NoError(t, err)
	assert.True(t, found)

	pc := cfg.PCSummary
	assert.Equal(t, "https://api.example.test", pc.API.URL)
	assert.Equal(t, 60*time.Second, pc.API.ReadTimeout)
	assert.Equal(t, 30*time.Second, pc.API.ConnectTimeout)
	assert.Equal(t, "redis", pc.Storage.Mode)
	assert.Equal(t, "redis:6379", pc.Storage.Redis.Addr)
	assert.Equal(t, 2, pc.Storage.Redis.DB)
	assert.Equal(t, "pcsummary", pc.Storage.Redis.KeyPrefix)
	assert.Equal(t, "out/pcsummary.prom", pc.Metrics.File)
	assert.Equal(t, "debug", pc.Logging.Level)
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, found, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "file", cfg.PCSummary.Storage.Mode)
	assert.Equal(t, ".", cfg.PCSummary.Storage.File.Dir)
	assert.True(t, cfg.PCSummary.Logging.Enabled)
	assert.Equal(t, 300*time.Second, cfg.PCSummary.API.ReadTimeout)
}

func TestLoadOrDefaultInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("pcsummary: [unterminated"), 0644))

	_, _, err := LoadOrDefault(path)
	assert.Error(t, err)
}

func TestLoadEnvFillsMissingCredentials(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PRISMA_ACCESS_KEY=from-dotenv\n"), 0644))
	t.Setenv(EnvEndpoint, "https://env.example.test")
	t.Setenv(EnvAccessKey, "")
	os.Unsetenv(EnvAccessKey)
	t.Setenv(EnvSecretKey, "env-secret")

	cfg := Default()
	cfg.PCSummary.API.SecretKey = "flag-secret"
	require.NoError(t, LoadEnv(cfg, envFile))

	assert.Equal(t, "https://env.example.test", cfg.PCSummary.API.URL)
	assert.Equal(t, "from-dotenv", cfg.PCSummary.API.AccessKey)
	assert.Equal(t, "flag-secret", cfg.PCSummary.API.SecretKey)
}

func TestLoadEnvWithoutDotEnvFile(t *testing.T) {
	cfg := Default()
	assert.NoError(t, LoadEnv(cfg, filepath.Join(t.TempDir(), ".env")))
}
