package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testYAML = `
bot:
  token: "123:ABC"
webhook:
  secret: "s3cret"
storage:
  endpoint: localhost:9000
  access_key: minio
  secret_key: minio123
  bucket: relay-bot
  object_key: users.json
`

func writeTestConfig(t *testing.T, content string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "test.yaml"), []byte(content), 0o644))
	t.Chdir(dir)
	t.Setenv("APP_ENV", "test")
}

func TestLoadAppliesDefaults(t *testing.T) {
	writeTestConfig(t, testYAML)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "test", cfg.AppEnv)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, 300*time.Second, cfg.Bot.KeepAliveInterval)
	require.EqualValues(t, 20<<20, cfg.Webhook.MaxBodyBytes)
	require.Equal(t, "info", cfg.Log.Level)
	require.True(t, cfg.Network.ForceIPv4)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	writeTestConfig(t, testYAML)
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("NETWORK_FORCE_IPV4", "false")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9999", cfg.Server.Port)
	require.False(t, cfg.Network.ForceIPv4)
}

func TestLoadRejectsMissingRequiredFields(t *testing.T) {
	writeTestConfig(t, `
webhook:
  secret: "s3cret"
storage:
  endpoint: localhost:9000
  access_key: minio
  secret_key: minio123
  bucket: relay-bot
  object_key: users.json
`)

	_, err := Load()
	require.Error(t, err, "bot token is required")
}

func TestLoadRejectsMissingConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "test")

	_, err := Load()
	require.Error(t, err)
}
