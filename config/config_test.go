package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "humangate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.SingleUseChallenges)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
environment: production
http_addr: ":8080"
redis_url: redis://localhost:6379/1
events_topic_prefix: gate.
snapshot_path: /var/lib/humangate/state.cbor
single_use_challenges: true
shutdown_timeout: 30s
`)

	cfg, err := load(path, noEnv)
	require.NoError(t, err)

	assert.Equal(t, Production, cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
	assert.Equal(t, "gate.", cfg.EventsTopicPrefix)
	assert.Equal(t, "/var/lib/humangate/state.cbor", cfg.SnapshotPath)
	assert.True(t, cfg.SingleUseChallenges)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "http_adr: \":8080\"\n")

	_, err := load(path, noEnv)
	assert.Error(t, err)
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := load(writeConfig(t, ""), noEnv)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "http_addr: \":8080\"\n")

	t.Setenv("HUMANGATE_HTTP_ADDR", ":7070")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("HUMANGATE_SINGLE_USE_CHALLENGES", "true")
	t.Setenv("HUMANGATE_SHUTDOWN_TIMEOUT", "5s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, "redis://cache:6379/0", cfg.RedisURL)
	assert.True(t, cfg.SingleUseChallenges)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestEnvironmentBadValues(t *testing.T) {
	t.Run("bool", func(t *testing.T) {
		t.Setenv("HUMANGATE_SINGLE_USE_CHALLENGES", "maybe")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("HUMANGATE_ENVIRONMENT", "staging")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.HTTPAddr = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.ShutdownTimeout = 0
	assert.Error(t, cfg.Validate())
}
