package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable the loader reads and restores them after the
// test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, names := range envNames {
		for _, name := range names {
			prev, ok := os.LookupEnv(name)
			require.NoError(t, os.Unsetenv(name))
			t.Cleanup(func() {
				if ok {
					_ = os.Setenv(name, prev)
				} else {
					_ = os.Unsetenv(name)
				}
			})
		}
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROJECT_ENDPOINT", "https://agents.example.test/v1")
	t.Setenv("AGENT_ID", "asst_123")
	t.Setenv("OPENAI_API_KEY", "sk-fallback")
	t.Setenv("BRIDGE_POLL_INTERVAL", "250ms")
	t.Setenv("BRIDGE_WORD_BOUNDARY", "true")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "https://agents.example.test/v1", cfg.Agent.Endpoint)
	assert.Equal(t, "asst_123", cfg.Agent.ID)
	assert.Equal(t, "sk-fallback", cfg.Agent.APIKey)
	assert.Equal(t, 250*time.Millisecond, cfg.Agent.PollInterval)
	assert.Equal(t, 5*time.Minute, cfg.Agent.Timeout)
	assert.True(t, cfg.Intent.WordBoundary)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadPrefersAgentAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROJECT_ENDPOINT", "https://agents.example.test")
	t.Setenv("AGENT_ID", "asst_123")
	t.Setenv("AGENT_API_KEY", "primary")
	t.Setenv("OPENAI_API_KEY", "fallback")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.Agent.APIKey)
}

func TestLoadMissingRequiredIsFatal(t *testing.T) {
	clearEnv(t)

	_, err := Load(LoadOptions{})
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "PROJECT_ENDPOINT is required")
	assert.Contains(t, err.Error(), "AGENT_ID is required")
}

func TestLoadRejectsMalformedEndpoint(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROJECT_ENDPOINT", "not a url")
	t.Setenv("AGENT_ID", "asst_123")

	_, err := Load(LoadOptions{})
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "PROJECT_ENDPOINT")
}

func TestLoadOfflineSkipsAgentSettings(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(LoadOptions{Overrides: map[string]any{"offline": true}})
	require.NoError(t, err)
	assert.True(t, cfg.Offline)
}

func TestLoadEnvFileAndConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PROJECT_ENDPOINT=https://from-dotenv.test\nAGENT_ID=asst_env\n"), 0o600))
	cfgFile := filepath.Join(dir, "bridge.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("log:\n  level: DEBUG\n  format: json\n"), 0o600))

	cfg, err := Load(LoadOptions{EnvFile: envFile, ConfigFile: cfgFile})
	require.NoError(t, err)
	assert.Equal(t, "https://from-dotenv.test", cfg.Agent.Endpoint)
	assert.Equal(t, "asst_env", cfg.Agent.ID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadMissingEnvFileIgnored(t *testing.T) {
	clearEnv(t)
	_, err := Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), "absent.env"), Overrides: map[string]any{"offline": true}})
	require.NoError(t, err)
}

func TestValidateRejectsUnknownLogFormat(t *testing.T) {
	cfg := Config{Offline: true, Log: LogConfig{Level: "info", Format: "xml"}}
	require.ErrorIs(t, cfg.Validate(), ErrInvalid)
}
