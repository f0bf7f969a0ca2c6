package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every override for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAPIURL, EnvLogLevel, EnvListenAddr, EnvSync} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func setupTestConfigManager(t *testing.T) (*ConfigManager, string) {
	t.Helper()
	clearEnv(t)
	dir := t.TempDir()
	return NewConfigManager(dir), dir
}

func TestLoadConfigWritesDefaults(t *testing.T) {
	cm, dir := setupTestConfigManager(t)

	config, err := cm.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)

	_, err = os.Stat(filepath.Join(dir, "config.json"))
	assert.NoError(t, err)
	assert.NoError(t, cm.Validate(config))
}

func TestLoadConfigFillsMissingFields(t *testing.T) {
	cm, dir := setupTestConfigManager(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"api_base_url": "https://prefs.example.com", "settle_delay": 0}`), 0600))

	config, err := cm.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://prefs.example.com", config.APIBaseURL)
	assert.Equal(t, DefaultPreferencePath, config.PreferencePath)
	assert.Equal(t, DefaultSettleDelay, config.SettleDelay)
	assert.True(t, config.SyncEnabled)
	assert.Equal(t, "https://prefs.example.com/api/users/theme", config.PreferenceURL())
}

func TestLoadConfigKeepsDisabledSync(t *testing.T) {
	cm, dir := setupTestConfigManager(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"sync_enabled": false}`), 0600))

	config, err := cm.LoadConfig()
	require.NoError(t, err)
	assert.False(t, config.SyncEnabled)
}

func TestLoadConfigRejectsBrokenFile(t *testing.T) {
	cm, dir := setupTestConfigManager(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{not json`), 0600))

	_, err := cm.LoadConfig()
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestEnvironmentOverrides(t *testing.T) {
	cm, _ := setupTestConfigManager(t)
	t.Setenv(EnvAPIURL, "https://env.example.com")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvListenAddr, ":9999")
	t.Setenv(EnvSync, "false")

	config, err := cm.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", config.APIBaseURL)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, log.DebugLevel, config.Level())
	assert.Equal(t, ":9999", config.ListenAddr)
	assert.False(t, config.SyncEnabled)
}

func TestInvalidSyncOverrideIsIgnored(t *testing.T) {
	cm, _ := setupTestConfigManager(t)
	t.Setenv(EnvSync, "maybe")

	config, err := cm.LoadConfig()
	require.NoError(t, err)
	assert.True(t, config.SyncEnabled)
}

func TestDotEnvInConfigDir(t *testing.T) {
	cm, dir := setupTestConfigManager(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("THEMER_API_URL=https://dotenv.example.com\nTHEMER_SYNC=0\n"), 0600))

	config, err := cm.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://dotenv.example.com", config.APIBaseURL)
	assert.False(t, config.SyncEnabled)
}

func TestUpdateConfigDoesNotPersistOverrides(t *testing.T) {
	cm, _ := setupTestConfigManager(t)
	t.Setenv(EnvAPIURL, "https://env.example.com")

	require.NoError(t, cm.UpdateDefaultTheme("teal"))
	require.NoError(t, cm.UpdateSyncEnabled(false))

	file, err := cm.readConfig()
	require.NoError(t, err)
	assert.Equal(t, "teal", file.DefaultTheme)
	assert.False(t, file.SyncEnabled)
	assert.Equal(t, DefaultAPIBaseURL, file.APIBaseURL)

	assert.Error(t, cm.UpdateAPIBaseURL("ftp://nope"))
}

func TestValidate(t *testing.T) {
	cm, _ := setupTestConfigManager(t)

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"relative url", func(c *Config) { c.APIBaseURL = "prefs.local" }, "invalid api base url"},
		{"bad scheme", func(c *Config) { c.APIBaseURL = "ftp://prefs.local" }, "unsupported api url scheme"},
		{"bad path", func(c *Config) { c.PreferencePath = "api/theme" }, "preference path"},
		{"empty theme", func(c *Config) { c.DefaultTheme = "" }, "default theme"},
		{"bad level", func(c *Config) { c.LogLevel = "verbose" }, "invalid log level"},
		{"zero delay", func(c *Config) { c.SettleDelay = 0 }, "settle delay"},
		{"long delay", func(c *Config) { c.SettleDelay = time.Minute }, "settle delay"},
		{"retries", func(c *Config) { c.MaxRetries = 11 }, "max retries"},
		{"listen", func(c *Config) { c.ListenAddr = "" }, "listen address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := cm.Validate(config)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestGetConfigDirHonorsThemerHome(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "themer")
	t.Setenv(EnvHome, dir)

	got, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)
	assert.DirExists(t, dir)
}
