package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Environment variables that override values from config.json
const (
	EnvHome       = "THEMER_HOME"
	EnvAPIURL     = "THEMER_API_URL"
	EnvLogLevel   = "THEMER_LOG_LEVEL"
	EnvListenAddr = "THEMER_LISTEN_ADDR"
	EnvSync       = "THEMER_SYNC"
)

// Defaults
const (
	DefaultAPIBaseURL     = "http://localhost:3000"
	DefaultPreferencePath = "/api/users/theme"
	DefaultListenAddr     = "127.0.0.1:8787"
	DefaultUserAgent      = "themer/1.0"
	DefaultMaxRetries     = 3
	DefaultSettleDelay    = 300 * time.Millisecond
	DefaultLogLevel       = "info"
	DefaultThemeID        = "dark"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Config represents the application configuration
type Config struct {
	APIBaseURL     string        `json:"api_base_url"`
	PreferencePath string        `json:"preference_path"`
	DefaultTheme   string        `json:"default_theme"`
	SyncEnabled    bool          `json:"sync_enabled"`
	SettleDelay    time.Duration `json:"settle_delay"`
	LogLevel       string        `json:"log_level"`
	ListenAddr     string        `json:"listen_addr"`
	UserAgent      string        `json:"user_agent"`
	MaxRetries     int           `json:"max_retries"`
}

// PreferenceURL joins the base URL and the preference path
func (c *Config) PreferenceURL() string {
	return strings.TrimRight(c.APIBaseURL, "/") + "/" + strings.TrimLeft(c.PreferencePath, "/")
}

// Level parses the configured log level, falling back to info
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// ConfigManager handles configuration storage and retrieval
type ConfigManager struct {
	configDir  string
	configFile string
	logger     *log.Logger
}

// NewConfigManager creates a ConfigManager rooted at configDir
func NewConfigManager(configDir string) *ConfigManager {
	return &ConfigManager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
		logger:     log.New(os.Stderr),
	}
}

// GetConfigDir returns the configuration directory path, creating it if needed.
// THEMER_HOME takes precedence over ~/.themer.
func GetConfigDir() (string, error) {
	configDir := os.Getenv(EnvHome)
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".themer")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// Path returns the location of config.json
func (cm *ConfigManager) Path() string {
	return cm.configFile
}

// LoadConfig loads the application configuration and applies environment
// overrides. A missing file is replaced with defaults on disk.
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	config, err := cm.readConfig()
	if err != nil {
		return nil, err
	}

	cm.applyEnv(config)
	return config, nil
}

func (cm *ConfigManager) readConfig() (*Config, error) {
	data, err := os.ReadFile(cm.configFile)
	if errors.Is(err, os.ErrNotExist) {
		config := DefaultConfig()
		if err := cm.SaveConfig(config); err != nil {
			cm.logger.Warn("Failed to save default config", "error", err)
		}
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so a missing sync_enabled key reads as enabled.
	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(config)
	return config, nil
}

// SaveConfig saves the application configuration
func (cm *ConfigManager) SaveConfig(config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := writeFileAtomic(cm.configFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:     DefaultAPIBaseURL,
		PreferencePath: DefaultPreferencePath,
		DefaultTheme:   DefaultThemeID,
		SyncEnabled:    true,
		SettleDelay:    DefaultSettleDelay,
		LogLevel:       DefaultLogLevel,
		ListenAddr:     DefaultListenAddr,
		UserAgent:      DefaultUserAgent,
		MaxRetries:     DefaultMaxRetries,
	}
}

// applyDefaults fills zero values
func applyDefaults(config *Config) {
	if config.APIBaseURL == "" {
		config.APIBaseURL = DefaultAPIBaseURL
	}
	if config.PreferencePath == "" {
		config.PreferencePath = DefaultPreferencePath
	}
	if config.DefaultTheme == "" {
		config.DefaultTheme = DefaultThemeID
	}
	if config.SettleDelay <= 0 {
		config.SettleDelay = DefaultSettleDelay
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}
	if config.ListenAddr == "" {
		config.ListenAddr = DefaultListenAddr
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
}

// applyEnv loads an optional .env file from the config dir and the working
// directory, then lets the environment override file values
func (cm *ConfigManager) applyEnv(config *Config) {
	for _, path := range []string{filepath.Join(cm.configDir, ".env"), ".env"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		// Load never overwrites variables that are already set.
		if err := godotenv.Load(path); err != nil {
			cm.logger.Warn("Failed to load env file", "path", path, "error", err)
		}
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		config.APIBaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		config.ListenAddr = v
	}
	if v := os.Getenv(EnvSync); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			cm.logger.Warn("Ignoring invalid sync override", "value", v)
		} else {
			config.SyncEnabled = enabled
		}
	}
}

// UpdateConfig loads the file config, applies fn and saves the result.
// Environment overrides are not written back.
func (cm *ConfigManager) UpdateConfig(fn func(*Config)) error {
	config, err := cm.readConfig()
	if err != nil {
		return err
	}

	fn(config)
	if err := cm.Validate(config); err != nil {
		return err
	}
	return cm.SaveConfig(config)
}

// UpdateDefaultTheme updates the theme used when nothing is stored locally
func (cm *ConfigManager) UpdateDefaultTheme(id string) error {
	return cm.UpdateConfig(func(c *Config) { c.DefaultTheme = id })
}

// UpdateAPIBaseURL updates the preference service location
func (cm *ConfigManager) UpdateAPIBaseURL(baseURL string) error {
	return cm.UpdateConfig(func(c *Config) { c.APIBaseURL = baseURL })
}

// UpdateSyncEnabled toggles remote sync
func (cm *ConfigManager) UpdateSyncEnabled(enabled bool) error {
	return cm.UpdateConfig(func(c *Config) { c.SyncEnabled = enabled })
}

// Validate validates the configuration
func (cm *ConfigManager) Validate(config *Config) error {
	u, err := url.Parse(config.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api base url: %q", config.APIBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported api url scheme: %s", u.Scheme)
	}

	if !strings.HasPrefix(config.PreferencePath, "/") {
		return fmt.Errorf("preference path must start with /: %q", config.PreferencePath)
	}

	if config.DefaultTheme == "" {
		return fmt.Errorf("default theme cannot be empty")
	}

	validLevel := false
	for _, level := range validLogLevels {
		if config.LogLevel == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	if config.SettleDelay <= 0 || config.SettleDelay > 10*time.Second {
		return fmt.Errorf("settle delay must be between 0 and 10s, got %s", config.SettleDelay)
	}

	if config.MaxRetries < 0 || config.MaxRetries > 10 {
		return fmt.Errorf("max retries must be between 0 and 10")
	}

	if config.ListenAddr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}

	return nil
}

// writeFileAtomic writes to a temp file in the same directory and renames it
// into place so readers never see a partial file
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
