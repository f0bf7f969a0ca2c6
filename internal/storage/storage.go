package storage

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// Storage is the main storage manager that coordinates all storage components
type Storage struct {
	Dir           string
	KeyStore      *KeyStore
	ConfigManager *ConfigManager
	Preferences   *PreferenceStore
	Journal       *SyncJournal
	logger        *log.Logger
}

// New creates a Storage rooted at the default config directory
func New(logger *log.Logger) (*Storage, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}
	return NewAt(configDir, logger)
}

// NewAt creates a Storage with all components rooted at configDir
func NewAt(configDir string, logger *log.Logger) (*Storage, error) {
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	keyStore, err := NewKeyStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keystore: %w", err)
	}
	keyStore.logger = logger

	configManager := NewConfigManager(configDir)
	configManager.logger = logger

	preferences, err := NewPreferenceStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize preference store: %w", err)
	}
	preferences.SetLogger(logger)

	journal, err := NewSyncJournal(configDir, DefaultJournalRetainDays)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sync journal: %w", err)
	}
	journal.logger = logger

	return &Storage{
		Dir:           configDir,
		KeyStore:      keyStore,
		ConfigManager: configManager,
		Preferences:   preferences,
		Journal:       journal,
		logger:        logger,
	}, nil
}

// Initialize loads and validates the configuration and prunes old journal
// files
func (s *Storage) Initialize() (*Config, error) {
	config, err := s.ConfigManager.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := s.ConfigManager.Validate(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := s.Journal.Prune(); err != nil {
		s.logger.Warn("Failed to prune sync journal", "error", err)
	}

	s.logger.Debug("Storage initialized", "dir", s.Dir)
	return config, nil
}
