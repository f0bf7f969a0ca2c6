package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/john/themer/internal/theme"
)

// PreferenceStore is the local key-value store backing the theme engine. It
// persists a flat JSON object of string values and rereads the file on every
// access so several processes sharing a config dir see each other's writes.
type PreferenceStore struct {
	mu     sync.Mutex
	path   string
	logger *log.Logger
}

var _ theme.Store = (*PreferenceStore)(nil)

// NewPreferenceStore creates a store backed by preferences.json in configDir
func NewPreferenceStore(configDir string) (*PreferenceStore, error) {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	return &PreferenceStore{
		path:   filepath.Join(configDir, "preferences.json"),
		logger: log.New(os.Stderr),
	}, nil
}

// SetLogger replaces the store's logger
func (ps *PreferenceStore) SetLogger(logger *log.Logger) {
	ps.logger = logger
}

// Path returns the backing file
func (ps *PreferenceStore) Path() string {
	return ps.path
}

// Get returns the value stored under key
func (ps *PreferenceStore) Get(key string) (string, bool, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	values, err := ps.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set stores value under key
func (ps *PreferenceStore) Set(key, value string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	values, err := ps.load()
	if err != nil {
		return err
	}
	values[key] = value
	return ps.save(values)
}

// Delete removes key
func (ps *PreferenceStore) Delete(key string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	values, err := ps.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return ps.save(values)
}

// Keys lists the stored keys in sorted order
func (ps *PreferenceStore) Keys() ([]string, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	values, err := ps.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (ps *PreferenceStore) load() (map[string]string, error) {
	data, err := os.ReadFile(ps.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(data, &values); err != nil {
		ps.logger.Warn("Failed to parse preferences, starting fresh", "error", err)

		backupPath := ps.path + ".corrupted.backup"
		if backupErr := os.Rename(ps.path, backupPath); backupErr != nil {
			ps.logger.Warn("Failed to backup corrupted preferences", "error", backupErr)
		}
		return make(map[string]string), nil
	}

	return values, nil
}

func (ps *PreferenceStore) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := writeFileAtomic(ps.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// MemoryStore is a process-local theme.Store
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ theme.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (ms *MemoryStore) Get(key string) (string, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	v, ok := ms.values[key]
	return v, ok, nil
}

func (ms *MemoryStore) Set(key, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.values[key] = value
	return nil
}
