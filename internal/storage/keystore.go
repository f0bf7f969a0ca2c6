package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Credentials is the encrypted payload: the bearer token used for
// preference sync
type Credentials struct {
	Token   string    `json:"token,omitempty"`
	SavedAt time.Time `json:"saved_at,omitempty"`
}

// KeyStore handles encrypted storage of the API token using AES-GCM encryption
type KeyStore struct {
	configDir string
	keyFile   string
	key       []byte
	logger    *log.Logger
}

// NewKeyStore creates a KeyStore in configDir, generating the encryption key
// on first use
func NewKeyStore(configDir string) (*KeyStore, error) {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	keyStore := &KeyStore{
		configDir: configDir,
		keyFile:   filepath.Join(configDir, "token.enc"),
		logger:    log.New(os.Stderr),
	}

	if err := keyStore.initKey(); err != nil {
		return nil, fmt.Errorf("failed to initialize encryption key: %w", err)
	}

	return keyStore, nil
}

// initKey initializes or loads the encryption key
func (ks *KeyStore) initKey() error {
	keyFile := filepath.Join(ks.configDir, ".key")

	if data, err := os.ReadFile(keyFile); err == nil {
		key, err := hex.DecodeString(string(data))
		if err != nil {
			return fmt.Errorf("failed to decode existing key: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("invalid key length: expected 32 bytes, got %d", len(key))
		}
		ks.key = key
		return nil
	}

	key := make([]byte, 32) // AES-256
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}

	if err := os.WriteFile(keyFile, []byte(hex.EncodeToString(key)), 0600); err != nil {
		return fmt.Errorf("failed to save encryption key: %w", err)
	}

	ks.key = key
	return nil
}

func (ks *KeyStore) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(ks.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// encryptData encrypts data using AES-GCM with the nonce prepended
func (ks *KeyStore) encryptData(plaintext []byte) ([]byte, error) {
	gcm, err := ks.gcm()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// decryptData decrypts data using AES-GCM
func (ks *KeyStore) decryptData(ciphertext []byte) ([]byte, error) {
	gcm, err := ks.gcm()
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt data: %w", err)
	}

	return plaintext, nil
}

// GetCredentials retrieves the stored credentials. A corrupted file is moved
// aside and treated as empty.
func (ks *KeyStore) GetCredentials() (*Credentials, error) {
	encryptedData, err := os.ReadFile(ks.keyFile)
	if errors.Is(err, os.ErrNotExist) {
		return &Credentials{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read encrypted token: %w", err)
	}

	if len(encryptedData) == 0 {
		return &Credentials{}, nil
	}

	jsonData, err := ks.decryptData(encryptedData)
	if err != nil {
		ks.logger.Warn("Failed to decrypt stored token, starting fresh", "error", err)

		backupPath := ks.keyFile + ".corrupted.backup"
		if backupErr := os.Rename(ks.keyFile, backupPath); backupErr != nil {
			ks.logger.Warn("Failed to backup corrupted token file", "error", backupErr)
		} else {
			ks.logger.Info("Backed up corrupted token file", "backup", backupPath)
		}

		return &Credentials{}, nil
	}

	var creds Credentials
	if err := json.Unmarshal(jsonData, &creds); err != nil {
		ks.logger.Warn("Failed to parse token JSON, starting fresh", "error", err)
		return &Credentials{}, nil
	}

	return &creds, nil
}

// SaveCredentials saves the credentials with encryption
func (ks *KeyStore) SaveCredentials(creds *Credentials) error {
	jsonData, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	encryptedData, err := ks.encryptData(jsonData)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	if err := writeFileAtomic(ks.keyFile, encryptedData, 0600); err != nil {
		return fmt.Errorf("failed to write encrypted token: %w", err)
	}

	return nil
}

// GetToken returns the stored bearer token, or "" if none
func (ks *KeyStore) GetToken() (string, error) {
	creds, err := ks.GetCredentials()
	if err != nil {
		return "", err
	}
	return creds.Token, nil
}

// SaveToken stores the bearer token
func (ks *KeyStore) SaveToken(token string) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	return ks.SaveCredentials(&Credentials{Token: token, SavedAt: time.Now().UTC()})
}

// DeleteToken removes the stored token
func (ks *KeyStore) DeleteToken() error {
	if err := os.Remove(ks.keyFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// HasToken checks if a token is stored
func (ks *KeyStore) HasToken() (bool, error) {
	token, err := ks.GetToken()
	if err != nil {
		return false, err
	}
	return token != "", nil
}
