package auth

import (
	"errors"

	"github.com/beehive-tools/hivecli/internal/models"
	"github.com/zalando/go-keyring"
)

const (
	// KeychainService is the service name used in the OS keychain.
	KeychainService = "hivecli"
	keychainToken   = "api_token"
)

// KeychainStore implements CredentialStore using the OS keychain.
type KeychainStore struct{}

// NewKeychainStore creates a new KeychainStore.
func NewKeychainStore() *KeychainStore {
	return &KeychainStore{}
}

// Get retrieves credentials from the keychain.
func (s *KeychainStore) Get() (*models.Credentials, error) {
	token, err := keyring.Get(KeychainService, keychainToken)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNoCredentials
		}
		return nil, err
	}

	return &models.Credentials{Token: token}, nil
}

// Save stores credentials in the keychain.
func (s *KeychainStore) Save(creds *models.Credentials) error {
	if creds == nil || !creds.IsValid() {
		return ErrNoCredentials
	}
	return keyring.Set(KeychainService, keychainToken, creds.Token)
}

// Delete removes credentials from the keychain. A missing entry is not an error.
func (s *KeychainStore) Delete() error {
	err := keyring.Delete(KeychainService, keychainToken)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

// Exists returns true if credentials are stored in the keychain.
func (s *KeychainStore) Exists() bool {
	_, err := keyring.Get(KeychainService, keychainToken)
	return err == nil
}
