// Package auth resolves the API token used against the beehive server.
package auth

import (
	"errors"
	"os"
	"strings"

	"github.com/beehive-tools/hivecli/internal/models"
)

// EnvToken is the environment variable holding the API token.
const EnvToken = "HIVECLI_TOKEN"

// Common errors
var (
	ErrNoCredentials = errors.New("no credentials found")
)

// Source tells where a token came from.
type Source string

const (
	SourceNone     Source = "none"
	SourceEnv      Source = "environment"
	SourceKeychain Source = "keychain"
)

// CredentialStore defines the interface for credential persistence.
type CredentialStore interface {
	// Get retrieves stored credentials.
	Get() (*models.Credentials, error)
	// Save persists credentials.
	Save(creds *models.Credentials) error
	// Delete removes stored credentials.
	Delete() error
	// Exists returns true if credentials are stored.
	Exists() bool
}

// Resolver looks up credentials, environment first.
type Resolver struct {
	Store  CredentialStore
	Getenv func(string) string
}

// NewResolver returns a Resolver backed by the system keychain.
func NewResolver() *Resolver {
	return &Resolver{Store: NewKeychainStore(), Getenv: os.Getenv}
}

// Resolve returns the credentials and their source.
// Priority: environment variable > keychain
func (r *Resolver) Resolve() (*models.Credentials, Source, error) {
	envCreds := r.fromEnv()
	if envCreds.IsValid() {
		return envCreds, SourceEnv, nil
	}

	if r.Store != nil && r.Store.Exists() {
		creds, err := r.Store.Get()
		if err != nil {
			return nil, SourceNone, err
		}
		return creds, SourceKeychain, nil
	}

	return nil, SourceNone, ErrNoCredentials
}

func (r *Resolver) fromEnv() *models.Credentials {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	return &models.Credentials{Token: strings.TrimSpace(getenv(EnvToken))}
}

// GetCredentials retrieves credentials from all available sources.
func GetCredentials() (*models.Credentials, error) {
	creds, _, err := NewResolver().Resolve()
	return creds, err
}

// GetCredentialsFromEnv reads credentials from environment variables.
func GetCredentialsFromEnv() *models.Credentials {
	return NewResolver().fromEnv()
}

// SaveCredentials saves credentials to the keychain.
func SaveCredentials(creds *models.Credentials) error {
	return NewKeychainStore().Save(creds)
}

// DeleteCredentials removes credentials from the keychain.
func DeleteCredentials() error {
	return NewKeychainStore().Delete()
}

// HasCredentials returns true if credentials exist in env or keychain.
func HasCredentials() bool {
	_, _, err := NewResolver().Resolve()
	return err == nil
}
