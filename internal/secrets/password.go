// Package secrets resolves the search API key from the environment or the
// OS keychain.
package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the engine's secrets in the OS keychain.
	KeyringService = "leadhunt"
	// SearchAccount is the keychain account holding the SerpApi key.
	SearchAccount = "leadhunt:serpapi"
	// EnvSearchKey overrides the keychain.
	EnvSearchKey = "SERPAPI_API_KEY"
)

var ErrNoKey = errors.New("search API key not found (set SERPAPI_API_KEY or store it in the keychain)")

// SearchAPIKey returns the configured key if set, then the environment,
// then the keychain.
func SearchAPIKey(configured string) (string, error) {
	if k := strings.TrimSpace(configured); k != "" {
		return k, nil
	}
	if k := strings.TrimSpace(os.Getenv(EnvSearchKey)); k != "" {
		return k, nil
	}
	k, err := keyring.Get(KeyringService, SearchAccount)
	if err == nil && strings.TrimSpace(k) != "" {
		return strings.TrimSpace(k), nil
	}
	return "", ErrNoKey
}

func SetSearchAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("key is empty")
	}
	return keyring.Set(KeyringService, SearchAccount, strings.TrimSpace(key))
}

func DeleteSearchAPIKey() error {
	err := keyring.Delete(KeyringService, SearchAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
