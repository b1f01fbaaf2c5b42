// Package auth stores the analytics customer key in the system keyring.
package auth

import (
	"errors"

	"github.com/anisan-cli/playtrack/constant"
	"github.com/zalando/go-keyring"
)

const user = "customer-key"

// ErrNoKey is returned when neither the keyring nor the configuration hold a key.
var ErrNoKey = errors.New("no customer key configured")

// SetCustomerKey persists the key to the system keyring.
func SetCustomerKey(key string) error {
	return keyring.Set(constant.Playtrack, user, key)
}

// GetCustomerKey retrieves the key from the system keyring.
func GetCustomerKey() (string, error) {
	return keyring.Get(constant.Playtrack, user)
}

// DeleteCustomerKey removes the key from the system keyring.
func DeleteCustomerKey() error {
	return keyring.Delete(constant.Playtrack, user)
}

// ResolveCustomerKey prefers the configured key and falls back to the keyring.
func ResolveCustomerKey(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	key, err := GetCustomerKey()
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoKey
	}

	return key, err
}
