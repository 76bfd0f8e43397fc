// Package keyring provides secure session-token storage using the OS keyring.
package keyring

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/mbrcli/mbr/internal/utils"
)

const (
	// ServicePrefix is the prefix used for keyring service names.
	// Each profile gets its own service entry: "mbr - <profile_name>"
	ServicePrefix = "mbr"

	// TestKeyringEnvVar is the environment variable that, when set to a directory path,
	// causes mbr to use a file-based keyring instead of the OS keyring.
	// This is intended for testing purposes only and should NEVER be used in production.
	TestKeyringEnvVar = "MBR_TEST_KEYRING_DIR"
)

// serviceName returns the keyring service name for a profile.
// This creates unique, identifiable entries in the OS keyring.
func serviceName(profile string) string {
	return ServicePrefix + " - " + profile
}

var (
	// ErrKeyringUnavailable is returned when no secure keyring is available.
	ErrKeyringUnavailable = errors.New("secure keyring is not available on this system")
	// ErrTokenNotFound is returned when no session token is stored for a profile.
	ErrTokenNotFound = errors.New("session token not found in keyring")
	// ErrKeyringAccessDenied is returned when access to the keyring is denied.
	ErrKeyringAccessDenied = errors.New("access to keyring denied")
)

// Store represents a secure token storage backend. Keys are profile names.
type Store interface {
	// Set stores a session token for the given profile.
	Set(key, token string) error
	// Get retrieves the session token for the given profile.
	Get(key string) (string, error)
	// Delete removes the session token for the given profile.
	Delete(key string) error
	// IsAvailable checks if the keyring is available.
	IsAvailable() error
}

// DefaultStore returns the default keyring store for the current platform.
// If MBR_TEST_KEYRING_DIR is set, a file-based store is used instead.
// This allows integration tests to run without accessing the OS keyring.
func DefaultStore() Store {
	if testDir := os.Getenv(TestKeyringEnvVar); testDir != "" {
		fileStore, err := NewFileStore(testDir)
		if err != nil {
			// If the directory cannot be used fall back to the OS keyring;
			// unlikely in a properly configured test environment
			return &osKeyring{}
		}
		return fileStore
	}
	return &osKeyring{}
}

// osKeyring implements Store using the OS keyring.
type osKeyring struct{}

// IsAvailable checks if a secure keyring is available on this system.
func (k *osKeyring) IsAvailable() error {
	// Probe with a get; ErrNotFound means the keyring works but the
	// probe key does not exist, which is the expected healthy outcome.
	_, err := gokeyring.Get(serviceName("__availability_check__"), "probe")
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return nil
		}

		errStr := err.Error()

		// Linux: D-Bus secret service not available
		if runtime.GOOS == "linux" {
			if utils.ContainsAny(errStr, "secret service", "dbus", "org.freedesktop.secrets") {
				return fmt.Errorf("%w: D-Bus secret service not available - please install and start gnome-keyring, kwallet, or another secret service provider", ErrKeyringUnavailable)
			}
		}

		// macOS: Keychain issues
		if runtime.GOOS == "darwin" {
			if utils.ContainsAny(errStr, "keychain", "security") {
				return fmt.Errorf("%w: macOS Keychain not accessible", ErrKeyringUnavailable)
			}
		}

		// Windows: Credential Manager issues
		if runtime.GOOS == "windows" {
			if utils.ContainsAny(errStr, "credential", "wincred") {
				return fmt.Errorf("%w: Windows Credential Manager not accessible", ErrKeyringUnavailable)
			}
		}

		// Other probe errors: treat as available, the actual operations
		// will produce better error messages
		return nil
	}

	return nil
}

// Set stores a session token in the keyring.
// The key is the profile name, which becomes both the service suffix and account name.
func (k *osKeyring) Set(key, token string) error {
	if err := k.IsAvailable(); err != nil {
		return err
	}

	if key == "" {
		return errors.New("profile key cannot be empty")
	}
	if token == "" {
		return errors.New("session token cannot be empty")
	}

	if err := gokeyring.Set(serviceName(key), key, token); err != nil {
		return wrapKeyringError(err, "failed to store session token")
	}

	return nil
}

// Get retrieves a session token from the keyring.
func (k *osKeyring) Get(key string) (string, error) {
	if err := k.IsAvailable(); err != nil {
		return "", err
	}

	if key == "" {
		return "", errors.New("profile key cannot be empty")
	}

	token, err := gokeyring.Get(serviceName(key), key)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrTokenNotFound
		}
		return "", wrapKeyringError(err, "failed to retrieve session token")
	}

	return token, nil
}

// Delete removes a session token from the keyring.
// Deleting a key with no stored token is not an error.
func (k *osKeyring) Delete(key string) error {
	if err := k.IsAvailable(); err != nil {
		return err
	}

	if key == "" {
		return errors.New("profile key cannot be empty")
	}

	if err := gokeyring.Delete(serviceName(key), key); err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return nil
		}
		return wrapKeyringError(err, "failed to delete session token")
	}

	return nil
}

// wrapKeyringError wraps a keyring error with context.
func wrapKeyringError(err error, context string) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	if utils.ContainsAny(errStr, "denied", "permission", "not allowed", "unauthorized") {
		return fmt.Errorf("%w: %s: %v", ErrKeyringAccessDenied, context, err)
	}

	if utils.ContainsAny(errStr, "not found", "no keyring", "unavailable", "secret service") {
		return fmt.Errorf("%w: %s: %v", ErrKeyringUnavailable, context, err)
	}

	return fmt.Errorf("%s: %w", context, err)
}
