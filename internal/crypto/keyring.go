package crypto

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

// Keyring provides secure key storage abstraction
type Keyring interface {
	GetKey() (string, error)
	SetKey(password string) error
	DeleteKey() error
	IsAvailable() bool
}

const (
	ServiceName = "jumplog"
	KeyName     = "db-encryption-key"
	EnvKey      = "JUMPLOG_DB_KEY"
)

// ErrNoKey is returned when no keyring holds the database key
var ErrNoKey = errors.New("database key not found")

// NewKeyring returns a keyring that prefers JUMPLOG_DB_KEY and falls back
// to the system keyring (Keychain, Secret Service or Credential Manager).
func NewKeyring() Keyring {
	return &chainKeyring{env: &envKeyring{name: EnvKey}, system: &systemKeyring{}}
}

type chainKeyring struct {
	env    *envKeyring
	system *systemKeyring
}

func (k *chainKeyring) GetKey() (string, error) {
	if key, err := k.env.GetKey(); err == nil {
		return key, nil
	}
	return k.system.GetKey()
}

// SetKey stores the key in the system keyring. When that is unavailable
// the error tells the user to set the environment variable instead.
func (k *chainKeyring) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}
	if err := k.system.SetKey(password); err != nil {
		return fmt.Errorf("%w; set %s in the environment or a .env file instead", err, EnvKey)
	}
	return nil
}

func (k *chainKeyring) DeleteKey() error {
	return k.system.DeleteKey()
}

func (k *chainKeyring) IsAvailable() bool {
	return k.env.IsAvailable() || k.system.IsAvailable()
}

// envKeyring reads the key from an environment variable
type envKeyring struct {
	name string
}

func (k *envKeyring) GetKey() (string, error) {
	key := os.Getenv(k.name)
	if key == "" {
		return "", fmt.Errorf("%s not set: %w", k.name, ErrNoKey)
	}
	return key, nil
}

func (k *envKeyring) IsAvailable() bool {
	return os.Getenv(k.name) != ""
}

// systemKeyring stores the key in the OS credential store
type systemKeyring struct{}

func (k *systemKeyring) GetKey() (string, error) {
	key, err := keyring.Get(ServiceName, KeyName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("no key in system keyring: %w", ErrNoKey)
		}
		return "", fmt.Errorf("failed to retrieve key from keyring: %w", err)
	}

	if key == "" {
		return "", errors.New("encryption key is empty")
	}
	return key, nil
}

func (k *systemKeyring) SetKey(password string) error {
	if err := keyring.Set(ServiceName, KeyName, password); err != nil {
		return fmt.Errorf("failed to store key in keyring: %w", err)
	}
	return nil
}

func (k *systemKeyring) DeleteKey() error {
	err := keyring.Delete(ServiceName, KeyName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no key in system keyring: %w", ErrNoKey)
		}
		return fmt.Errorf("failed to delete key from keyring: %w", err)
	}
	return nil
}

// IsAvailable probes the keyring with a throwaway entry
func (k *systemKeyring) IsAvailable() bool {
	testKey := "__jumplog_availability_test__"
	if err := keyring.Set(ServiceName, testKey, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(ServiceName, testKey)
	return true
}
