package credential

import (
	"errors"
	"fmt"
	"sort"

	"github.com/99designs/keyring"
)

const serviceName = "sqs-console"

// Keys of the secrets the console keeps in the OS keyring.
const (
	KeyHTTPToken          = "http-token"
	KeyAWSAccessKeyID     = "aws-access-key-id"
	KeyAWSSecretAccessKey = "aws-secret-access-key"
)

var knownKeys = map[string]string{
	KeyHTTPToken:          "bearer token for the admin HTTP API",
	KeyAWSAccessKeyID:     "static AWS access key id for direct SQS access",
	KeyAWSSecretAccessKey: "static AWS secret access key for direct SQS access",
}

// ErrUnknownKey is returned for keys the console does not use.
var ErrUnknownKey = errors.New("unknown credential key")

// Keys returns the supported credential keys in sorted order.
func Keys() []string {
	out := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Describe returns a short description of a supported key.
func Describe(key string) string {
	return knownKeys[key]
}

// Store reads and writes console credentials.
type Store struct {
	ring keyring.Keyring
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Open returns a Store backed by the system keyring.
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/sqs-console/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("sqs-console-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Store{ring: ring}, nil
}

// Get retrieves a credential value by key.
func (s *Store) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Lookup is like Get but returns "" without error when the key is not
// stored.
func (s *Store) Lookup(key string) (string, error) {
	v, err := s.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	return v, err
}

// Set stores a credential value. Only the console's own keys are accepted.
func (s *Store) Set(key string, value string) error {
	if _, ok := knownKeys[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "sqs-console " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key.
func (s *Store) Delete(key string) error {
	if err := s.ring.Remove(key); err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}
