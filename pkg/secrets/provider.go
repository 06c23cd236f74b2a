package secrets

import (
	"context"
	"errors"
)

// ErrNotFound is returned (wrapped) by providers when a secret does not exist.
var ErrNotFound = errors.New("secret not found")

// Provider defines a generic secrets manager interface.
// Concrete implementations (AWS, environment) satisfy this.
type Provider interface {
	// GetSecret retrieves a secret by name and returns its key-value map.
	GetSecret(ctx context.Context, key string) (map[string]string, error)

	// ListSecrets returns the names of all secrets whose name starts with prefix.
	ListSecrets(ctx context.Context, prefix string) ([]string, error)
}
