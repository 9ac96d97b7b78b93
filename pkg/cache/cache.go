// Package cache provides TTL caching for the vault server and CLI.
//
// The server uses a cache in front of the metadata store for search results
// and verification lookups; the CLI uses a file-backed cache for repeated
// queries against a remote vault.
//
// # Backends
//
//   - [FileCache]: file-based, for CLI usage
//   - [RedisCache]: Redis-backed, for multi-instance server deployments
//   - [NullCache]: no-op, for tests or when caching is disabled
//
// Keys are namespaced via [Keyer] implementations so multiple vaults can
// share one backend.
package cache

import (
	"context"
	"time"
)

// Cache is the interface implemented by all cache backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates namespaced cache keys for vault operations.
type Keyer interface {
	// SearchKey generates a key for cached search results.
	SearchKey(query string, minScore float64) string

	// VerifyKey generates a key for cached block verification data.
	VerifyKey(fileID string, blockIDs []string) string

	// FileKey generates a key for cached file info.
	FileKey(fileID string) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SearchKey generates a key for cached search results.
func (k *DefaultKeyer) SearchKey(query string, minScore float64) string {
	return hashKey("search", query, minScore)
}

// VerifyKey generates a key for cached block verification data.
func (k *DefaultKeyer) VerifyKey(fileID string, blockIDs []string) string {
	return hashKey("verify", fileID, blockIDs)
}

// FileKey generates a key for cached file info.
func (k *DefaultKeyer) FileKey(fileID string) string {
	return hashKey("file", fileID)
}
