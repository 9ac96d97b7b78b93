// Package objstore stores encrypted block bytes in an object store.
//
// This package defines the [BlockStore] interface with implementations for
// different backends:
//   - fs: Local filesystem storage for development/testing
//   - s3: Amazon S3 (or compatible) storage for production deployments
//
// Objects hold ciphertext only. Each object carries a small amount of
// metadata alongside the bytes (digest, IV, content type) so a store can be
// audited without touching the metadata database.
package objstore

import (
	"context"

	"github.com/parthk/blockvault/pkg/errors"
)

// ObjectMeta is metadata stored alongside an object's bytes.
type ObjectMeta struct {
	// Digest is the hex SHA-256 of the plaintext block.
	Digest string `json:"digest,omitempty"`
	// IV is the base64 initialization vector the block was sealed with.
	IV string `json:"iv,omitempty"`
	// ContentType of the original file, for audit tooling.
	ContentType string `json:"content_type,omitempty"`
}

// BlockStore is the interface for object storage backends.
// Keys use the "fileID/index" layout produced by block.Key.
type BlockStore interface {
	// Put stores data under key with the given metadata, overwriting any
	// existing object.
	Put(ctx context.Context, key string, data []byte, meta ObjectMeta) error

	// Get retrieves an object's bytes and metadata.
	Get(ctx context.Context, key string) ([]byte, ObjectMeta, error)

	// Head reports whether an object exists and returns its metadata
	// without fetching the bytes.
	Head(ctx context.Context, key string) (bool, ObjectMeta, error)

	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns a display URL for the object (s3://bucket/key or a
	// file path), for logs and CLI output.
	URL(key string) string
}

// validateKey rejects keys that could escape the store's namespace.
func validateKey(key string) error {
	return errors.ValidateObjectKey(key)
}
