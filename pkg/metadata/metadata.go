// Package metadata provides persistence for file, block, and tag records.
//
// This package defines the [Store] interface with implementations for
// different backends:
//   - memory: In-memory storage for development/testing
//   - mongo: MongoDB-backed storage for production deployments
//
// # Architecture
//
// A stored file is a [File] record plus an ordered series of [Block]
// records. Each text block additionally carries [Tag] records that power
// keyword search. Block bytes themselves never enter the metadata store;
// they live in the object store under the block's Key.
//
// # Usage
//
// Create a store:
//
//	// Development
//	store := memory.NewStore()  // metadata.NewMemoryStore()
//
//	// Production
//	store, err := metadata.NewMongoStore(ctx, metadata.MongoConfig{
//	    URI: "mongodb://localhost:27017",
//	})
//
// Record an uploaded block:
//
//	err := store.AddBlock(ctx, &metadata.Block{
//	    ID:     blockID,
//	    FileID: fileID,
//	    Index:  0,
//	    Digest: digest,
//	})
package metadata

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for store operations.
var (
	// ErrDuplicate is returned when inserting a record whose ID already exists.
	ErrDuplicate = errors.New("duplicate id")
)

// File is the metadata record for a stored file.
type File struct {
	ID         string         `bson:"_id" json:"file_id"`
	Name       string         `bson:"name" json:"name"`
	MIMEType   string         `bson:"mime_type" json:"mime_type"`
	Size       int64          `bson:"size_bytes" json:"size_bytes"`
	BlockCount int            `bson:"block_count" json:"block_count"`
	CreatedAt  time.Time      `bson:"created_at" json:"created_at"`
	Extra      map[string]any `bson:"extra,omitempty" json:"extra,omitempty"`
}

// Block is the metadata record for one stored block.
type Block struct {
	ID      string `bson:"_id" json:"block_id"`
	FileID  string `bson:"file_id" json:"file_id"`
	Index   int    `bson:"block_index" json:"block_index"`
	Key     string `bson:"object_key" json:"object_key"`
	Digest  string `bson:"digest" json:"digest"`
	AuthTag string `bson:"auth_tag" json:"auth_tag"`
	IV      string `bson:"iv" json:"iv"`
	Size    int    `bson:"size_bytes" json:"size_bytes"`
	Preview string `bson:"preview,omitempty" json:"preview,omitempty"`
}

// Tag is a scored keyword attached to a block.
type Tag struct {
	BlockID string  `bson:"block_id" json:"block_id"`
	Term    string  `bson:"term" json:"term"`
	Kind    string  `bson:"kind" json:"kind"`
	Score   float64 `bson:"score" json:"score"`
}

// SearchResult is one ranked hit from a keyword search.
type SearchResult struct {
	Block    Block    `json:"block"`
	FileName string   `json:"file_name"`
	Score    float64  `json:"score"`
	Terms    []string `json:"terms"`
}

// Store is the interface for metadata storage backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// AddFile stores a file record. Returns ErrDuplicate for a known ID.
	AddFile(ctx context.Context, f *File) error

	// GetFile retrieves a file record by ID.
	// Returns nil, nil if the file doesn't exist.
	GetFile(ctx context.Context, fileID string) (*File, error)

	// AddBlock stores a block record. Returns ErrDuplicate for a known ID.
	AddBlock(ctx context.Context, b *Block) error

	// BlocksByFile returns all blocks for a file ordered by index.
	BlocksByFile(ctx context.Context, fileID string) ([]Block, error)

	// AddTags stores keyword tags for a block.
	AddTags(ctx context.Context, tags []Tag) error

	// TagsByBlock returns the tags attached to a block.
	TagsByBlock(ctx context.Context, blockID string) ([]Tag, error)

	// SearchBlocks finds blocks whose tags contain query (substring match)
	// with a score of at least minScore, ranked by score descending.
	SearchBlocks(ctx context.Context, query string, minScore float64) ([]SearchResult, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
