// Package vault orchestrates secure block storage.
//
// A [Service] ties the storage layers together: block bytes are sealed with
// AES-CBC (pkg/seal), ciphertext lands in an object store (pkg/objstore),
// metadata and keyword tags land in a metadata store (pkg/metadata), and
// search/verification lookups go through an optional cache (pkg/cache).
//
// Two ingestion paths exist. UploadBlock accepts a block a client already
// sealed, preserving the client/server protocol where plaintext never
// reaches the server. StoreFile is the server-side path: it splits, seals,
// and tags a whole file in one call.
package vault

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/parthk/blockvault/pkg/block"
	"github.com/parthk/blockvault/pkg/cache"
	"github.com/parthk/blockvault/pkg/errors"
	"github.com/parthk/blockvault/pkg/keywords"
	"github.com/parthk/blockvault/pkg/metadata"
	"github.com/parthk/blockvault/pkg/objstore"
	"github.com/parthk/blockvault/pkg/observability"
	"github.com/parthk/blockvault/pkg/seal"
)

// cacheTTL bounds how long search and verification responses are reused.
const cacheTTL = 5 * time.Minute

// Service coordinates the metadata store, object store, sealer, and cache.
type Service struct {
	meta    metadata.Store
	objects objstore.BlockStore
	sealer  *seal.Sealer
	cache   cache.Cache
	keyer   cache.Keyer

	blockSize int
	backend   string // object store backend name, for hooks
}

// Options configures a Service.
type Options struct {
	// BlockSize for server-side splitting. Defaults to block.DefaultSize.
	BlockSize int
	// Cache for search and verification responses. Defaults to no caching.
	Cache cache.Cache
	// Backend names the object store implementation for observability.
	Backend string
}

// New creates a Service over the given stores and sealer.
func New(meta metadata.Store, objects objstore.BlockStore, sealer *seal.Sealer, opts Options) *Service {
	if opts.BlockSize <= 0 {
		opts.BlockSize = block.DefaultSize
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Backend == "" {
		opts.Backend = "objstore"
	}
	return &Service{
		meta:      meta,
		objects:   objects,
		sealer:    sealer,
		cache:     opts.Cache,
		keyer:     cache.NewDefaultKeyer(),
		blockSize: opts.BlockSize,
		backend:   opts.Backend,
	}
}

// UploadBlockRequest carries one sealed block from a client.
type UploadBlockRequest struct {
	FileID  string
	BlockID string
	Index   int
	// Data is the AES-CBC ciphertext.
	Data []byte
	// Digest is the hex SHA-256 of the plaintext.
	Digest string
	// AuthTag is the CBC-MAC tag over the plaintext.
	AuthTag string
	// IV is the base64 initialization vector used to seal Data.
	IV string
	// Preview is a UTF-8 plaintext prefix used for keyword tagging;
	// empty for binary blocks.
	Preview string
}

// UploadBlock stores a client-sealed block: ciphertext in the object store,
// the block record plus keyword tags in the metadata store.
func (s *Service) UploadBlock(ctx context.Context, req UploadBlockRequest) error {
	if err := errors.ValidateFileID(req.FileID); err != nil {
		return err
	}
	if err := errors.ValidateBlockID(req.BlockID); err != nil {
		return err
	}
	if len(req.Data) == 0 {
		return errors.New(errors.ErrCodeInvalidBlock, "block %s has no data", req.BlockID)
	}

	key := block.Key(req.FileID, req.Index)
	start := time.Now()
	err := s.objects.Put(ctx, key, req.Data, objstore.ObjectMeta{
		Digest: req.Digest,
		IV:     req.IV,
	})
	observability.ObjectStore().OnPut(ctx, s.backend, key, len(req.Data), time.Since(start), err)
	if err != nil {
		return err
	}

	rec := &metadata.Block{
		ID:      req.BlockID,
		FileID:  req.FileID,
		Index:   req.Index,
		Key:     key,
		Digest:  req.Digest,
		AuthTag: req.AuthTag,
		IV:      req.IV,
		Size:    len(req.Data),
		Preview: req.Preview,
	}
	if err := s.meta.AddBlock(ctx, rec); err != nil {
		if err == metadata.ErrDuplicate {
			return errors.New(errors.ErrCodeInvalidBlock, "block %s already exists", req.BlockID)
		}
		return err
	}

	return s.tagBlock(ctx, req.BlockID, req.Preview)
}

// tagBlock extracts keywords from a plaintext preview and records them.
func (s *Service) tagBlock(ctx context.Context, blockID, preview string) error {
	if preview == "" {
		return nil
	}
	kws := keywords.Extract(preview, keywords.Options{})
	if len(kws) == 0 {
		return nil
	}
	tags := make([]metadata.Tag, len(kws))
	for i, kw := range kws {
		tags[i] = metadata.Tag{
			BlockID: blockID,
			Term:    kw.Term,
			Kind:    kw.Kind,
			Score:   kw.Score,
		}
	}
	return s.meta.AddTags(ctx, tags)
}

// StoredFile describes the outcome of an upload.
type StoredFile struct {
	File metadata.File `json:"metadata"`
	URLs []string      `json:"urls"`
}

// StoreFile is the server-side ingestion path: it splits r into blocks,
// seals each one, and stores ciphertext, metadata, and keyword tags.
func (s *Service) StoreFile(ctx context.Context, name, mimeType string, r io.Reader) (*StoredFile, error) {
	fileID := block.NewFileID()
	start := time.Now()

	blocks, err := block.Split(r, s.blockSize)
	if err != nil {
		return nil, err
	}
	observability.Transfer().OnUploadStart(ctx, fileID, len(blocks))

	var total int64
	urls := make([]string, 0, len(blocks))
	for _, b := range blocks {
		blockStart := time.Now()
		blockID, err := s.sealAndStore(ctx, fileID, b, mimeType)
		observability.Transfer().OnBlockUploaded(ctx, fileID, blockID, len(b.Data), time.Since(blockStart), err)
		if err != nil {
			observability.Transfer().OnUploadComplete(ctx, fileID, len(blocks), total, time.Since(start), err)
			return nil, err
		}
		total += int64(len(b.Data))
		urls = append(urls, s.objects.URL(block.Key(fileID, b.Index)))
	}

	file := metadata.File{
		ID:         fileID,
		Name:       name,
		MIMEType:   mimeType,
		Size:       total,
		BlockCount: len(blocks),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.meta.AddFile(ctx, &file); err != nil {
		return nil, err
	}

	observability.Transfer().OnUploadComplete(ctx, fileID, len(blocks), total, time.Since(start), nil)
	return &StoredFile{File: file, URLs: urls}, nil
}

// sealAndStore seals one plaintext block and records it.
func (s *Service) sealAndStore(ctx context.Context, fileID string, b block.Block, mimeType string) (string, error) {
	blockID := block.NewID(fileID, len(b.Data))

	ciphertext, iv, err := s.sealer.Encrypt(b.Data)
	if err != nil {
		return blockID, err
	}
	tag, err := s.sealer.Tag(b.Data)
	if err != nil {
		return blockID, err
	}

	key := block.Key(fileID, b.Index)
	putStart := time.Now()
	err = s.objects.Put(ctx, key, ciphertext, objstore.ObjectMeta{
		Digest:      b.Digest(),
		IV:          iv,
		ContentType: mimeType,
	})
	observability.ObjectStore().OnPut(ctx, s.backend, key, len(ciphertext), time.Since(putStart), err)
	if err != nil {
		return blockID, err
	}

	rec := &metadata.Block{
		ID:      blockID,
		FileID:  fileID,
		Index:   b.Index,
		Key:     key,
		Digest:  b.Digest(),
		AuthTag: tag,
		IV:      iv,
		Size:    len(ciphertext),
		Preview: b.Preview(),
	}
	if err := s.meta.AddBlock(ctx, rec); err != nil {
		return blockID, err
	}
	return blockID, s.tagBlock(ctx, blockID, rec.Preview)
}

// FileInfo returns a file's record and per-block object URLs. Records are
// immutable once stored, so responses are cached.
func (s *Service) FileInfo(ctx context.Context, fileID string) (*StoredFile, error) {
	if err := errors.ValidateFileID(fileID); err != nil {
		return nil, err
	}

	cacheKey := s.keyer.FileKey(fileID)
	if data, hit, err := s.cache.Get(ctx, cacheKey); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "file")
		var sf StoredFile
		if json.Unmarshal(data, &sf) == nil {
			return &sf, nil
		}
	} else {
		observability.Cache().OnCacheMiss(ctx, "file")
	}

	file, err := s.meta.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, errors.New(errors.ErrCodeFileNotFound, "file %s not found", fileID)
	}

	blocks, err := s.meta.BlocksByFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	urls := make([]string, len(blocks))
	for i, b := range blocks {
		urls[i] = s.objects.URL(b.Key)
	}

	sf := &StoredFile{File: *file, URLs: urls}
	if data, err := json.Marshal(sf); err == nil {
		if err := s.cache.Set(ctx, cacheKey, data, cacheTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "file", len(data))
		}
	}
	return sf, nil
}

// BlockInfo is a block record with its keyword tags.
type BlockInfo struct {
	metadata.Block
	Tags []metadata.Tag `json:"tags,omitempty"`
}

// Blocks returns a file's blocks in index order, with tags attached.
func (s *Service) Blocks(ctx context.Context, fileID string) ([]BlockInfo, error) {
	if err := errors.ValidateFileID(fileID); err != nil {
		return nil, err
	}
	blocks, err := s.meta.BlocksByFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	infos := make([]BlockInfo, len(blocks))
	for i, b := range blocks {
		tags, err := s.meta.TagsByBlock(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		infos[i] = BlockInfo{Block: b, Tags: tags}
	}
	return infos, nil
}

// Verification carries the data a client needs to prove block integrity
// without downloading content.
type Verification struct {
	// Tags maps block ID to its CBC-MAC auth tag.
	Tags map[string]string `json:"tags"`
	// Hashes maps block ID to its plaintext SHA-256 digest.
	Hashes map[string]string `json:"block_hashes"`
}

// VerifyBlocks returns auth tags and digests for the requested blocks,
// cross-checked against object store head metadata. Responses are cached.
func (s *Service) VerifyBlocks(ctx context.Context, fileID string, blockIDs []string) (*Verification, error) {
	if err := errors.ValidateFileID(fileID); err != nil {
		return nil, err
	}
	for _, id := range blockIDs {
		if err := errors.ValidateBlockID(id); err != nil {
			return nil, err
		}
	}

	cacheKey := s.keyer.VerifyKey(fileID, blockIDs)
	if data, hit, err := s.cache.Get(ctx, cacheKey); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "verify")
		var v Verification
		if json.Unmarshal(data, &v) == nil {
			return &v, nil
		}
	} else {
		observability.Cache().OnCacheMiss(ctx, "verify")
	}

	blocks, err := s.meta.BlocksByFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]metadata.Block, len(blocks))
	for _, b := range blocks {
		byID[b.ID] = b
	}

	start := time.Now()
	v := &Verification{
		Tags:   make(map[string]string, len(blockIDs)),
		Hashes: make(map[string]string, len(blockIDs)),
	}
	for _, id := range blockIDs {
		b, ok := byID[id]
		if !ok {
			return nil, errors.New(errors.ErrCodeBlockNotFound, "block %s not found in file %s", id, fileID)
		}
		exists, meta, err := s.objects.Head(ctx, b.Key)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, errors.New(errors.ErrCodeBlockNotFound, "object for block %s is missing", id)
		}
		if meta.Digest != "" && meta.Digest != b.Digest {
			observability.Transfer().OnVerify(ctx, fileID, len(blockIDs), 1, time.Since(start))
			return nil, errors.New(errors.ErrCodeCorruptBlock, "block %s digest mismatch between stores", id)
		}
		v.Tags[id] = b.AuthTag
		v.Hashes[id] = b.Digest
	}
	observability.Transfer().OnVerify(ctx, fileID, len(blockIDs), 0, time.Since(start))

	if data, err := json.Marshal(v); err == nil {
		if err := s.cache.Set(ctx, cacheKey, data, cacheTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "verify", len(data))
		}
	}
	return v, nil
}

// Download reassembles a file's plaintext into w, verifying each block's
// digest after decryption.
func (s *Service) Download(ctx context.Context, fileID string, w io.Writer) (*metadata.File, error) {
	if err := errors.ValidateFileID(fileID); err != nil {
		return nil, err
	}
	file, err := s.meta.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, errors.New(errors.ErrCodeFileNotFound, "file %s not found", fileID)
	}

	blocks, err := s.meta.BlocksByFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	observability.Transfer().OnDownloadStart(ctx, fileID, len(blocks))

	start := time.Now()
	var total int64
	for _, b := range blocks {
		getStart := time.Now()
		ciphertext, _, err := s.objects.Get(ctx, b.Key)
		observability.ObjectStore().OnGet(ctx, s.backend, b.Key, len(ciphertext), time.Since(getStart), err)
		if err != nil {
			observability.Transfer().OnDownloadComplete(ctx, fileID, total, time.Since(start), err)
			return nil, err
		}

		plaintext, err := s.sealer.Decrypt(ciphertext, b.IV)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCorruptBlock, err, "unseal block %s", b.ID)
		}
		if d := (block.Block{Data: plaintext}).Digest(); d != b.Digest {
			return nil, errors.New(errors.ErrCodeCorruptBlock, "block %s digest mismatch after unseal", b.ID)
		}

		n, err := w.Write(plaintext)
		total += int64(n)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "write block %s", b.ID)
		}
	}

	observability.Transfer().OnDownloadComplete(ctx, fileID, total, time.Since(start), nil)
	return file, nil
}

// Search finds blocks by keyword tag, caching ranked results.
func (s *Service) Search(ctx context.Context, query string, minScore float64) ([]metadata.SearchResult, error) {
	cacheKey := s.keyer.SearchKey(query, minScore)
	if data, hit, err := s.cache.Get(ctx, cacheKey); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "search")
		var results []metadata.SearchResult
		if json.Unmarshal(data, &results) == nil {
			return results, nil
		}
	} else {
		observability.Cache().OnCacheMiss(ctx, "search")
	}

	results, err := s.meta.SearchBlocks(ctx, query, minScore)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(results); err == nil {
		if err := s.cache.Set(ctx, cacheKey, data, cacheTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "search", len(data))
		}
	}
	return results, nil
}

// Close releases the service's backends.
func (s *Service) Close(ctx context.Context) error {
	cacheErr := s.cache.Close()
	metaErr := s.meta.Close(ctx)
	if metaErr != nil {
		return metaErr
	}
	return cacheErr
}
