// Package client implements the BlockVault client protocol.
//
// A [Client] seals file content locally before anything leaves the machine:
// files are split into fixed-size blocks, each block is AES-CBC encrypted
// and tagged with a CBC-MAC, and only ciphertext plus verification metadata
// is uploaded. Blocks upload concurrently through a bounded worker pool,
// with exponential-backoff retry on network failures and 5xx responses.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/parthk/blockvault/pkg/block"
	"github.com/parthk/blockvault/pkg/errors"
	"github.com/parthk/blockvault/pkg/httputil"
	"github.com/parthk/blockvault/pkg/metadata"
	"github.com/parthk/blockvault/pkg/seal"
)

const (
	// defaultWorkers bounds concurrent block uploads.
	defaultWorkers = 8
	// retryAttempts per block upload.
	retryAttempts = 3
	// retryDelay is the initial backoff delay; it doubles per attempt.
	retryDelay = 500 * time.Millisecond
)

// Progress reports per-block upload progress. done counts finished blocks.
type Progress func(done, total int, blockID string)

// Client talks to a BlockVault server.
type Client struct {
	baseURL string
	http    *http.Client
	sealer  *seal.Sealer

	blockSize int
	workers   int
}

// Options configures a Client.
type Options struct {
	// BlockSize for splitting. Defaults to block.DefaultSize.
	BlockSize int
	// Workers bounds concurrent block uploads. Defaults to 8.
	Workers int
	// HTTPClient overrides the transport. Defaults to a client with a
	// 5 minute overall timeout.
	HTTPClient *http.Client
}

// New creates a Client for the server at baseURL, sealing blocks with sealer.
func New(baseURL string, sealer *seal.Sealer, opts Options) *Client {
	if opts.BlockSize <= 0 {
		opts.BlockSize = block.DefaultSize
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      opts.HTTPClient,
		sealer:    sealer,
		blockSize: opts.BlockSize,
		workers:   opts.Workers,
	}
}

// UploadResult describes a completed upload.
type UploadResult struct {
	FileID   string
	BlockIDs []string
	Bytes    int64
}

// Upload splits, seals, and uploads r as a new file. Blocks upload
// concurrently; progress (may be nil) is invoked as each block completes.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader, progress Progress) (*UploadResult, error) {
	blocks, err := block.Split(r, c.blockSize)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is empty", name)
	}

	fileID := block.NewFileID()
	blockIDs := make([]string, len(blocks))
	var total int64
	for i, b := range blocks {
		blockIDs[i] = block.NewID(fileID, len(b.Data))
		total += int64(len(b.Data))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		idx int
		err error
	}
	jobs := make(chan int)
	results := make(chan result, len(blocks))
	for w := 0; w < min(c.workers, len(blocks)); w++ {
		go func() {
			for i := range jobs {
				results <- result{idx: i, err: c.uploadBlock(ctx, fileID, blockIDs[i], blocks[i])}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for i := range blocks {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	done := 0
	for done < len(blocks) {
		select {
		case r := <-results:
			if r.err != nil {
				cancel()
				return nil, r.err
			}
			done++
			if progress != nil {
				progress(done, len(blocks), blockIDs[r.idx])
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return &UploadResult{FileID: fileID, BlockIDs: blockIDs, Bytes: total}, nil
}

// uploadBlock seals one block and POSTs it, retrying transient failures.
func (c *Client) uploadBlock(ctx context.Context, fileID, blockID string, b block.Block) error {
	ciphertext, iv, err := c.sealer.Encrypt(b.Data)
	if err != nil {
		return err
	}
	tag, err := c.sealer.Tag(b.Data)
	if err != nil {
		return err
	}

	fields := map[string]string{
		"file_id":     fileID,
		"block_id":    blockID,
		"block_index": strconv.Itoa(b.Index),
		"digest":      b.Digest(),
		"auth_tag":    tag,
		"iv":          iv,
		"preview":     b.Preview(),
	}

	return httputil.Retry(ctx, retryAttempts, retryDelay, func() error {
		return c.postMultipart(ctx, "/upload-block", fields, ciphertext)
	})
}

// postMultipart sends ciphertext as the file part alongside form fields.
func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, data []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write form field %s", k)
		}
	}
	part, err := w.CreateFormFile("file", "block")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create file part")
	}
	if _, err := part.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write file part")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "finish multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return httputil.DoJSON(c.http, req, nil)
}

// BlockRecord is one entry from the server's block listing.
type BlockRecord struct {
	BlockID string `json:"block_id"`
	Index   int    `json:"block_index"`
	Digest  string `json:"digest"`
	AuthTag string `json:"auth_tag"`
	Size    int    `json:"size_bytes"`
}

// Blocks lists a file's blocks in index order.
func (c *Client) Blocks(ctx context.Context, fileID string) ([]BlockRecord, error) {
	var out struct {
		Blocks []BlockRecord `json:"blocks"`
	}
	err := httputil.RetryWithBackoff(ctx, func() error {
		return httputil.GetJSON(ctx, c.http, c.baseURL+"/blocks/"+url.PathEscape(fileID), &out)
	})
	if err != nil {
		return nil, err
	}
	return out.Blocks, nil
}

// Verification mirrors the server's verify-blocks response.
type Verification struct {
	Tags   map[string]string `json:"tags"`
	Hashes map[string]string `json:"block_hashes"`
}

// FetchVerification retrieves auth tags and digests for the given blocks.
func (c *Client) FetchVerification(ctx context.Context, fileID string, blockIDs []string) (*Verification, error) {
	var v Verification
	err := httputil.RetryWithBackoff(ctx, func() error {
		return httputil.PostJSON(ctx, c.http, c.baseURL+"/verify-blocks", map[string]any{
			"file_id":   fileID,
			"block_ids": blockIDs,
		}, &v)
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// VerifyReader proves that local content matches the stored blocks: it
// splits r the same way Upload did, recomputes the CBC-MAC of each
// requested block, and compares against the server's tags in constant
// time. blockIDs may name any subset of the file's blocks; r always
// carries the whole file.
func (c *Client) VerifyReader(ctx context.Context, fileID string, blockIDs []string, r io.Reader) error {
	v, err := c.FetchVerification(ctx, fileID, blockIDs)
	if err != nil {
		return err
	}
	listing, err := c.Blocks(ctx, fileID)
	if err != nil {
		return err
	}
	indexByID := make(map[string]int, len(listing))
	for _, rec := range listing {
		indexByID[rec.BlockID] = rec.Index
	}

	blocks, err := block.Split(r, c.blockSize)
	if err != nil {
		return err
	}

	for _, id := range blockIDs {
		idx, ok := indexByID[id]
		if !ok {
			return errors.New(errors.ErrCodeBlockNotFound, "block %s not in file %s", id, fileID)
		}
		if idx >= len(blocks) {
			return errors.New(errors.ErrCodeVerifyFailed,
				"local content has %d blocks, block %s is at index %d", len(blocks), id, idx)
		}
		b := blocks[idx]

		tag, ok := v.Tags[id]
		if !ok {
			return errors.New(errors.ErrCodeVerifyFailed, "no tag for block %s", id)
		}
		match, err := c.sealer.VerifyTag(b.Data, tag)
		if err != nil {
			return err
		}
		if !match {
			return errors.New(errors.ErrCodeVerifyFailed, "block %s tag mismatch", id)
		}
		if digest := b.Digest(); v.Hashes[id] != digest {
			return errors.New(errors.ErrCodeVerifyFailed, "block %s digest mismatch", id)
		}
	}
	return nil
}

// FileInfo is the server's file record plus object URLs.
type FileInfo struct {
	FileID   string        `json:"file_id"`
	URLs     []string      `json:"urls"`
	Metadata metadata.File `json:"metadata"`
}

// Info fetches a file's record.
func (c *Client) Info(ctx context.Context, fileID string) (*FileInfo, error) {
	var info FileInfo
	err := httputil.RetryWithBackoff(ctx, func() error {
		return httputil.GetJSON(ctx, c.http, c.baseURL+"/files/"+url.PathEscape(fileID), &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Download streams a file's reassembled plaintext into w.
func (c *Client) Download(ctx context.Context, fileID string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/download/"+url.PathEscape(fileID), nil)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeNetwork, err, "download %s", fileID)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		code := errors.ErrCodeNetwork
		if resp.StatusCode == http.StatusNotFound {
			code = errors.ErrCodeFileNotFound
		}
		return 0, errors.New(code, "download %s: %s", fileID, strings.TrimSpace(string(body)))
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, errors.Wrap(errors.ErrCodeNetwork, err, "stream %s", fileID)
	}
	return n, nil
}

// SearchResult is one ranked hit.
type SearchResult = metadata.SearchResult

// Search queries blocks by keyword tag.
func (c *Client) Search(ctx context.Context, query string, minScore float64) ([]SearchResult, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&min_score=%s",
		c.baseURL, url.QueryEscape(query), strconv.FormatFloat(minScore, 'f', -1, 64))

	var out struct {
		Results []SearchResult `json:"results"`
	}
	err := httputil.RetryWithBackoff(ctx, func() error {
		return httputil.GetJSON(ctx, c.http, endpoint, &out)
	})
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}
