package block

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/parthk/blockvault/pkg/errors"
)

const (
	// DefaultSize is the default block size (1 MiB).
	DefaultSize = 1024 * 1024

	// IDLength is the length of a block ID in hex characters.
	IDLength = 16

	// PreviewLimit is the maximum plaintext preview length in bytes.
	PreviewLimit = 200
)

// Block is one fixed-size slice of a file's plaintext.
type Block struct {
	Index int    // 0-based position within the file
	Data  []byte // Plaintext bytes (DefaultSize, except the final block)
}

// Digest returns the SHA-256 hex digest of the block's plaintext.
// Digests are always computed before encryption.
func (b Block) Digest() string {
	sum := sha256.Sum256(b.Data)
	return hex.EncodeToString(sum[:])
}

// Preview returns a plaintext prefix for keyword tagging, or "" when the
// block does not look like UTF-8 text.
func (b Block) Preview() string {
	data := b.Data
	if len(data) > PreviewLimit {
		data = data[:PreviewLimit]
		// Trim a partial rune at the cut point (at most 3 bytes).
		for i := 0; i < 3 && len(data) > 0 && !utf8.Valid(data); i++ {
			data = data[:len(data)-1]
		}
	}
	if !utf8.Valid(data) {
		return ""
	}
	return string(data)
}

// Split reads r into blocks of the given size. A size <= 0 uses DefaultSize.
// The final block may be shorter; an empty reader yields no blocks.
func Split(r io.Reader, size int) ([]Block, error) {
	if size <= 0 {
		size = DefaultSize
	}

	var blocks []Block
	for i := 0; ; i++ {
		buf := make([]byte, size)
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			blocks = append(blocks, Block{Index: i, Data: buf[:n]})
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return blocks, nil
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "read block %d", i)
		}
	}
}

// Join writes blocks to w in index order. Blocks must already be sorted;
// a gap or duplicate index is an error.
func Join(w io.Writer, blocks []Block) error {
	for i, b := range blocks {
		if b.Index != i {
			return errors.New(errors.ErrCodeCorruptBlock, "block sequence broken at index %d (got %d)", i, b.Index)
		}
		if _, err := w.Write(b.Data); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write block %d", i)
		}
	}
	return nil
}

// NewID derives a unique block identifier from the owning file and block
// length. The UUID component makes IDs unique across re-uploads of
// identical content.
func NewID(fileID string, length int) string {
	input := fmt.Sprintf("%s-%d-%s", fileID, length, uuid.NewString())
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:IDLength]
}

// NewFileID returns a fresh file identifier.
func NewFileID() string {
	return uuid.NewString()
}

// Key returns the object store key for a block: "fileID/index".
func Key(fileID string, index int) string {
	return fmt.Sprintf("%s/%d", fileID, index)
}
