package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"

	"github.com/parthk/blockvault/pkg/errors"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// pbkdf2Iterations for passphrase-derived keys.
	pbkdf2Iterations = 600_000
)

// Sealer encrypts and authenticates blocks under a single vault key.
// All methods are safe for concurrent use.
type Sealer struct {
	key []byte
}

// New creates a Sealer from a raw 32-byte key.
func New(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, errors.New(errors.ErrCodeInvalidKey, "key must be %d bytes, got %d", KeySize, len(key))
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &Sealer{key: k}, nil
}

// NewFromPassphrase derives a vault key from a passphrase and salt using
// PBKDF2-SHA256.
func NewFromPassphrase(passphrase, salt string) (*Sealer, error) {
	if passphrase == "" {
		return nil, errors.New(errors.ErrCodeInvalidKey, "passphrase cannot be empty")
	}
	key := pbkdf2.Key([]byte(passphrase), []byte(salt), pbkdf2Iterations, KeySize, sha256.New)
	return &Sealer{key: key}, nil
}

// Encrypt encrypts plaintext with AES-256-CBC and PKCS#7 padding.
// A fresh random IV is generated per call and returned base64-encoded so it
// can travel alongside the ciphertext as metadata.
func (s *Sealer) Encrypt(plaintext []byte) (ciphertext []byte, iv string, err error) {
	rawIV := make([]byte, aes.BlockSize)
	if _, err := rand.Read(rawIV); err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "generate iv")
	}

	blockCipher, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "init cipher")
	}

	padded := pad(plaintext)
	ciphertext = make([]byte, len(padded))
	cipher.NewCBCEncrypter(blockCipher, rawIV).CryptBlocks(ciphertext, padded)

	return ciphertext, base64.StdEncoding.EncodeToString(rawIV), nil
}

// Decrypt reverses Encrypt given the base64-encoded IV.
func (s *Sealer) Decrypt(ciphertext []byte, iv string) ([]byte, error) {
	rawIV, err := base64.StdEncoding.DecodeString(iv)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptBlock, err, "decode iv")
	}
	if len(rawIV) != aes.BlockSize {
		return nil, errors.New(errors.ErrCodeCorruptBlock, "iv must be %d bytes, got %d", aes.BlockSize, len(rawIV))
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.New(errors.ErrCodeCorruptBlock, "ciphertext length %d is not a multiple of the block size", len(ciphertext))
	}

	blockCipher, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init cipher")
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(blockCipher, rawIV).CryptBlocks(padded, ciphertext)

	return unpad(padded)
}

// Tag computes a CBC-MAC authentication tag over plaintext.
//
// The plaintext is padded and encrypted under the vault key with a random
// IV; the tag is hex(iv) followed by hex of the final ciphertext block. The
// random IV means tags are not comparable across calls; verification always
// recomputes under the embedded IV.
func (s *Sealer) Tag(plaintext []byte) (string, error) {
	rawIV := make([]byte, aes.BlockSize)
	if _, err := rand.Read(rawIV); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "generate iv")
	}
	mac, err := s.cbcMAC(plaintext, rawIV)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(rawIV) + hex.EncodeToString(mac), nil
}

// VerifyTag recomputes the CBC-MAC under the tag's embedded IV and compares
// in constant time.
func (s *Sealer) VerifyTag(plaintext []byte, tag string) (bool, error) {
	// hex(16-byte iv) + hex(16-byte mac)
	if len(tag) != 4*aes.BlockSize {
		return false, errors.New(errors.ErrCodeVerifyFailed, "malformed tag: expected %d hex chars, got %d", 4*aes.BlockSize, len(tag))
	}
	rawIV, err := hex.DecodeString(tag[:2*aes.BlockSize])
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeVerifyFailed, err, "malformed tag iv")
	}
	want, err := hex.DecodeString(tag[2*aes.BlockSize:])
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeVerifyFailed, err, "malformed tag mac")
	}

	got, err := s.cbcMAC(plaintext, rawIV)
	if err != nil {
		return false, err
	}
	return hmac.Equal(got, want), nil
}

// cbcMAC encrypts the padded plaintext and returns the last ciphertext block.
func (s *Sealer) cbcMAC(plaintext, iv []byte) ([]byte, error) {
	blockCipher, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init cipher")
	}

	padded := pad(plaintext)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(blockCipher, iv).CryptBlocks(out, padded)

	return out[len(out)-aes.BlockSize:], nil
}

// pad applies PKCS#7 padding. Empty input pads to one full block.
func pad(data []byte) []byte {
	padLen := aes.BlockSize - len(data)%aes.BlockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// unpad strips PKCS#7 padding, rejecting malformed padding.
func unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, errors.New(errors.ErrCodeCorruptBlock, "invalid padded length %d", len(data))
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > aes.BlockSize {
		return nil, errors.New(errors.ErrCodeCorruptBlock, "invalid padding byte %d", padLen)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, errors.New(errors.ErrCodeCorruptBlock, "inconsistent padding")
		}
	}
	return data[:len(data)-padLen], nil
}
