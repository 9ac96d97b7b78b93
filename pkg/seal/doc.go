// Package seal implements block encryption and authentication for the vault.
//
// # Encryption
//
// Blocks are encrypted with AES-256-CBC and PKCS#7 padding. Every call to
// [Sealer.Encrypt] draws a fresh random IV, returned base64-encoded so it can
// be stored as block metadata and fed back to [Sealer.Decrypt].
//
// # Authentication Tags
//
// [Sealer.Tag] produces a CBC-MAC tag: the plaintext is padded and encrypted
// under the vault key, and the final ciphertext block is the MAC. The tag
// string is hex(iv) + hex(mac) so a verifier holding the key can recompute
// it. [Sealer.VerifyTag] compares in constant time.
//
// # Keys
//
// Keys are 32 bytes (AES-256). [NewFromPassphrase] derives a key from a
// passphrase and salt with PBKDF2-SHA256 for deployments that configure the
// vault key via environment variable.
package seal
