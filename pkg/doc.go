// Package pkg provides the core libraries for BlockVault secure block storage.
//
// # Overview
//
// BlockVault stores files as fixed-size encrypted blocks with verifiable
// integrity and keyword search. The pkg directory is organized into four
// main areas:
//
//  1. Data model - [block] (splitting, IDs, previews), [manifest] (dependency manifests)
//  2. Crypto - [seal] (AES-CBC sealing, CBC-MAC tags, key derivation)
//  3. Storage - [metadata] (file/block/tag records), [objstore] (ciphertext), [cache]
//  4. Protocol - [vault] (server orchestration), [client] (sealing client), [httputil]
//
// # Architecture
//
// The typical data flow through BlockVault:
//
//	File
//	  ↓ block.Split
//	Plaintext blocks ── keywords.Extract ──→ metadata tags
//	  ↓ seal.Encrypt + seal.Tag
//	Ciphertext + IV + auth tag
//	  ↓ objstore.Put / metadata.AddBlock
//	Stored, searchable, verifiable blocks
//
// Downloads run the same path in reverse, verifying each block's plaintext
// digest after unsealing. Verification alone never moves block bytes: the
// client recomputes CBC-MAC tags locally and compares against the server's.
//
// Supporting packages: [errors] (structured error codes), [config] (TOML
// configuration), [observability] (instrumentation hooks), [buildinfo]
// (version stamping), [keywords] (TF-IDF tagging).
package pkg
