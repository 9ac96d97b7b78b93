package errors

import (
	"strings"
	"unicode"
)

// ValidateFileID validates a file identifier.
// File IDs are UUIDs generated by the client or server; the check here is
// conservative and rejects anything that could be abused in an object key.
func ValidateFileID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidFile, "file id cannot be empty")
	}
	if len(id) != 36 {
		return New(ErrCodeInvalidFile, "file id must be a 36-character UUID")
	}
	for i, r := range id {
		switch i {
		case 8, 13, 18, 23:
			if r != '-' {
				return New(ErrCodeInvalidFile, "file id is not a valid UUID")
			}
		default:
			if !isHex(r) {
				return New(ErrCodeInvalidFile, "file id is not a valid UUID")
			}
		}
	}
	return nil
}

// ValidateBlockID validates a block identifier.
// Block IDs are 16 lowercase hex characters (a truncated SHA-256).
func ValidateBlockID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidBlock, "block id cannot be empty")
	}
	if len(id) != 16 {
		return New(ErrCodeInvalidBlock, "block id must be 16 hex characters")
	}
	for _, r := range id {
		if !isHex(r) {
			return New(ErrCodeInvalidBlock, "block id must be 16 hex characters")
		}
	}
	return nil
}

// ValidateObjectKey validates an object store key for safety.
// It rejects keys that could be used for path traversal in the filesystem
// backend or that would confuse the S3 backend.
func ValidateObjectKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "object key cannot be empty")
	}
	if len(key) > 512 {
		return New(ErrCodeInvalidInput, "object key too long (max 512 characters)")
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "object key contains control characters")
		}
	}

	// Path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidInput, "object key contains invalid sequence: %q", pattern)
		}
	}

	if strings.HasPrefix(key, "/") {
		return New(ErrCodeInvalidInput, "object key cannot be absolute")
	}
	return nil
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}
