package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-vault isolation.
// Different vaults sharing one Redis instance need separate cache
// namespaces.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "vault:media:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SearchKey generates a prefixed key for cached search results.
func (k *ScopedKeyer) SearchKey(query string, minScore float64) string {
	return k.prefix + k.inner.SearchKey(query, minScore)
}

// VerifyKey generates a prefixed key for cached block verification data.
func (k *ScopedKeyer) VerifyKey(fileID string, blockIDs []string) string {
	return k.prefix + k.inner.VerifyKey(fileID, blockIDs)
}

// FileKey generates a prefixed key for cached file info.
func (k *ScopedKeyer) FileKey(fileID string) string {
	return k.prefix + k.inner.FileKey(fileID)
}
