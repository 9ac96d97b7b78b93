package cache

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss before set
	_, hit, err := c.Get(ctx, "key")
	if err != nil || hit {
		t.Fatalf("expected clean miss, hit=%v err=%v", hit, err)
	}

	// Round trip
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit || !bytes.Equal(data, []byte("value")) {
		t.Errorf("expected hit with value, hit=%v data=%q", hit, data)
	}

	// Delete
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("expected miss after delete")
	}

	// Deleting a missing key is not an error
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("expected expired entry to miss")
	}
}

func TestFileCache_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatal(err)
	}
	_, hit, err := c.Get(ctx, "key")
	if err != nil || !hit {
		t.Errorf("zero TTL entry should not expire, hit=%v err=%v", hit, err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// Keys are deterministic
	if k.SearchKey("query", 0.1) != k.SearchKey("query", 0.1) {
		t.Error("SearchKey should be deterministic")
	}

	// Different inputs produce different keys
	if k.SearchKey("query", 0.1) == k.SearchKey("query", 0.2) {
		t.Error("different min scores should produce different keys")
	}
	if k.VerifyKey("f1", []string{"a"}) == k.VerifyKey("f1", []string{"b"}) {
		t.Error("different block sets should produce different keys")
	}

	// Prefixes identify the key type
	if !strings.HasPrefix(k.SearchKey("q", 0.1), "search:") {
		t.Error("search keys should carry the search prefix")
	}
	if !strings.HasPrefix(k.FileKey("f1"), "file:") {
		t.Error("file keys should carry the file prefix")
	}
}

func TestScopedKeyer(t *testing.T) {
	base := NewDefaultKeyer()
	scoped := NewScopedKeyer(base, "vault:media:")

	got := scoped.SearchKey("query", 0.1)
	want := "vault:media:" + base.SearchKey("query", 0.1)
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	// Nil inner falls back to the default keyer
	fallback := NewScopedKeyer(nil, "p:")
	if !strings.HasPrefix(fallback.FileKey("f1"), "p:file:") {
		t.Error("nil inner should use the default keyer")
	}
}
