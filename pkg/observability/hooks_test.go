package observability

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Transfer hooks
	tr := NoopTransferHooks{}
	tr.OnUploadStart(ctx, "file-1", 4)
	tr.OnBlockUploaded(ctx, "file-1", "abc", 1024, time.Second, nil)
	tr.OnUploadComplete(ctx, "file-1", 4, 4096, time.Second, nil)
	tr.OnDownloadStart(ctx, "file-1", 4)
	tr.OnDownloadComplete(ctx, "file-1", 4096, time.Second, nil)
	tr.OnVerify(ctx, "file-1", 4, 0, time.Second)

	// Object store hooks
	o := NoopObjectStoreHooks{}
	o.OnPut(ctx, "s3", "file-1/0", 1024, time.Second, nil)
	o.OnGet(ctx, "s3", "file-1/0", 1024, time.Second, nil)
	o.OnDelete(ctx, "s3", "file-1/0", nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "search")
	c.OnCacheMiss(ctx, "verify")
	c.OnCacheSet(ctx, "file", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Transfer().(NoopTransferHooks); !ok {
		t.Error("Transfer() should return NoopTransferHooks by default")
	}
	if _, ok := ObjectStore().(NoopObjectStoreHooks); !ok {
		t.Error("ObjectStore() should return NoopObjectStoreHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	// Register a counting hook and verify it receives events
	counter := &countingCacheHooks{}
	SetCacheHooks(counter)
	Cache().OnCacheHit(context.Background(), "search")
	Cache().OnCacheHit(context.Background(), "search")
	Cache().OnCacheMiss(context.Background(), "verify")
	if got := counter.hits.Load(); got != 2 {
		t.Errorf("expected 2 hits, got %d", got)
	}
	if got := counter.misses.Load(); got != 1 {
		t.Errorf("expected 1 miss, got %d", got)
	}

	// Nil registrations are ignored
	SetCacheHooks(nil)
	if _, ok := Cache().(*countingCacheHooks); !ok {
		t.Error("nil registration should not replace hooks")
	}

	Reset()
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset should restore noop hooks")
	}
}

type countingCacheHooks struct {
	hits   atomic.Int64
	misses atomic.Int64
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string)      { h.hits.Add(1) }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses.Add(1) }
func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) {}
