package block

import (
	"bytes"
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		size       int
		wantBlocks int
		wantLast   int // length of final block
	}{
		{"exact multiple", strings.Repeat("a", 8), 4, 2, 4},
		{"short tail", strings.Repeat("a", 10), 4, 3, 2},
		{"single short", "abc", 4, 1, 3},
		{"empty", "", 4, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, err := Split(strings.NewReader(tt.input), tt.size)
			if err != nil {
				t.Fatalf("Split error: %v", err)
			}
			if len(blocks) != tt.wantBlocks {
				t.Fatalf("expected %d blocks, got %d", tt.wantBlocks, len(blocks))
			}
			for i, b := range blocks {
				if b.Index != i {
					t.Errorf("block %d has index %d", i, b.Index)
				}
			}
			if tt.wantBlocks > 0 {
				last := blocks[len(blocks)-1]
				if len(last.Data) != tt.wantLast {
					t.Errorf("expected final block of %d bytes, got %d", tt.wantLast, len(last.Data))
				}
			}
		})
	}
}

func TestSplitJoinRoundTrip(t *testing.T) {
	input := strings.Repeat("the quick brown fox ", 1000)

	blocks, err := Split(strings.NewReader(input), 256)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}

	var buf bytes.Buffer
	if err := Join(&buf, blocks); err != nil {
		t.Fatalf("Join error: %v", err)
	}
	if buf.String() != input {
		t.Error("Join did not reproduce the original content")
	}
}

func TestJoin_BrokenSequence(t *testing.T) {
	blocks := []Block{
		{Index: 0, Data: []byte("a")},
		{Index: 2, Data: []byte("b")}, // gap at 1
	}
	var buf bytes.Buffer
	if err := Join(&buf, blocks); err == nil {
		t.Error("expected error for broken block sequence")
	}
}

func TestDigest(t *testing.T) {
	b := Block{Data: []byte("hello")}

	// Digest is deterministic and computed over plaintext.
	if b.Digest() != (Block{Data: []byte("hello")}).Digest() {
		t.Error("digest should be deterministic")
	}
	if len(b.Digest()) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(b.Digest()))
	}
	if b.Digest() == (Block{Data: []byte("world")}).Digest() {
		t.Error("different data should produce different digests")
	}
}

func TestPreview(t *testing.T) {
	text := Block{Data: []byte("plain text content")}
	if got := text.Preview(); got != "plain text content" {
		t.Errorf("unexpected preview: %q", got)
	}

	long := Block{Data: []byte(strings.Repeat("x", 500))}
	if got := long.Preview(); len(got) != PreviewLimit {
		t.Errorf("expected preview capped at %d, got %d", PreviewLimit, len(got))
	}

	binary := Block{Data: []byte{0xff, 0xfe, 0x00, 0x01}}
	if got := binary.Preview(); got != "" {
		t.Errorf("expected empty preview for binary data, got %q", got)
	}
}

func TestNewID(t *testing.T) {
	fileID := NewFileID()

	id1 := NewID(fileID, 1024)
	id2 := NewID(fileID, 1024)

	if len(id1) != IDLength {
		t.Errorf("expected %d chars, got %d", IDLength, len(id1))
	}
	// UUID component makes IDs unique even for identical inputs.
	if id1 == id2 {
		t.Error("IDs should be unique across calls")
	}
}

func TestKey(t *testing.T) {
	if got := Key("abc", 3); got != "abc/3" {
		t.Errorf("unexpected key: %s", got)
	}
}
