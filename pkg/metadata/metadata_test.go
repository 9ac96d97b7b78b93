package metadata

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testFile(id string) *File {
	return &File{
		ID:         id,
		Name:       "notes.txt",
		MIMEType:   "text/plain",
		Size:       2048,
		BlockCount: 2,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestMemoryStore_Files(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.AddFile(ctx, testFile("file-1")); err != nil {
		t.Fatalf("AddFile error: %v", err)
	}

	f, err := store.GetFile(ctx, "file-1")
	if err != nil {
		t.Fatalf("GetFile error: %v", err)
	}
	if f == nil || f.Name != "notes.txt" {
		t.Errorf("unexpected file: %+v", f)
	}

	// Unknown files are nil, nil rather than an error.
	f, err = store.GetFile(ctx, "missing")
	if err != nil {
		t.Fatalf("GetFile error: %v", err)
	}
	if f != nil {
		t.Errorf("expected nil for unknown file, got %+v", f)
	}

	if err := store.AddFile(ctx, testFile("file-1")); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestMemoryStore_BlocksOrderedByIndex(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Insert out of order; listings must still come back by index.
	for _, idx := range []int{2, 0, 1} {
		err := store.AddBlock(ctx, &Block{
			ID:     string(rune('a' + idx)),
			FileID: "file-1",
			Index:  idx,
		})
		if err != nil {
			t.Fatalf("AddBlock error: %v", err)
		}
	}
	if err := store.AddBlock(ctx, &Block{ID: "z", FileID: "file-2", Index: 0}); err != nil {
		t.Fatalf("AddBlock error: %v", err)
	}

	blocks, err := store.BlocksByFile(ctx, "file-1")
	if err != nil {
		t.Fatalf("BlocksByFile error: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	for i, b := range blocks {
		if b.Index != i {
			t.Errorf("position %d holds index %d", i, b.Index)
		}
	}
}

func TestMemoryStore_DuplicateBlock(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.AddBlock(ctx, &Block{ID: "b1", FileID: "f"}); err != nil {
		t.Fatalf("AddBlock error: %v", err)
	}
	if err := store.AddBlock(ctx, &Block{ID: "b1", FileID: "f"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestMemoryStore_Tags(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	tags := []Tag{
		{BlockID: "b1", Term: "storage", Kind: "tfidf", Score: 0.8},
		{BlockID: "b1", Term: "block storage", Kind: "tfidf", Score: 0.5},
	}
	if err := store.AddTags(ctx, tags); err != nil {
		t.Fatalf("AddTags error: %v", err)
	}

	got, err := store.TagsByBlock(ctx, "b1")
	if err != nil {
		t.Fatalf("TagsByBlock error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 tags, got %d", len(got))
	}
}

func TestMemoryStore_SearchBlocks(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.AddFile(ctx, testFile("file-1")); err != nil {
		t.Fatal(err)
	}
	blocks := []*Block{
		{ID: "b1", FileID: "file-1", Index: 0},
		{ID: "b2", FileID: "file-1", Index: 1},
		{ID: "b3", FileID: "file-1", Index: 2},
	}
	for _, b := range blocks {
		if err := store.AddBlock(ctx, b); err != nil {
			t.Fatal(err)
		}
	}
	err := store.AddTags(ctx, []Tag{
		{BlockID: "b1", Term: "storage", Kind: "tfidf", Score: 0.4},
		{BlockID: "b2", Term: "block storage", Kind: "tfidf", Score: 0.9},
		{BlockID: "b2", Term: "storage layer", Kind: "tfidf", Score: 0.3},
		{BlockID: "b3", Term: "network", Kind: "tfidf", Score: 0.9},
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := store.SearchBlocks(ctx, "storage", 0.2)
	if err != nil {
		t.Fatalf("SearchBlocks error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// b2 holds the best matching score, so it ranks first.
	if results[0].Block.ID != "b2" || results[1].Block.ID != "b1" {
		t.Errorf("unexpected ranking: %s, %s", results[0].Block.ID, results[1].Block.ID)
	}
	if results[0].Score != 0.9 {
		t.Errorf("expected best score 0.9, got %v", results[0].Score)
	}
	if len(results[0].Terms) != 2 {
		t.Errorf("expected both matching terms, got %v", results[0].Terms)
	}
	if results[0].FileName != "notes.txt" {
		t.Errorf("expected file name join, got %q", results[0].FileName)
	}

	// Score threshold filters low-scoring matches.
	results, err = store.SearchBlocks(ctx, "storage", 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Block.ID != "b2" {
		t.Errorf("expected only b2 above 0.5, got %+v", results)
	}

	// Empty queries match nothing.
	results, err = store.SearchBlocks(ctx, "   ", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results for empty query, got %d", len(results))
	}
}

func TestRegexQuoteMeta(t *testing.T) {
	got := regexQuoteMeta(`c++ (v1.0)`)
	want := `c\+\+ \(v1\.0\)`
	if got != want {
		t.Errorf("regexQuoteMeta = %q, want %q", got, want)
	}
}
