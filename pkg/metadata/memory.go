package metadata

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory metadata store for development and tests.
// It implements the same semantics as the MongoDB backend, including
// duplicate-ID detection and index-ordered block listings.
type MemoryStore struct {
	mu     sync.RWMutex
	files  map[string]File
	blocks map[string]Block
	tags   map[string][]Tag // keyed by block ID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files:  make(map[string]File),
		blocks: make(map[string]Block),
		tags:   make(map[string][]Tag),
	}
}

// AddFile stores a file record.
func (s *MemoryStore) AddFile(_ context.Context, f *File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[f.ID]; ok {
		return ErrDuplicate
	}
	s.files[f.ID] = *f
	return nil
}

// GetFile retrieves a file record, or nil if unknown.
func (s *MemoryStore) GetFile(_ context.Context, fileID string) (*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[fileID]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

// AddBlock stores a block record.
func (s *MemoryStore) AddBlock(_ context.Context, b *Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blocks[b.ID]; ok {
		return ErrDuplicate
	}
	s.blocks[b.ID] = *b
	return nil
}

// BlocksByFile returns the file's blocks ordered by index.
func (s *MemoryStore) BlocksByFile(_ context.Context, fileID string) ([]Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var blocks []Block
	for _, b := range s.blocks {
		if b.FileID == fileID {
			blocks = append(blocks, b)
		}
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Index < blocks[j].Index })
	return blocks, nil
}

// AddTags stores keyword tags.
func (s *MemoryStore) AddTags(_ context.Context, tags []Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range tags {
		s.tags[t.BlockID] = append(s.tags[t.BlockID], t)
	}
	return nil
}

// TagsByBlock returns the tags attached to a block.
func (s *MemoryStore) TagsByBlock(_ context.Context, blockID string) ([]Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tags := make([]Tag, len(s.tags[blockID]))
	copy(tags, s.tags[blockID])
	return tags, nil
}

// SearchBlocks finds blocks tagged with terms containing query.
func (s *MemoryStore) SearchBlocks(_ context.Context, query string, minScore float64) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}

	// Best matching score per block, plus the terms that matched.
	type hit struct {
		score float64
		terms []string
	}
	hits := make(map[string]*hit)
	for blockID, tags := range s.tags {
		for _, t := range tags {
			if t.Score < minScore || !strings.Contains(t.Term, query) {
				continue
			}
			h, ok := hits[blockID]
			if !ok {
				h = &hit{}
				hits[blockID] = h
			}
			h.score = max(h.score, t.Score)
			h.terms = append(h.terms, t.Term)
		}
	}

	var results []SearchResult
	for blockID, h := range hits {
		b, ok := s.blocks[blockID]
		if !ok {
			continue
		}
		sort.Strings(h.terms)
		results = append(results, SearchResult{
			Block:    b,
			FileName: s.files[b.FileID].Name,
			Score:    h.score,
			Terms:    h.terms,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Block.ID < results[j].Block.ID
	})
	return results, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
