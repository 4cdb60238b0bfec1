package critiques

import (
	"context"
	"sync"

	"novel-backend/internal/critique"
)

// MemoryRepo stores critiques in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu        sync.RWMutex
	byChapter map[string]Record
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byChapter: make(map[string]Record)}
}

func (r *MemoryRepo) Load(ctx context.Context, chapterID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byChapter[chapterID]
	if !ok {
		return Record{}, critique.ErrNotFound
	}
	return rec, nil
}

// Save replaces any earlier critique of the chapter.
func (r *MemoryRepo) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byChapter[rec.ChapterID] = rec
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
