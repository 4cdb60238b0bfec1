package chapters

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu       sync.RWMutex
	volumes  map[string]Volume
	chapters map[string]Chapter
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		volumes:  make(map[string]Volume),
		chapters: make(map[string]Chapter),
	}
}

func (r *MemoryRepo) CreateVolume(ctx context.Context, v Volume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.volumes[v.ID] = v
	return nil
}

func (r *MemoryRepo) GetVolume(ctx context.Context, id string) (Volume, error) {
	if err := ctx.Err(); err != nil {
		return Volume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.volumes[id]
	if !ok {
		return Volume{}, ErrVolumeNotFound
	}
	return v, nil
}

func (r *MemoryRepo) ListVolumes(ctx context.Context) ([]Volume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Volume, 0, len(r.volumes))
	for _, v := range r.volumes {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Create(ctx context.Context, ch Chapter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.volumes[ch.VolumeID]; !ok {
		return ErrVolumeNotFound
	}
	r.chapters[ch.ID] = ch
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Chapter, error) {
	if err := ctx.Err(); err != nil {
		return Chapter{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.chapters[id]
	if !ok {
		return Chapter{}, ErrNotFound
	}
	return ch, nil
}

func (r *MemoryRepo) ListByVolume(ctx context.Context, volumeID string) ([]Chapter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Chapter, 0)
	for _, ch := range r.chapters {
		if ch.VolumeID == volumeID {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, ch Chapter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.chapters[ch.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Title = ch.Title
	existing.Content = ch.Content
	existing.WordCount = ch.WordCount
	existing.UpdatedAt = ch.UpdatedAt
	r.chapters[ch.ID] = existing
	return nil
}

func (r *MemoryRepo) NextPosition(ctx context.Context, volumeID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	next := 0
	for _, ch := range r.chapters {
		if ch.VolumeID == volumeID && ch.Position >= next {
			next = ch.Position + 1
		}
	}
	return next, nil
}

var _ Repo = (*MemoryRepo)(nil)
