package chapters

import "context"

// Repo defines persistence operations for volumes and chapters.
type Repo interface {
	CreateVolume(ctx context.Context, v Volume) error
	GetVolume(ctx context.Context, id string) (Volume, error)
	ListVolumes(ctx context.Context) ([]Volume, error)

	Create(ctx context.Context, ch Chapter) error
	Get(ctx context.Context, id string) (Chapter, error)
	ListByVolume(ctx context.Context, volumeID string) ([]Chapter, error)
	// Update overwrites title, content and word count. Returns ErrNotFound for unknown ids.
	Update(ctx context.Context, ch Chapter) error
	// NextPosition is one past the highest chapter position in the volume.
	NextPosition(ctx context.Context, volumeID string) (int, error)
}
