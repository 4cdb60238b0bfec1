package critiques

import (
	"context"

	"novel-backend/internal/critique"
)

// Repo persists one critique per chapter. Load returns critique.ErrNotFound when
// nothing is stored.
type Repo interface {
	Load(ctx context.Context, chapterID string) (Record, error)
	Save(ctx context.Context, rec Record) error
}

// recordStore adapts a Repo to the gate's read interface and keeps the last
// record it loaded. It is used for a single gate check.
type recordStore struct {
	repo Repo
	last *Record
}

func (s *recordStore) Get(ctx context.Context, chapterID string) (critique.Entry, error) {
	rec, err := s.repo.Load(ctx, chapterID)
	if err != nil {
		return critique.Entry{}, err
	}
	s.last = &rec
	return critique.Entry{
		CritiqueText: rec.CritiqueText,
		Fingerprint:  rec.Fingerprint,
		GeneratedAt:  rec.GeneratedAt,
	}, nil
}
