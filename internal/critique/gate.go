package critique

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by a CacheStore when no critique is stored for a chapter.
var ErrNotFound = errors.New("critique not found")

// Entry is the single stored critique of a chapter.
type Entry struct {
	CritiqueText string
	Fingerprint  string
	GeneratedAt  time.Time
}

// CacheStore is the persistence the gate reads from.
type CacheStore interface {
	Get(ctx context.Context, chapterID string) (Entry, error)
}

// GateResult describes what is cached for a chapter relative to its current text.
type GateResult struct {
	HasCached bool
	Changed   bool
	Stale     bool
	// Critique is the stored text, returned even when Changed is true.
	Critique    string
	GeneratedAt time.Time
}

// Reusable reports whether the stored critique can be shown without regenerating.
func (r GateResult) Reusable() bool {
	return r.HasCached && !r.Changed && !r.Stale
}

// Gate decides whether a stored critique still matches the chapter. It only reports;
// callers decide whether to regenerate.
type Gate struct {
	Store CacheStore
	// MaxAge marks entries older than this as stale. Zero disables the check.
	MaxAge time.Duration
	Now    func() time.Time
}

func NewGate(store CacheStore, maxAge time.Duration) *Gate {
	return &Gate{Store: store, MaxAge: maxAge, Now: time.Now}
}

func (g *Gate) ShouldReuse(ctx context.Context, chapterID, currentContent string) (GateResult, error) {
	entry, err := g.Store.Get(ctx, chapterID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return GateResult{}, nil
		}
		return GateResult{}, fmt.Errorf("load critique %s: %w", chapterID, err)
	}

	res := GateResult{
		HasCached:   true,
		Changed:     HasChanged(currentContent, entry.Fingerprint),
		Critique:    entry.CritiqueText,
		GeneratedAt: entry.GeneratedAt,
	}
	if g.MaxAge > 0 && !entry.GeneratedAt.IsZero() {
		now := time.Now
		if g.Now != nil {
			now = g.Now
		}
		res.Stale = now().Sub(entry.GeneratedAt) > g.MaxAge
	}
	return res, nil
}
