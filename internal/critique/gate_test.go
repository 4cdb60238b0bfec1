package critique

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubStore struct {
	entries map[string]Entry
	err     error
}

func (s stubStore) Get(_ context.Context, chapterID string) (Entry, error) {
	if s.err != nil {
		return Entry{}, s.err
	}
	e, ok := s.entries[chapterID]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func TestGateNoEntry(t *testing.T) {
	g := NewGate(stubStore{}, 0)
	res, err := g.ShouldReuse(context.Background(), "ch-1", "內容")
	require.NoError(t, err)
	require.False(t, res.HasCached)
	require.False(t, res.Reusable())
}

func TestGateUnchangedAndChanged(t *testing.T) {
	content := "林晚推開門，風雪灌進來。"
	store := stubStore{entries: map[string]Entry{
		"ch-1": {CritiqueText: "舊評論", Fingerprint: Fingerprint(content), GeneratedAt: time.Now()},
	}}
	g := NewGate(store, 0)

	res, err := g.ShouldReuse(context.Background(), "ch-1", content)
	require.NoError(t, err)
	require.True(t, res.HasCached)
	require.False(t, res.Changed)
	require.True(t, res.Reusable())
	require.Equal(t, "舊評論", res.Critique)

	res, err = g.ShouldReuse(context.Background(), "ch-1", content+"她回頭。")
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Equal(t, "舊評論", res.Critique, "stored critique is returned even when changed")
}

func TestGateStale(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	content := "章節"
	store := stubStore{entries: map[string]Entry{
		"ch-1": {CritiqueText: "x", Fingerprint: Fingerprint(content), GeneratedAt: now.Add(-48 * time.Hour)},
	}}
	g := &Gate{Store: store, MaxAge: 24 * time.Hour, Now: func() time.Time { return now }}

	res, err := g.ShouldReuse(context.Background(), "ch-1", content)
	require.NoError(t, err)
	require.True(t, res.Stale)
	require.False(t, res.Changed)
	require.False(t, res.Reusable())
}

func TestGateStoreError(t *testing.T) {
	boom := errors.New("connection refused")
	g := NewGate(stubStore{err: boom}, 0)
	_, err := g.ShouldReuse(context.Background(), "ch-1", "x")
	require.ErrorIs(t, err, boom)
}
