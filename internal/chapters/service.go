package chapters

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"novel-backend/internal/extract"
	"novel-backend/internal/shared/telemetry"
	"novel-backend/internal/shared/util"
	"novel-backend/internal/textdiff"
)

const maxTitleRunes = 200

// Service contains business logic for volumes and chapters.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateVolume appends a volume after the existing ones.
func (s *Service) CreateVolume(ctx context.Context, title string) (Volume, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Volume{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	existing, err := s.Repo.ListVolumes(ctx)
	if err != nil {
		return Volume{}, err
	}
	now := s.now()
	v := Volume{
		ID:        uuid.NewString(),
		Title:     title,
		Position:  len(existing),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.CreateVolume(ctx, v); err != nil {
		return Volume{}, err
	}
	return v, nil
}

func (s *Service) ListVolumes(ctx context.Context) ([]Volume, error) {
	return s.Repo.ListVolumes(ctx)
}

// Create adds a chapter at the end of its volume.
func (s *Service) Create(ctx context.Context, volumeID, title, content string) (Chapter, error) {
	volumeID = strings.TrimSpace(volumeID)
	title = strings.TrimSpace(title)
	if volumeID == "" {
		return Chapter{}, fmt.Errorf("%w: volumeId is required", ErrInvalidInput)
	}
	if title == "" {
		return Chapter{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len([]rune(title)) > maxTitleRunes {
		return Chapter{}, fmt.Errorf("%w: title is too long", ErrInvalidInput)
	}
	if _, err := s.GetVolume(ctx, volumeID); err != nil {
		return Chapter{}, err
	}
	pos, err := s.Repo.NextPosition(ctx, volumeID)
	if err != nil {
		return Chapter{}, err
	}
	now := s.now()
	ch := Chapter{
		ID:        uuid.NewString(),
		VolumeID:  volumeID,
		Title:     title,
		Content:   content,
		Position:  pos,
		WordCount: CountWords(content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, ch); err != nil {
		return Chapter{}, err
	}
	telemetry.Info("chapter.created", map[string]any{
		"chapter_id": ch.ID,
		"volume_id":  volumeID,
		"word_count": ch.WordCount,
	})
	return ch, nil
}

func (s *Service) Get(ctx context.Context, id string) (Chapter, error) {
	if strings.TrimSpace(id) == "" {
		return Chapter{}, fmt.Errorf("%w: chapter id is required", ErrInvalidInput)
	}
	// ids are UUID columns in Postgres; anything else cannot exist.
	if _, err := uuid.Parse(id); err != nil {
		return Chapter{}, ErrNotFound
	}
	return s.Repo.Get(ctx, id)
}

func (s *Service) GetVolume(ctx context.Context, id string) (Volume, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Volume{}, ErrVolumeNotFound
	}
	return s.Repo.GetVolume(ctx, id)
}

func (s *Service) ListByVolume(ctx context.Context, volumeID string) ([]Chapter, error) {
	if _, err := s.GetVolume(ctx, volumeID); err != nil {
		return nil, err
	}
	return s.Repo.ListByVolume(ctx, volumeID)
}

// UpdateInput carries the fields to change; nil leaves a field untouched.
type UpdateInput struct {
	Title   *string
	Content *string
}

// UpdateResult is the saved chapter plus the paragraph diff against the previous text.
type UpdateResult struct {
	Chapter Chapter
	Changes []textdiff.Change
	Stats   textdiff.Stats
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (UpdateResult, error) {
	prev, err := s.Get(ctx, id)
	if err != nil {
		return UpdateResult{}, err
	}
	next := prev
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return UpdateResult{}, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		next.Title = title
	}
	if in.Content != nil {
		next.Content = *in.Content
		next.WordCount = CountWords(next.Content)
	}
	next.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, next); err != nil {
		return UpdateResult{}, err
	}

	changes := []textdiff.Change{}
	if in.Content != nil && *in.Content != prev.Content {
		changes = textdiff.Paragraphs(prev.Content, next.Content)
	}
	stats := textdiff.Summarize(changes)
	telemetry.Info("chapter.updated", map[string]any{
		"chapter_id": id,
		"inserted":   stats.Inserted,
		"deleted":    stats.Deleted,
	})
	return UpdateResult{Chapter: next, Changes: changes, Stats: stats}, nil
}

// Import creates a chapter from an uploaded manuscript file. The chapter title
// defaults to the file name without its extension.
func (s *Service) Import(ctx context.Context, volumeID, fileName, mimeType string, data []byte, title string) (Chapter, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return Chapter{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	text, err := extract.TextFromBytes(ctx, data, mimeType, name)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupported) || ctx.Err() != nil {
			return Chapter{}, err
		}
		return Chapter{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if strings.TrimSpace(text) == "" {
		return Chapter{}, ErrEmptyContent
	}
	if strings.TrimSpace(title) == "" {
		title = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return s.Create(ctx, volumeID, title, text)
}

// Locate finds a snippet, typically quoted by a critique suggestion, in the live chapter text.
func (s *Service) Locate(ctx context.Context, id, snippet string) ([]Match, error) {
	if strings.TrimSpace(snippet) == "" {
		return nil, fmt.Errorf("%w: q is required", ErrInvalidInput)
	}
	ch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return Locate(ch.Content, snippet), nil
}
