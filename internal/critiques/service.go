package critiques

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"novel-backend/internal/chapters"
	"novel-backend/internal/critique"
	"novel-backend/internal/llm"
	"novel-backend/internal/shared/metrics"
	"novel-backend/internal/shared/telemetry"
)

const (
	defaultConcurrency = 3
	maxBatchSize       = 50
)

// ChapterReader is the part of the chapter service critiques need.
type ChapterReader interface {
	Get(ctx context.Context, id string) (chapters.Chapter, error)
}

// Service contains business logic for chapter critiques.
type Service struct {
	Repo     Repo
	Chapters ChapterReader
	LLM      *llm.Router
	// MaxAge marks stored critiques older than this as stale. Zero disables it.
	MaxAge      time.Duration
	Concurrency int
	Now         func() time.Time
}

func NewService(repo Repo, chs ChapterReader, router *llm.Router) *Service {
	return &Service{
		Repo:        repo,
		Chapters:    chs,
		LLM:         router,
		Concurrency: defaultConcurrency,
		Now:         time.Now,
	}
}

// GenerateOptions selects the provider and whether to bypass the stored critique.
type GenerateOptions struct {
	Provider string
	Force    bool
}

// View is the critique state of one chapter.
type View struct {
	ChapterID string
	HasCached bool
	Changed   bool
	Stale     bool
	// Reused is set by Generate when the stored critique was returned as is.
	Reused      bool
	Provider    string
	Model       string
	GeneratedAt time.Time
	Critique    *critique.Data
}

// BatchItem is the outcome for one chapter of a batch run.
type BatchItem struct {
	ChapterID string
	View      *View
	Err       error
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// View reports the stored critique of a chapter and whether the chapter changed since.
func (s *Service) View(ctx context.Context, chapterID string) (View, error) {
	ch, err := s.chapter(ctx, chapterID)
	if err != nil {
		return View{}, err
	}
	view, _, err := s.inspect(ctx, ch)
	return view, err
}

// Generate returns the stored critique when it is still valid and not forced,
// otherwise asks the selected provider for a new one and overwrites the stored copy.
func (s *Service) Generate(ctx context.Context, chapterID string, opts GenerateOptions) (View, error) {
	ch, err := s.chapter(ctx, chapterID)
	if err != nil {
		return View{}, err
	}
	if strings.TrimSpace(ch.Content) == "" {
		return View{}, ErrEmptyChapter
	}

	view, gate, err := s.inspect(ctx, ch)
	if err != nil {
		return View{}, err
	}
	if !opts.Force && gate.Reusable() {
		metrics.IncCritiqueReused()
		telemetry.Info("critique.reused", map[string]any{
			"chapter_id":   ch.ID,
			"generated_at": view.GeneratedAt,
		})
		view.Reused = true
		return view, nil
	}

	_, provider, err := s.LLM.Resolve(opts.Provider)
	if err != nil {
		return View{}, err
	}
	req, err := llm.CritiqueRequest(llm.ChapterInput{Title: ch.Title, Content: ch.Content})
	if err != nil {
		return View{}, err
	}

	start := time.Now()
	resp, err := s.LLM.Complete(ctx, provider, req)
	elapsed := time.Since(start)
	metrics.ObserveCritiqueDurationMs(float64(elapsed.Milliseconds()))
	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = fmt.Errorf("%s: %w", provider, llm.ErrEmptyResponse)
	}
	if err != nil {
		metrics.IncCritiqueFailed()
		metrics.IncLLMRequest(provider, "error")
		telemetry.Error("critique.failed", map[string]any{
			"chapter_id":  ch.ID,
			"provider":    provider,
			"duration_ms": elapsed.Milliseconds(),
			"error":       err.Error(),
		})
		return View{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	metrics.IncLLMRequest(provider, "ok")

	rec := Record{
		ChapterID:    ch.ID,
		CritiqueText: resp.Text,
		Fingerprint:  critique.Fingerprint(ch.Content),
		Provider:     resp.Provider,
		Model:        resp.Model,
		GeneratedAt:  s.now(),
	}
	if err := s.Repo.Save(ctx, rec); err != nil {
		metrics.IncCritiqueFailed()
		return View{}, fmt.Errorf("save critique: %w", err)
	}
	metrics.IncCritiqueGenerated()

	data := critique.Parse(rec.CritiqueText)
	if data.Empty() {
		metrics.IncCritiqueParseEmpty()
		telemetry.Warn("critique.parse_empty", map[string]any{
			"chapter_id": ch.ID,
			"provider":   rec.Provider,
		})
	}
	telemetry.Info("critique.generated", map[string]any{
		"chapter_id":        ch.ID,
		"provider":          rec.Provider,
		"model":             rec.Model,
		"duration_ms":       elapsed.Milliseconds(),
		"prompt_tokens":     resp.PromptTokens,
		"completion_tokens": resp.CompletionTokens,
		"forced":            opts.Force,
	})

	return View{
		ChapterID:   ch.ID,
		HasCached:   true,
		Provider:    rec.Provider,
		Model:       rec.Model,
		GeneratedAt: rec.GeneratedAt,
		Critique:    data,
	}, nil
}

// GenerateBatch runs Generate for each distinct chapter with bounded concurrency.
// A failing chapter does not stop the others; results keep the input order.
func (s *Service) GenerateBatch(ctx context.Context, chapterIDs []string, opts GenerateOptions) ([]BatchItem, error) {
	ids := dedupe(chapterIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: chapterIds is required", ErrInvalidInput)
	}
	if len(ids) > maxBatchSize {
		return nil, fmt.Errorf("%w: at most %d chapters per batch", ErrInvalidInput, maxBatchSize)
	}
	if _, _, err := s.LLM.Resolve(opts.Provider); err != nil {
		return nil, err
	}

	limit := s.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	items := make([]BatchItem, len(ids))
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			view, err := s.Generate(ctx, id, opts)
			mu.Lock()
			defer mu.Unlock()
			items[i] = BatchItem{ChapterID: id, Err: err}
			if err == nil {
				items[i].View = &view
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, it := range items {
		if it.Err != nil {
			failed++
		}
	}
	telemetry.Info("critique.batch", map[string]any{
		"chapters": len(ids),
		"failed":   failed,
		"limit":    limit,
	})
	return items, ctx.Err()
}

// Parse structures arbitrary critique text. Blank input yields nil.
func (s *Service) Parse(text string) *critique.Data {
	return critique.Parse(text)
}

func (s *Service) chapter(ctx context.Context, chapterID string) (chapters.Chapter, error) {
	chapterID = strings.TrimSpace(chapterID)
	if chapterID == "" {
		return chapters.Chapter{}, fmt.Errorf("%w: chapter id is required", ErrInvalidInput)
	}
	ch, err := s.Chapters.Get(ctx, chapterID)
	if err != nil {
		if errors.Is(err, chapters.ErrNotFound) {
			return chapters.Chapter{}, fmt.Errorf("%w: %s", ErrChapterMissing, chapterID)
		}
		return chapters.Chapter{}, err
	}
	return ch, nil
}

func (s *Service) inspect(ctx context.Context, ch chapters.Chapter) (View, critique.GateResult, error) {
	store := &recordStore{repo: s.Repo}
	gate := critique.Gate{Store: store, MaxAge: s.MaxAge, Now: s.Now}
	res, err := gate.ShouldReuse(ctx, ch.ID, ch.Content)
	if err != nil {
		return View{}, critique.GateResult{}, err
	}
	view := View{
		ChapterID:   ch.ID,
		HasCached:   res.HasCached,
		Changed:     res.Changed,
		Stale:       res.Stale,
		GeneratedAt: res.GeneratedAt,
	}
	if res.HasCached {
		view.Critique = critique.Parse(res.Critique)
	}
	if store.last != nil {
		view.Provider = store.last.Provider
		view.Model = store.last.Model
	}
	return view, res, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
