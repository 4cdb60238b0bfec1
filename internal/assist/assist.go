package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"novel-backend/internal/chapters"
	"novel-backend/internal/llm"
	"novel-backend/internal/shared/metrics"
	"novel-backend/internal/shared/telemetry"
)

const maxWords = 5000

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrChapterMissing = errors.New("chapter not found")
	ErrEmptyChapter   = errors.New("chapter has no content")
	// ErrGeneration wraps provider failures.
	ErrGeneration = errors.New("generate text")
)

// ChapterReader is the part of the chapter service assist needs.
type ChapterReader interface {
	Get(ctx context.Context, id string) (chapters.Chapter, error)
}

// Service produces continuations and summaries of chapters through the LLM router.
type Service struct {
	Chapters ChapterReader
	LLM      *llm.Router
}

func NewService(chs ChapterReader, router *llm.Router) *Service {
	return &Service{Chapters: chs, LLM: router}
}

// ContinueInput controls a continuation. Words is a target length; zero uses the default.
type ContinueInput struct {
	Provider    string
	Instruction string
	// Context summarizes earlier chapters.
	Context string
	Words   int
}

// Result is generated text with the provider that produced it.
type Result struct {
	ChapterID string `json:"chapterId"`
	Text      string `json:"text"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
}

// Continue writes the next passage after the chapter's current end.
func (s *Service) Continue(ctx context.Context, chapterID string, in ContinueInput) (Result, error) {
	if in.Words < 0 || in.Words > maxWords {
		return Result{}, fmt.Errorf("%w: words must be between 0 and %d", ErrInvalidInput, maxWords)
	}
	ch, err := s.chapter(ctx, chapterID)
	if err != nil {
		return Result{}, err
	}
	req, err := llm.ContinueRequest(llm.ChapterInput{
		Title:       ch.Title,
		Content:     ch.Content,
		Summary:     strings.TrimSpace(in.Context),
		Instruction: strings.TrimSpace(in.Instruction),
		Words:       in.Words,
	})
	if err != nil {
		return Result{}, err
	}
	return s.complete(ctx, ch.ID, in.Provider, req)
}

// Summarize condenses the chapter to roughly words characters.
func (s *Service) Summarize(ctx context.Context, chapterID, provider string, words int) (Result, error) {
	if words < 0 || words > maxWords {
		return Result{}, fmt.Errorf("%w: words must be between 0 and %d", ErrInvalidInput, maxWords)
	}
	ch, err := s.chapter(ctx, chapterID)
	if err != nil {
		return Result{}, err
	}
	req, err := llm.SummarizeRequest(llm.ChapterInput{Title: ch.Title, Content: ch.Content, Words: words})
	if err != nil {
		return Result{}, err
	}
	return s.complete(ctx, ch.ID, provider, req)
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
	if strings.TrimSpace(ch.Content) == "" {
		return chapters.Chapter{}, ErrEmptyChapter
	}
	return ch, nil
}

func (s *Service) complete(ctx context.Context, chapterID, selector string, req llm.Request) (Result, error) {
	_, provider, err := s.LLM.Resolve(selector)
	if err != nil {
		return Result{}, err
	}
	start := time.Now()
	resp, err := s.LLM.Complete(ctx, provider, req)
	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = fmt.Errorf("%s: %w", provider, llm.ErrEmptyResponse)
	}
	fields := map[string]any{
		"chapter_id":  chapterID,
		"operation":   string(req.Operation),
		"provider":    provider,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		metrics.IncLLMRequest(provider, "error")
		fields["error"] = err.Error()
		telemetry.Error("assist.failed", fields)
		return Result{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	metrics.IncLLMRequest(provider, "ok")
	fields["completion_tokens"] = resp.CompletionTokens
	telemetry.Info("assist.completed", fields)

	return Result{
		ChapterID: chapterID,
		Text:      strings.TrimSpace(resp.Text),
		Provider:  resp.Provider,
		Model:     resp.Model,
	}, nil
}
