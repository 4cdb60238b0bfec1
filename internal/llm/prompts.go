package llm

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

var (
	//go:embed prompts/critique.txt
	critiquePrompt string
	//go:embed prompts/continue.txt
	continuePrompt string
	//go:embed prompts/summarize.txt
	summarizePrompt string
)

const (
	critiqueSystem  = "你是嚴格但友善的小說編輯，只用繁體中文回答，並完全遵守指定的輸出格式。"
	continueSystem  = "你是小說續寫助手，只輸出正文。"
	summarizeSystem = "你是小說摘要助手，只輸出摘要。"

	defaultContinueWords  = 800
	defaultSummarizeWords = 200
)

var (
	critiqueTmpl  = template.Must(template.New("critique").Parse(critiquePrompt))
	continueTmpl  = template.Must(template.New("continue").Parse(continuePrompt))
	summarizeTmpl = template.Must(template.New("summarize").Parse(summarizePrompt))
)

// ChapterInput is the chapter text a prompt is built from.
type ChapterInput struct {
	Title   string
	Content string
	// Summary of earlier chapters, used by continuation prompts.
	Summary     string
	Instruction string
	Words       int
}

// CritiqueRequest builds the request asking for a fenced, scored critique of a chapter.
func CritiqueRequest(in ChapterInput) (Request, error) {
	prompt, err := render(critiqueTmpl, in)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Operation:   OpCritique,
		System:      critiqueSystem,
		Prompt:      prompt,
		Temperature: 0.3,
		MaxTokens:   2048,
	}, nil
}

// ContinueRequest builds a continuation request for the end of a chapter.
func ContinueRequest(in ChapterInput) (Request, error) {
	if in.Words <= 0 {
		in.Words = defaultContinueWords
	}
	prompt, err := render(continueTmpl, in)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Operation:   OpContinue,
		System:      continueSystem,
		Prompt:      prompt,
		Temperature: 0.8,
		MaxTokens:   in.Words * 2,
	}, nil
}

// SummarizeRequest builds a chapter summarization request.
func SummarizeRequest(in ChapterInput) (Request, error) {
	if in.Words <= 0 {
		in.Words = defaultSummarizeWords
	}
	prompt, err := render(summarizeTmpl, in)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Operation:   OpSummarize,
		System:      summarizeSystem,
		Prompt:      prompt,
		Temperature: 0.2,
		MaxTokens:   in.Words * 3,
	}, nil
}

func render(t *template.Template, in ChapterInput) (string, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		in.Title = "（未命名）"
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}
