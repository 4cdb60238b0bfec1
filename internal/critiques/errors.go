package critiques

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrChapterMissing = errors.New("chapter not found")
	ErrEmptyChapter   = errors.New("chapter has no content")
	// ErrGeneration wraps provider failures during critique generation.
	ErrGeneration = errors.New("generate critique")
)
