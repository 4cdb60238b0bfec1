package chapters

import "errors"

var (
	ErrNotFound       = errors.New("chapter not found")
	ErrVolumeNotFound = errors.New("volume not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrEmptyContent   = errors.New("chapter content is empty")
)
