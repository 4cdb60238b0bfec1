package util

import (
	"errors"
	"strings"
	"unicode"
)

const maxFileNameRunes = 255

var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName removes path separators and control characters and rejects
// traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if s == "" || len([]rune(s)) > maxFileNameRunes {
		return "", ErrInvalidFileName
	}
	return s, nil
}
