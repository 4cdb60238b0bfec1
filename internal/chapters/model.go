package chapters

import (
	"time"
	"unicode"
)

// Volume groups chapters of a manuscript in reading order.
type Volume struct {
	ID        string
	Title     string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Chapter is a single chapter of a volume.
type Chapter struct {
	ID        string
	VolumeID  string
	Title     string
	Content   string
	Position  int
	WordCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CountWords counts non-whitespace characters, the usual length measure for CJK prose.
func CountWords(text string) int {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
