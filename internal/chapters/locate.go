package chapters

import (
	"strings"
	"unicode/utf16"
)

// Match is one occurrence of a snippet in chapter text. Offsets count UTF-16 code
// units, the same indexing the browser editor uses for cursor positions.
type Match struct {
	Start int `json:"start"`
	End   int `json:"end"`
	// Line is 1-based.
	Line int `json:"line"`
}

const maxMatches = 20

var snippetQuotes = []string{"「", "」", "『", "』", "“", "”", "\"", "'"}

// Locate finds every non-overlapping occurrence of snippet in text. Surrounding
// quotation marks are ignored when the quoted form does not occur.
func Locate(text, snippet string) []Match {
	snippet = strings.TrimSpace(snippet)
	if snippet == "" || text == "" {
		return []Match{}
	}
	matches := findAll(text, snippet)
	if len(matches) == 0 {
		if trimmed := trimQuotes(snippet); trimmed != "" && trimmed != snippet {
			matches = findAll(text, trimmed)
		}
	}
	return matches
}

func findAll(text, needle string) []Match {
	out := []Match{}
	offset := 0
	unitOffset := 0
	line := 1
	for len(out) < maxMatches {
		idx := strings.Index(text[offset:], needle)
		if idx < 0 {
			break
		}
		prefix := text[offset : offset+idx]
		unitOffset += utf16Len(prefix)
		line += strings.Count(prefix, "\n")

		length := utf16Len(needle)
		out = append(out, Match{Start: unitOffset, End: unitOffset + length, Line: line})

		unitOffset += length
		line += strings.Count(needle, "\n")
		offset += idx + len(needle)
	}
	return out
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func trimQuotes(s string) string {
	for _, q := range snippetQuotes {
		s = strings.TrimPrefix(s, q)
		s = strings.TrimSuffix(s, q)
	}
	return strings.TrimSpace(s)
}
