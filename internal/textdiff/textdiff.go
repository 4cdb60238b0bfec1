// Package textdiff computes paragraph-level changes between two versions of a chapter.
package textdiff

import (
	"regexp"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of change applied to a paragraph.
type Op string

const (
	OpEqual  Op = "equal"
	OpInsert Op = "insert"
	OpDelete Op = "delete"
)

// Change is one paragraph with its diff operation.
type Change struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// Stats counts changed paragraphs.
type Stats struct {
	Inserted  int `json:"inserted"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
}

var blankLines = regexp.MustCompile(`\n(?:[ \t\r\x{3000}]*\n)+`)

const blank = " \t\r\n\u3000"

// inner newlines are swapped for this marker so each paragraph diffs as one line.
const lineMarker = "\x1f"

// Split breaks text into paragraphs on blank lines. Text without any blank line is
// one paragraph per line, the usual web-novel layout. Leading indentation is kept,
// trailing whitespace is trimmed and empty paragraphs are dropped.
func Split(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var parts []string
	if blankLines.MatchString(strings.Trim(text, blank)) {
		parts = blankLines.Split(text, -1)
	} else {
		parts = strings.Split(text, "\n")
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.Trim(p, blank) == "" {
			continue
		}
		out = append(out, strings.TrimLeft(strings.TrimRight(p, blank), "\r\n"))
	}
	return out
}

// Paragraphs diffs oldText against newText one paragraph at a time.
func Paragraphs(oldText, newText string) []Change {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	a, b, lineArray := dmp.DiffLinesToChars(encode(Split(oldText)), encode(Split(newText)))
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	changes := make([]Change, 0, len(diffs))
	for _, d := range diffs {
		op := OpEqual
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			if line == "" {
				continue
			}
			changes = append(changes, Change{Op: op, Text: strings.ReplaceAll(line, lineMarker, "\n")})
		}
	}
	return changes
}

// Summarize counts the operations in changes.
func Summarize(changes []Change) Stats {
	var s Stats
	for _, c := range changes {
		switch c.Op {
		case OpInsert:
			s.Inserted++
		case OpDelete:
			s.Deleted++
		default:
			s.Unchanged++
		}
	}
	return s
}

func encode(paragraphs []string) string {
	if len(paragraphs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range paragraphs {
		b.WriteString(strings.ReplaceAll(p, "\n", lineMarker))
		b.WriteByte('\n')
	}
	return b.String()
}
