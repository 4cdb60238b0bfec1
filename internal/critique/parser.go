package critique

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"novel-backend/internal/shared/telemetry"
)

// Fence surrounds every section title in the critique template: "═══ 一、節奏分析 ═══".
const Fence = "═══"

const (
	suggestionsTitle   = "修改建議"
	suggestionsOrdinal = "五"
	summaryTitle       = "整體評價"
	summaryOrdinal     = "六"

	minSuggestionRunes = 5
)

var (
	fencePattern         = regexp.MustCompile(`═{3}\s*([^═\n]+?)\s*═{3}`)
	sectionRatingPattern = regexp.MustCompile(ratingExpr)
	listItemPattern      = regexp.MustCompile(`^\s*(?:\d+\.\s*|[-•]\s+)(.+)$`)
	integerPattern       = regexp.MustCompile(`\d+`)
	totalScorePattern    = regexp.MustCompile(`(?:總評分|整體評分)\s*(?:[（(]\s*1\s*[-－~～]\s*10\s*[)）])?\s*[:：]\s*(\d+)`)
)

// Score is one extracted dimension rating.
type Score struct {
	Name     string `json:"name"`
	Value    int    `json:"value"`
	Category string `json:"category"`
}

// Section is one fenced block of the critique document.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	// Rating is nil when the section carries no "評分（1-10）" line.
	Rating *int `json:"rating,omitempty"`
}

// Summary is extracted from the overall-evaluation section.
type Summary struct {
	Highlights   string `json:"highlights"`
	Problems     string `json:"problems"`
	OverallScore int    `json:"overallScore"`
	OneSentence  string `json:"oneSentence"`
}

// Data is the structured decomposition of a raw critique document. Every field is
// best effort; callers fall back to RawContent when structure is missing.
type Data struct {
	Scores      []Score   `json:"scores"`
	Sections    []Section `json:"sections"`
	Suggestions []string  `json:"suggestions"`
	Summary     Summary   `json:"summary"`
	RawContent  string    `json:"rawContent"`
}

// Empty reports whether nothing beyond the raw text was extracted.
func (d *Data) Empty() bool {
	if d == nil {
		return true
	}
	return len(d.Scores) == 0 && len(d.Sections) == 0 && len(d.Suggestions) == 0 && d.Summary == (Summary{})
}

// Parse extracts scores, sections, suggestions and the closing summary from raw
// critique text. It returns nil for blank input and never panics.
func Parse(raw string) (data *Data) {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			telemetry.Error("critique.parse_panic", map[string]any{
				"error":     fmt.Sprint(rec),
				"raw_bytes": len(raw),
			})
			data = nil
		}
	}()

	data = &Data{
		Scores:      []Score{},
		Sections:    extractSections(raw),
		Suggestions: []string{},
		RawContent:  raw,
	}
	data.Scores = extractScores(raw)

	if sec, ok := findSection(data.Sections, suggestionsTitle, suggestionsOrdinal); ok {
		data.Suggestions = extractSuggestions(sec.Content)
	}
	if sec, ok := findSection(data.Sections, summaryTitle, summaryOrdinal); ok {
		data.Summary = extractSummary(sec.Content)
	}

	if data.Summary.OverallScore == 0 {
		if m := totalScorePattern.FindStringSubmatch(raw); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				data.Summary.OverallScore = n
			}
		}
	}
	if data.Summary.OverallScore == 0 && len(data.Scores) > 0 {
		data.Summary.OverallScore = meanScore(data.Scores)
	}
	return data
}

func extractSections(raw string) []Section {
	matches := fencePattern.FindAllStringSubmatchIndex(raw, -1)
	sections := make([]Section, 0, len(matches))
	for i, m := range matches {
		end := len(raw)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(raw[m[1]:end])
		sec := Section{
			Title:   strings.TrimSpace(raw[m[2]:m[3]]),
			Content: body,
		}
		if rm := sectionRatingPattern.FindStringSubmatch(body); rm != nil {
			if n, err := strconv.Atoi(rm[1]); err == nil {
				sec.Rating = &n
			}
		}
		sections = append(sections, sec)
	}
	return sections
}

func extractScores(raw string) []Score {
	scores := make([]Score, 0, len(dimensions))
	for i, d := range dimensions {
		m := dimensionPatterns[i].FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > 10 {
			continue
		}
		scores = append(scores, Score{Name: d.Name, Value: n, Category: d.Category})
	}
	return scores
}

func findSection(sections []Section, title, ordinal string) (Section, bool) {
	for _, sec := range sections {
		if strings.Contains(sec.Title, title) || strings.Contains(sec.Title, ordinal) {
			return sec, true
		}
	}
	return Section{}, false
}

func extractSuggestions(body string) []string {
	out := []string{}
	for _, line := range strings.Split(body, "\n") {
		m := listItemPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		item := strings.TrimSpace(m[1])
		if utf8.RuneCountInString(item) > minSuggestionRunes {
			out = append(out, item)
		}
	}
	return out
}

// extractSummary classifies each line independently; a later line matching the same
// field overwrites the earlier value.
func extractSummary(body string) Summary {
	var s Summary
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, "亮點") {
			s.Highlights = afterColon(line)
		}
		if strings.Contains(line, "問題") {
			s.Problems = afterColon(line)
		}
		if strings.Contains(line, "總評分") || strings.Contains(line, "整體評分") {
			if n, ok := firstInteger(line); ok {
				s.OverallScore = n
			}
		}
		if strings.Contains(line, "一句話總結") {
			s.OneSentence = afterColon(line)
		}
	}
	return s
}

func afterColon(line string) string {
	idx := strings.IndexAny(line, ":：")
	if idx < 0 {
		return ""
	}
	_, size := utf8.DecodeRuneInString(line[idx:])
	return strings.TrimSpace(line[idx+size:])
}

// firstInteger reads only after the colon when there is one, so "總評分（1-10）：8"
// yields 8 and "總評分（1-10）：N" yields nothing.
func firstInteger(line string) (int, bool) {
	search := line
	if idx := strings.IndexAny(line, ":："); idx >= 0 {
		_, size := utf8.DecodeRuneInString(line[idx:])
		search = line[idx+size:]
	}
	m := integerPattern.FindString(search)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

func meanScore(scores []Score) int {
	if len(scores) == 0 {
		return 0
	}
	total := 0
	for _, s := range scores {
		total += s.Value
	}
	return int(math.Round(float64(total) / float64(len(scores))))
}
