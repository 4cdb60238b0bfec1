package critique

import "regexp"

// Dimension is one of the fixed evaluation axes a critique rates from 1 to 10.
type Dimension struct {
	// Keyword is matched on the rating line, e.g. "節奏評分（1-10）：7".
	Keyword  string `json:"keyword"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

const (
	CategoryPacing    = "pacing"
	CategoryCoolPoint = "coolPoint"
	CategoryHook      = "hook"
	CategoryDialogue  = "dialogue"
	CategoryFiller    = "filler"
)

// canonical order; scores are always emitted in this order.
var dimensions = []Dimension{
	{Keyword: "節奏", Name: "節奏掌控", Category: CategoryPacing},
	{Keyword: "爽點", Name: "爽點設計", Category: CategoryCoolPoint},
	{Keyword: "鉤子", Name: "鉤子強度", Category: CategoryHook},
	{Keyword: "對話", Name: "對話品質", Category: CategoryDialogue},
	{Keyword: "水文", Name: "水文檢測", Category: CategoryFiller},
}

// ratingExpr matches "評分（1-10）：N" with either half- or full-width punctuation.
const ratingExpr = `評分\s*[（(]\s*1\s*[-－~～]\s*10\s*[)）]\s*[:：]\s*(\d+)`

var dimensionPatterns = compileDimensionPatterns()

func compileDimensionPatterns() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(dimensions))
	for i, d := range dimensions {
		out[i] = regexp.MustCompile(regexp.QuoteMeta(d.Keyword) + `[^\n]*?` + ratingExpr)
	}
	return out
}

// Dimensions returns the fixed evaluation dimensions in canonical order.
func Dimensions() []Dimension {
	out := make([]Dimension, len(dimensions))
	copy(out, dimensions)
	return out
}
