package critiques

import (
	"time"

	"novel-backend/internal/critique"
)

// ScoreResponse is a parsed dimension score with its presentation hints.
type ScoreResponse struct {
	Name         string          `json:"name"`
	Value        int             `json:"value"`
	Category     string          `json:"category"`
	Tier         critique.Tier   `json:"tier"`
	WidthPercent int             `json:"widthPercent"`
	Swatch       critique.Swatch `json:"swatch"`
}

// CritiqueResponse is critique.Data plus per-score tiers.
type CritiqueResponse struct {
	Scores      []ScoreResponse    `json:"scores"`
	Sections    []critique.Section `json:"sections"`
	Suggestions []string           `json:"suggestions"`
	Summary     critique.Summary   `json:"summary"`
	OverallTier critique.Tier      `json:"overallTier"`
	Structured  bool               `json:"structured"`
	RawContent  string             `json:"rawContent"`
}

type ViewResponse struct {
	ChapterID   string            `json:"chapterId"`
	HasCached   bool              `json:"hasCached"`
	Changed     bool              `json:"changed"`
	Stale       bool              `json:"stale"`
	Reused      bool              `json:"reused"`
	Provider    string            `json:"provider,omitempty"`
	Model       string            `json:"model,omitempty"`
	GeneratedAt *time.Time        `json:"generatedAt,omitempty"`
	Critique    *CritiqueResponse `json:"critique"`
}

type BatchItemResponse struct {
	ChapterID string        `json:"chapterId"`
	OK        bool          `json:"ok"`
	Result    *ViewResponse `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// PresentCritique attaches tiers, bar widths and swatches to parsed critique data.
func PresentCritique(d *critique.Data) *CritiqueResponse {
	if d == nil {
		return nil
	}
	scores := make([]ScoreResponse, 0, len(d.Scores))
	for _, s := range d.Scores {
		scores = append(scores, ScoreResponse{
			Name:         s.Name,
			Value:        s.Value,
			Category:     s.Category,
			Tier:         critique.ColorTier(s.Value),
			WidthPercent: critique.WidthPercent(s.Value),
			Swatch:       critique.BackgroundTier(s.Value),
		})
	}
	return &CritiqueResponse{
		Scores:      scores,
		Sections:    d.Sections,
		Suggestions: d.Suggestions,
		Summary:     d.Summary,
		OverallTier: critique.ColorTier(d.Summary.OverallScore),
		Structured:  !d.Empty(),
		RawContent:  d.RawContent,
	}
}

func toViewResponse(v View) ViewResponse {
	resp := ViewResponse{
		ChapterID: v.ChapterID,
		HasCached: v.HasCached,
		Changed:   v.Changed,
		Stale:     v.Stale,
		Reused:    v.Reused,
		Provider:  v.Provider,
		Model:     v.Model,
		Critique:  PresentCritique(v.Critique),
	}
	if !v.GeneratedAt.IsZero() {
		t := v.GeneratedAt
		resp.GeneratedAt = &t
	}
	return resp
}
