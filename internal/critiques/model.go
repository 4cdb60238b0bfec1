package critiques

import "time"

// Record is the single stored critique of a chapter. Regeneration overwrites it.
type Record struct {
	ChapterID    string    `json:"chapterId"`
	CritiqueText string    `json:"critiqueText"`
	Fingerprint  string    `json:"fingerprint"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	GeneratedAt  time.Time `json:"generatedAt"`
}
