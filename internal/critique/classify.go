package critique

// Tier buckets a 1-10 score for display.
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierFair      Tier = "fair"
	TierPoor      Tier = "poor"
)

// Swatch pairs a tier with the background and border colours used for score cards.
type Swatch struct {
	Tier       Tier   `json:"tier"`
	Background string `json:"background"`
	Border     string `json:"border"`
}

var swatches = map[Tier]Swatch{
	TierExcellent: {Tier: TierExcellent, Background: "#ecfdf5", Border: "#10b981"},
	TierGood:      {Tier: TierGood, Background: "#eff6ff", Border: "#3b82f6"},
	TierFair:      {Tier: TierFair, Background: "#fffbeb", Border: "#f59e0b"},
	TierPoor:      {Tier: TierPoor, Background: "#fef2f2", Border: "#ef4444"},
}

// ColorTier maps a score to its text colour tier: >=8 excellent, >=6 good, >=4 fair.
func ColorTier(score int) Tier {
	switch {
	case score >= 8:
		return TierExcellent
	case score >= 6:
		return TierGood
	case score >= 4:
		return TierFair
	default:
		return TierPoor
	}
}

// BackgroundTier uses the same thresholds as ColorTier.
func BackgroundTier(score int) Swatch {
	return swatches[ColorTier(score)]
}

// WidthPercent is the progress-bar width for a score, clamped to [0, 100].
func WidthPercent(score int) int {
	w := score * 10
	if w < 0 {
		return 0
	}
	if w > 100 {
		return 100
	}
	return w
}
