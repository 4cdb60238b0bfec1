package chapters

import (
	"time"

	"novel-backend/internal/textdiff"
)

type VolumeResponse struct {
	VolumeID  string    `json:"volumeId"`
	Title     string    `json:"title"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

type ChapterResponse struct {
	ChapterID string    `json:"chapterId"`
	VolumeID  string    `json:"volumeId"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Position  int       `json:"position"`
	WordCount int       `json:"wordCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UpdateResponse struct {
	Chapter ChapterResponse   `json:"chapter"`
	Changes []textdiff.Change `json:"changes"`
	Stats   textdiff.Stats    `json:"stats"`
}

func toVolumeResponse(v Volume) VolumeResponse {
	return VolumeResponse{
		VolumeID:  v.ID,
		Title:     v.Title,
		Position:  v.Position,
		CreatedAt: v.CreatedAt,
	}
}

// toChapterResponse omits content when withContent is false, which keeps chapter
// listings small.
func toChapterResponse(ch Chapter, withContent bool) ChapterResponse {
	resp := ChapterResponse{
		ChapterID: ch.ID,
		VolumeID:  ch.VolumeID,
		Title:     ch.Title,
		Position:  ch.Position,
		WordCount: ch.WordCount,
		CreatedAt: ch.CreatedAt,
		UpdatedAt: ch.UpdatedAt,
	}
	if withContent {
		resp.Content = ch.Content
	}
	return resp
}
