package api

import (
	"time"

	"github.com/psycho-baller/obsidian-journal/internal/capture"
	"github.com/psycho-baller/obsidian-journal/internal/models"
)

// DraftContentRequest is the request body for draft content writes.
type DraftContentRequest struct {
	Content string `json:"content" example:"Felt calm this morning, slept 7 hours" validate:"required"`
}

// SubmitRequest is the request body for submitting a draft.
type SubmitRequest struct {
	DraftID string `json:"draft_id,omitempty" example:"4f6b1a2c-..."`
}

// DayDetail is the full day response type (aliased from the domain layer).
type DayDetail = capture.DayDetail

// SubmitResult is the capture pipeline response (aliased from the domain layer).
type SubmitResult = capture.SubmitResult

// DraftListResponse wraps draft listings.
type DraftListResponse struct {
	Drafts  []models.Draft `json:"drafts" validate:"required"`
	Current string         `json:"current" example:"4f6b1a2c-..." validate:"required"`
}

// DayListItem is a lightweight item in a day listing.
type DayListItem struct {
	Day       string    `json:"day" example:"2026-01-08"`
	Title     string    `json:"title" example:"Daily Note: 2026-01-08"`
	Checksum  string    `json:"checksum" example:"abc123..."`
	Tags      []string  `json:"tags" example:"journal,gratitude"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DayListResponse wraps paginated day listings.
type DayListResponse struct {
	Days  []DayListItem `json:"days" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Day     string `json:"day" example:"2026-01-08" validate:"required"`
	Title   string `json:"title" example:"Daily Note: 2026-01-08" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// RecordingUploadResponse is returned after a successful recording upload.
type RecordingUploadResponse struct {
	Filename string `json:"filename" example:"memo.m4a" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/recordings/memo.m4a" validate:"required"`
}
