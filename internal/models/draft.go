// Package models defines the domain types for the journaling engine.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DraftStatus is the lifecycle state of a capture buffer.
type DraftStatus string

const (
	// StatusDraft marks an active, editable capture buffer.
	StatusDraft DraftStatus = "draft"
	// StatusArchived marks a draft whose content has been merged into a
	// daily note. Archived drafts are retained for recall, never edited.
	StatusArchived DraftStatus = "archived"
)

// Draft is an in-progress capture buffer before it is merged into a day's document.
type Draft struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	CreatedAt  time.Time   `json:"created_at"`
	ModifiedAt time.Time   `json:"modified_at"`
	Status     DraftStatus `json:"status"`
}

// NewDraft returns an empty active draft stamped with now.
func NewDraft(now time.Time) Draft {
	return Draft{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		ModifiedAt: now,
		Status:     StatusDraft,
	}
}

// IsEmpty reports whether the draft holds no content beyond whitespace.
func (d Draft) IsEmpty() bool {
	return strings.TrimSpace(d.Content) == ""
}

// Active reports whether the draft is still editable.
func (d Draft) Active() bool {
	return d.Status == StatusDraft
}
