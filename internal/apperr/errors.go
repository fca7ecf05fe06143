// Package apperr defines the sentinel errors shared across the engine.
package apperr

import "errors"

var (
	// ErrNotFound marks an absent document, draft, or cached template.
	ErrNotFound = errors.New("not found")
	// ErrNotConfigured marks a missing storage root (no vault selected).
	ErrNotConfigured = errors.New("not configured")
	// ErrEmptyDraft marks a submission attempt on a draft with no content.
	ErrEmptyDraft = errors.New("draft is empty")
)
